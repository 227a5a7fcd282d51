package server

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/park285/chess-area/internal/area"
	"github.com/park285/chess-area/internal/chess"
	"github.com/park285/chess-area/internal/msgcat"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{chess.ErrNotYourTurn, "NOT_YOUR_TURN"},
		{fmt.Errorf("move: %w", chess.ErrNullMove), "NULL_MOVE"},
		{fmt.Errorf("parse: %w", chess.ErrInvalidSquare), "INVALID_SQUARE"},
		{area.ErrGameIDMismatch, "GAME_ID_MISMATCH"},
		{area.ErrInvalidPlayer, "INVALID_COMMAND"},
		{errors.New("redis down"), codeInternal},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestErrorResponseRendersCatalog(t *testing.T) {
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	g := chess.NewGame("g")
	_ = g.Join("w")
	_ = g.Join("b")
	_, moveErr := g.ApplyMove("w", chess.Sq(0, 0), chess.Sq(2, 0))
	resp := errorResponse(cat, moveErr, "w", "lobby")
	if resp.Code != "ILLEGAL_MOVE" || !strings.Contains(resp.Error, string(chess.ReasonBlockedPath)) {
		t.Fatalf("resp = %+v", resp)
	}

	resp = errorResponse(cat, chess.ErrGameFull, "w", "lobby")
	if resp.Error != "Both seats are taken in area lobby." {
		t.Fatalf("resp = %+v", resp)
	}

	resp = errorResponse(cat, errors.New("dial tcp 10.0.0.1:6379: refused"), "w", "lobby")
	if resp.Code != codeInternal || resp.Details != "" || strings.Contains(resp.Error, "10.0.0.1") {
		t.Fatalf("internal details leaked: %+v", resp)
	}
}
