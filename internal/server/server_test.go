package server

import (
	"context"
	"fmt"
	"testing"

	"github.com/park285/chess-area/internal/area"
	"github.com/park285/chess-area/internal/history"
	"github.com/park285/chess-area/internal/msgcat"
	"github.com/park285/chess-area/pkg/chessdto"
)

var (
	alice = area.Player{ID: "p1", Name: "Alice"}
	bob   = area.Player{ID: "p2", Name: "Bob"}
)

type fixture struct {
	reg  *area.Registry
	repo *history.MemoryRepository
	cat  *msgcat.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	repo := history.NewMemoryRepository()
	n := 0
	reg := area.NewRegistry([]string{"lobby", "den"}, area.Deps{
		Results: repo,
		NewID: func() string {
			n++
			return fmt.Sprintf("game-%d", n)
		},
	})
	return &fixture{reg: reg, repo: repo, cat: cat}
}

// play seats alice and bob in areaID and then alternates the given coordinate moves.
func (f *fixture) play(t *testing.T, areaID string, moves ...string) string {
	t.Helper()
	ctx := context.Background()
	a, err := f.reg.Get(ctx, areaID)
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	var gameID string
	for _, p := range []area.Player{alice, bob} {
		res, err := a.HandleCommand(ctx, p, chessdto.Command{Type: chessdto.CommandJoinGame})
		if err != nil {
			t.Fatalf("join %s: %v", p.ID, err)
		}
		gameID = res.GameID
	}
	for i, mv := range moves {
		p := alice
		if i%2 == 1 {
			p = bob
		}
		cmd := chessdto.Command{Type: chessdto.CommandChessMove, GameID: gameID, From: mv[:2], To: mv[2:]}
		if _, err := a.HandleCommand(ctx, p, cmd); err != nil {
			t.Fatalf("%s: %v", mv, err)
		}
	}
	return gameID
}
