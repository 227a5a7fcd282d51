package server

import (
	"errors"

	"github.com/park285/chess-area/internal/area"
	"github.com/park285/chess-area/internal/chess"
	"github.com/park285/chess-area/internal/history"
	"github.com/park285/chess-area/internal/msgcat"
	"github.com/park285/chess-area/pkg/chessdto"
)

const codeInternal = "INTERNAL_ERROR"

var errorCodes = []struct {
	err  error
	code string
}{
	{chess.ErrAlreadyInGame, "ALREADY_IN_GAME"},
	{chess.ErrGameFull, "GAME_FULL"},
	{chess.ErrNotInGame, "NOT_IN_GAME"},
	{chess.ErrGameNotInProgress, "GAME_NOT_IN_PROGRESS"},
	{chess.ErrNotYourTurn, "NOT_YOUR_TURN"},
	{chess.ErrNoPieceAtOrigin, "NO_PIECE_AT_ORIGIN"},
	{chess.ErrNullMove, "NULL_MOVE"},
	{chess.ErrCannotCaptureOwn, "CANNOT_CAPTURE_OWN_PIECE"},
	{chess.ErrIllegalMove, "ILLEGAL_MOVE"},
	{chess.ErrInvalidSquare, "INVALID_SQUARE"},
	{chess.ErrInvalidPromotion, "INVALID_PROMOTION"},
	{area.ErrGameIDMismatch, "GAME_ID_MISMATCH"},
	{area.ErrInvalidCommand, "INVALID_COMMAND"},
	{area.ErrInvalidPlayer, "INVALID_COMMAND"},
	{area.ErrAreaNotFound, "AREA_NOT_FOUND"},
	{history.ErrNotFound, "NOT_FOUND"},
}

// ErrorCode maps err to its stable wire code.
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return codeInternal
}

// errorResponse renders err for a client. Internal failures keep their details private.
func errorResponse(cat *msgcat.Catalog, err error, player, areaID string) chessdto.ErrorResponse {
	code := ErrorCode(err)
	detail := err.Error()
	if reason, ok := chess.ReasonOf(err); ok {
		detail = string(reason)
	}
	resp := chessdto.ErrorResponse{Code: code, Error: detail, Details: err.Error()}
	if code == codeInternal {
		resp.Error = "internal error"
		resp.Details = ""
	}
	if cat != nil {
		data := map[string]any{"Player": player, "Area": areaID, "Detail": detail}
		resp.Error = cat.RenderOr("errors."+code, data, resp.Error)
	}
	return resp
}
