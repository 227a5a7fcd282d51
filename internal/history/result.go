package history

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("game result not found")

// Outcome is the side that won, or draw.
type Outcome string

const (
	OutcomeWhite Outcome = "white"
	OutcomeBlack Outcome = "black"
	OutcomeDraw  Outcome = "draw"
)

// Method is how the game ended.
type Method string

const (
	MethodKingCapture Method = "king-capture"
	MethodAbandoned   Method = "abandoned"
)

// Result is a finished game as stored in the results table.
type Result struct {
	GameID    string    `json:"gameId"`
	AreaID    string    `json:"areaId"`
	WhiteID   string    `json:"whiteId"`
	WhiteName string    `json:"whiteName"`
	BlackID   string    `json:"blackId"`
	BlackName string    `json:"blackName"`
	WinnerID  string    `json:"winnerId,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Method    Method    `json:"method"`
	Moves     []string  `json:"moves"` // coordinate notation, e.g. e2e4
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// Duration is the wall-clock length of the game.
func (r *Result) Duration() time.Duration {
	d := r.EndedAt.Sub(r.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

type Repository interface {
	SaveResult(ctx context.Context, r *Result) error
	RecentByPlayer(ctx context.Context, playerID string, limit int) ([]*Result, error)
	Get(ctx context.Context, gameID string) (*Result, error)
}
