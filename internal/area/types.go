package area

import (
	"context"

	"github.com/park285/chess-area/internal/chess"
	"github.com/park285/chess-area/pkg/chessdto"
)

// Errors
var (
	ErrInvalidCommand = errf("invalid command")
	ErrGameIDMismatch = errf("game id does not match the current game")
	ErrAreaNotFound   = errf("area not found")
	ErrStaleRecord    = errf("area record is older than the stored one")
	ErrInvalidPlayer  = errf("player id is required")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error { return staticErr(s) }

// Player is whoever the transport says sent a command.
type Player struct {
	ID   string
	Name string
}

// Record is everything an area persists between restarts.
type Record struct {
	AreaID  string                  `json:"areaId"`
	Version int64                   `json:"version"`
	Game    *chess.Record           `json:"game,omitempty"`
	Names   map[string]string       `json:"names,omitempty"`
	History []chessdto.HistoryEntry `json:"history,omitempty"`
}

// SnapshotStore persists area records. Load returns nil, nil when nothing is stored.
type SnapshotStore interface {
	Load(ctx context.Context, areaID string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
}

// AreaLister is implemented by stores that can enumerate persisted areas.
type AreaLister interface {
	AreaIDs(ctx context.Context) ([]string, error)
}

// Listener receives the area state after every accepted command. It runs under the
// area lock and must not call back into the area.
type Listener func(state chessdto.AreaState)
