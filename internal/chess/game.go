package chess

import (
	"fmt"
	"time"
)

// State is the authoritative game state. Moves is the source of truth; the board is
// always derived from it.
type State struct {
	Status Status `json:"status"`
	White  string `json:"white,omitempty"`
	Black  string `json:"black,omitempty"`
	Winner string `json:"winner,omitempty"`
	Moves  []Move `json:"moves"`
}

// Snapshot is a read-only copy of a game for transport and persistence layers.
type Snapshot struct {
	Status    Status          `json:"status"`
	White     string          `json:"white,omitempty"`
	Black     string          `json:"black,omitempty"`
	Winner    string          `json:"winner,omitempty"`
	Turn      Color           `json:"turn"`
	MoveCount int             `json:"moveCount"`
	Pieces    []PiecePosition `json:"pieces"`
}

// Record is the persistable form of a game.
type Record struct {
	ID        string              `json:"id"`
	State     State               `json:"state"`
	Promotion map[Color]PieceType `json:"promotion,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Game is one match between two seats. It does no locking: callers serialize access.
type Game struct {
	id        string
	state     State
	promotion map[Color]PieceType
	createdAt time.Time
	updatedAt time.Time
}

// NewGame returns an empty game waiting for players.
func NewGame(id string) *Game {
	now := time.Now().UTC()
	return &Game{
		id:        id,
		state:     State{Status: StatusWaiting},
		createdAt: now,
		updatedAt: now,
	}
}

func (g *Game) ID() string { return g.id }
func (g *Game) Status() Status { return g.state.Status }
func (g *Game) White() string { return g.state.White }
func (g *Game) Black() string { return g.state.Black }
func (g *Game) Winner() string { return g.state.Winner }
func (g *Game) Turn() Color { return turn(g.state.Moves) }
func (g *Game) Board() Board { return BoardAt(g.state.Moves) }
func (g *Game) CreatedAt() time.Time { return g.createdAt }

// Moves returns a copy of the accepted moves.
func (g *Game) Moves() []Move {
	out := make([]Move, len(g.state.Moves))
	copy(out, g.state.Moves)
	return out
}

// SeatOf returns the color player holds.
func (g *Game) SeatOf(player string) (Color, bool) {
	switch {
	case player == "":
		return "", false
	case player == g.state.White:
		return White, true
	case player == g.state.Black:
		return Black, true
	}
	return "", false
}

// Join seats player at the first free color, white first. Filling the second seat
// starts the game.
func (g *Game) Join(player string) error {
	if _, ok := g.SeatOf(player); ok {
		return ErrAlreadyInGame
	}
	switch {
	case g.state.White == "":
		g.state.White = player
	case g.state.Black == "":
		g.state.Black = player
	default:
		return ErrGameFull
	}
	if g.state.White != "" && g.state.Black != "" && g.state.Status == StatusWaiting {
		g.state.Status = StatusInProgress
	}
	g.touch()
	return nil
}

// Leave removes player. Before the game starts this resets it completely; during play
// the remaining player wins. Leaving a finished game changes nothing.
func (g *Game) Leave(player string) error {
	seat, ok := g.SeatOf(player)
	if !ok {
		return ErrNotInGame
	}
	switch g.state.Status {
	case StatusWaiting:
		g.state = State{Status: StatusWaiting}
		g.promotion = nil
	case StatusInProgress:
		g.state.Status = StatusOver
		if seat == White {
			g.state.Winner = g.state.Black
		} else {
			g.state.Winner = g.state.White
		}
	default:
		return nil
	}
	g.touch()
	return nil
}

// SetPromotion chooses the piece player's pawns become on the last rank. Queen is the
// default.
func (g *Game) SetPromotion(player string, pt PieceType) error {
	seat, ok := g.SeatOf(player)
	if !ok {
		return ErrNotInGame
	}
	if !pt.Promotable() {
		return fmt.Errorf("%w: %q", ErrInvalidPromotion, pt)
	}
	if g.promotion == nil {
		g.promotion = make(map[Color]PieceType, 2)
	}
	g.promotion[seat] = pt
	g.touch()
	return nil
}

// Promotion returns the promotion preference of c.
func (g *Game) Promotion(c Color) PieceType {
	if pt, ok := g.promotion[c]; ok {
		return pt
	}
	return Queen
}

// ApplyMove validates and appends the move of player from one square to another and
// returns the accepted move. On error the game is unchanged.
func (g *Game) ApplyMove(player string, from, to Square) (Move, error) {
	seat, ok := g.SeatOf(player)
	if !ok {
		return Move{}, ErrNotInGame
	}
	return g.apply(seat, from, to, g.Promotion(seat))
}

func (g *Game) apply(seat Color, from, to Square, promo PieceType) (Move, error) {
	board := g.Board()
	m, err := validate(position{board: board, history: g.state.Moves, status: g.state.Status}, seat, from, to)
	if err != nil {
		return Move{}, err
	}
	if m.Piece.Type == Pawn && m.To.Row == lastRow(m.Piece.Color) {
		if !promo.Promotable() {
			promo = Queen
		}
		m.Promotion = promo
	}

	g.state.Moves = append(g.state.Moves, m)
	g.checkTerminal(board.apply(m))
	g.touch()
	return m, nil
}

// checkTerminal ends the game when a king is gone from b.
func (g *Game) checkTerminal(b Board) {
	switch {
	case !b.HasKing(Black):
		g.state.Status = StatusOver
		g.state.Winner = g.state.White
	case !b.HasKing(White):
		g.state.Status = StatusOver
		g.state.Winner = g.state.Black
	}
}

// Snapshot returns a detached view of the game.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Status:    g.state.Status,
		White:     g.state.White,
		Black:     g.state.Black,
		Winner:    g.state.Winner,
		Turn:      g.Turn(),
		MoveCount: len(g.state.Moves),
		Pieces:    g.Board().Pieces(),
	}
}

// Record returns the persistable form of the game.
func (g *Game) Record() Record {
	st := g.state
	st.Moves = g.Moves()
	var promo map[Color]PieceType
	if len(g.promotion) > 0 {
		promo = make(map[Color]PieceType, len(g.promotion))
		for c, pt := range g.promotion {
			promo[c] = pt
		}
	}
	return Record{ID: g.id, State: st, Promotion: promo, CreatedAt: g.createdAt, UpdatedAt: g.updatedAt}
}

// Restore rebuilds a game from rec by replaying every recorded move through the
// validator. A record whose moves, status or winner disagree with the replay fails
// with ErrCorruptRecord.
func Restore(rec Record) (*Game, error) {
	g := &Game{id: rec.ID, state: State{Status: StatusWaiting}, createdAt: rec.CreatedAt, updatedAt: rec.UpdatedAt}
	st := rec.State
	if st.White != "" && st.White == st.Black {
		return nil, fmt.Errorf("%w: same player on both seats", ErrCorruptRecord)
	}
	g.state.White, g.state.Black = st.White, st.Black
	if st.White != "" && st.Black != "" {
		g.state.Status = StatusInProgress
	}

	for i, m := range st.Moves {
		if g.state.Status != StatusInProgress {
			return nil, fmt.Errorf("%w: move %d recorded after the game stopped", ErrCorruptRecord, i)
		}
		got, err := g.apply(turn(g.state.Moves), m.From, m.To, m.Promotion)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d %s: %v", ErrCorruptRecord, i, m.Coordinate(), err)
		}
		if !m.Piece.IsZero() && m.Piece != got.Piece {
			return nil, fmt.Errorf("%w: move %d piece mismatch", ErrCorruptRecord, i)
		}
	}

	// abandoned games end without a capture
	if st.Status == StatusOver && g.state.Status == StatusInProgress {
		if st.Winner == "" || (st.Winner != st.White && st.Winner != st.Black) {
			return nil, fmt.Errorf("%w: unknown winner %q", ErrCorruptRecord, st.Winner)
		}
		g.state.Status = StatusOver
		g.state.Winner = st.Winner
	}
	if g.state.Status != st.Status || g.state.Winner != st.Winner {
		return nil, fmt.Errorf("%w: recorded %s/%q, replayed %s/%q",
			ErrCorruptRecord, st.Status, st.Winner, g.state.Status, g.state.Winner)
	}

	for c, pt := range rec.Promotion {
		if !c.Valid() || !pt.Promotable() {
			return nil, fmt.Errorf("%w: promotion %s=%s", ErrCorruptRecord, c, pt)
		}
		if g.promotion == nil {
			g.promotion = make(map[Color]PieceType, 2)
		}
		g.promotion[c] = pt
	}
	g.updatedAt = rec.UpdatedAt
	return g, nil
}

func (g *Game) touch() { g.updatedAt = time.Now().UTC() }
