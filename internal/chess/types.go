package chess

// Color identifies chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool { return c == White || c == Black }

// PieceType is the single-letter piece kind used on the wire.
type PieceType string

const (
	King   PieceType = "K"
	Queen  PieceType = "Q"
	Rook   PieceType = "R"
	Bishop PieceType = "B"
	Knight PieceType = "N"
	Pawn   PieceType = "P"
)

func (t PieceType) Valid() bool {
	switch t {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

// Promotable reports whether a pawn may become t on the last rank.
func (t PieceType) Promotable() bool {
	return t == Queen || t == Rook || t == Bishop || t == Knight
}

// Piece is an immutable (type, color) value. Where it stands is the board's business.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// IsZero reports an empty square.
func (p Piece) IsZero() bool { return p.Type == "" }

// Letter returns the FEN-style letter: upper case for white.
func (p Piece) Letter() byte {
	if p.IsZero() {
		return '.'
	}
	b := p.Type[0]
	if p.Color == Black {
		b += 'a' - 'A'
	}
	return b
}

// Status represents the game lifecycle state.
type Status string

const (
	StatusWaiting    Status = "WAITING_TO_START"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOver       Status = "OVER"
)
