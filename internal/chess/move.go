package chess

// Move is a fully-qualified move. Piece is whatever stood on From when the move was
// accepted; the engine fills it in, callers never supply it.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Piece     Piece     `json:"piece"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// Coordinate returns the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) Coordinate() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != "" {
		s += string(m.Promotion[0] + 'a' - 'A')
	}
	return s
}

func (m Move) rowDelta() int { return m.To.Row - m.From.Row }
func (m Move) colDelta() int { return m.To.Col - m.From.Col }

// isDoublePawnPush reports a two-square pawn advance.
func (m Move) isDoublePawnPush() bool {
	return m.Piece.Type == Pawn && m.colDelta() == 0 && abs(m.rowDelta()) == 2
}

// isCastle reports a king moving two files along its home rank.
func (m Move) isCastle() bool {
	return m.Piece.Type == King && m.rowDelta() == 0 && abs(m.colDelta()) == 2 &&
		m.From == kingHome(m.Piece.Color)
}

func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func homeRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func lastRow(c Color) int { return homeRow(c.Opponent()) }

func kingHome(c Color) Square { return Square{Row: homeRow(c), Col: 4} }

// castleRookSquares returns where the rook starts and lands for a castle toward toCol.
func castleRookSquares(c Color, toCol int) (from, to Square) {
	row := homeRow(c)
	if toCol > 4 {
		return Square{Row: row, Col: 7}, Square{Row: row, Col: 5}
	}
	return Square{Row: row, Col: 0}, Square{Row: row, Col: 3}
}
