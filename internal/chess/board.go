package chess

import (
	"strings"
)

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board maps every square to an optional piece. The zero Piece marks an empty square.
// Board is a value: copying it copies the position.
type Board struct {
	cells [8][8]Piece
}

// PiecePosition is one entry of the flat piece list.
type PiecePosition struct {
	Piece  Piece  `json:"piece"`
	Square Square `json:"square"`
}

// InitialBoard returns the standard starting position.
func InitialBoard() Board {
	var b Board
	for col := 0; col < 8; col++ {
		b.cells[0][col] = Piece{Type: backRank[col], Color: White}
		b.cells[1][col] = Piece{Type: Pawn, Color: White}
		b.cells[6][col] = Piece{Type: Pawn, Color: Black}
		b.cells[7][col] = Piece{Type: backRank[col], Color: Black}
	}
	return b
}

// BoardAt replays moves from the initial position. It is pure: the same moves always
// give the same board, so callers recompute instead of caching.
func BoardAt(moves []Move) Board {
	b := InitialBoard()
	for _, m := range moves {
		b = b.apply(m)
	}
	return b
}

// BoardFromPieces builds a position from a piece list. Later entries win on collisions;
// off-board squares are ignored.
func BoardFromPieces(pieces []PiecePosition) Board {
	var b Board
	for _, p := range pieces {
		if p.Square.Valid() && p.Piece.Type.Valid() && p.Piece.Color.Valid() {
			b.cells[p.Square.Row][p.Square.Col] = p.Piece
		}
	}
	return b
}

// At returns the piece on sq and whether the square is occupied.
func (b Board) At(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b.cells[sq.Row][sq.Col]
	return p, !p.IsZero()
}

func (b Board) empty(sq Square) bool {
	_, ok := b.At(sq)
	return !ok
}

// Pieces returns every occupied square in row-major order (a1..h1, a2..h8).
func (b Board) Pieces() []PiecePosition {
	out := make([]PiecePosition, 0, 32)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b.cells[row][col]; !p.IsZero() {
				out = append(out, PiecePosition{Piece: p, Square: Square{Row: row, Col: col}})
			}
		}
	}
	return out
}

// HasKing reports whether c still has a king on the board.
func (b Board) HasKing(c Color) bool {
	_, ok := b.kingSquare(c)
	return ok
}

func (b Board) kingSquare(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b.cells[row][col]; p.Type == King && p.Color == c {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// apply relocates the piece on m.From and resolves en passant, castling and promotion.
func (b Board) apply(m Move) Board {
	p, ok := b.At(m.From)
	if !ok {
		p = m.Piece
	}
	if p.IsZero() || !m.To.Valid() {
		return b
	}
	m.Piece = p

	switch {
	case p.Type == Pawn && m.colDelta() != 0 && b.empty(m.To):
		// en passant: the captured pawn sits beside the origin, on the destination file
		b.cells[m.From.Row][m.To.Col] = Piece{}
	case m.isCastle():
		rookFrom, rookTo := castleRookSquares(p.Color, m.To.Col)
		if rook, ok := b.At(rookFrom); ok && rook.Type == Rook && rook.Color == p.Color {
			b.cells[rookFrom.Row][rookFrom.Col] = Piece{}
			b.cells[rookTo.Row][rookTo.Col] = rook
		}
	}

	if p.Type == Pawn && m.To.Row == lastRow(p.Color) {
		promo := m.Promotion
		if !promo.Promotable() {
			promo = Queen
		}
		p = Piece{Type: promo, Color: p.Color}
	}

	b.cells[m.From.Row][m.From.Col] = Piece{}
	b.cells[m.To.Row][m.To.Col] = p
	return b
}

// String renders the board with rank 8 on top, white pieces in upper case.
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for row := 7; row >= 0; row-- {
		sb.WriteByte(byte('1' + row))
		sb.WriteByte(' ')
		for col := 0; col < 8; col++ {
			sb.WriteByte(b.cells[row][col].Letter())
			sb.WriteByte(' ')
		}
		sb.WriteByte(byte('1' + row))
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}
