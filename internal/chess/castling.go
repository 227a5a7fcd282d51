package chess

// checkCastle enforces the full castling preconditions: neither the king nor the rook
// has moved, the squares between them are empty, and the king is not in check, does
// not pass through an attacked square and does not land on one.
func checkCastle(b Board, m Move, history []Move) error {
	c := m.Piece.Color
	home := kingHome(c)
	rookFrom, _ := castleRookSquares(c, m.To.Col)

	rook, ok := b.At(rookFrom)
	if !ok || rook.Type != Rook || rook.Color != c {
		return illegal(ReasonCastlingRejected, m)
	}
	for _, h := range history {
		if h.From == home || h.From == rookFrom || h.To == rookFrom {
			return illegal(ReasonCastlingRejected, m)
		}
	}
	if !pathClear(b, home, rookFrom) {
		return illegal(ReasonCastlingRejected, m)
	}

	enemy := c.Opponent()
	if Attacked(b, home, enemy) {
		return illegal(ReasonCastlingRejected, m)
	}
	// the king leaves home, so it must not shield the squares it crosses
	without := b
	without.cells[home.Row][home.Col] = Piece{}
	step := sign(m.colDelta())
	for _, sq := range []Square{home.offset(0, step), m.To} {
		if Attacked(without, sq, enemy) {
			return illegal(ReasonCastlingRejected, m)
		}
	}
	return nil
}

// Attacked reports whether any piece of color by attacks sq on b. The square itself may
// be empty or occupied by either side.
func Attacked(b Board, sq Square, by Color) bool {
	// a pawn of color by on (r, c) attacks (r+dir, c±1)
	dir := pawnDirection(by)
	for _, dc := range []int{-1, 1} {
		if p, ok := b.At(sq.offset(-dir, dc)); ok && p.Color == by && p.Type == Pawn {
			return true
		}
	}
	for _, o := range knightOffsets {
		if p, ok := b.At(sq.offset(o[0], o[1])); ok && p.Color == by && p.Type == Knight {
			return true
		}
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if p, ok := b.At(sq.offset(dr, dc)); ok && p.Color == by && p.Type == King {
				return true
			}
			if rayHits(b, sq, dr, dc, by) {
				return true
			}
		}
	}
	return false
}

// rayHits walks from sq in direction (dr, dc) and reports whether the first piece met is
// a slider of color by that moves along that direction.
func rayHits(b Board, sq Square, dr, dc int, by Color) bool {
	diagonal := dr != 0 && dc != 0
	for cur := sq.offset(dr, dc); cur.Valid(); cur = cur.offset(dr, dc) {
		p, ok := b.At(cur)
		if !ok {
			continue
		}
		if p.Color != by {
			return false
		}
		switch p.Type {
		case Queen:
			return true
		case Bishop:
			return diagonal
		case Rook:
			return !diagonal
		}
		return false
	}
	return false
}
