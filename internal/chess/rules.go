package chess

var knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}

// CheckMove applies the movement rule of m.Piece to the given position. history is the
// list of moves that produced b; pawns and kings look at it for en passant and castling.
// It returns nil or an *IllegalMoveError.
func CheckMove(b Board, m Move, history []Move) error {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return illegal(ReasonWrongShape, m)
	}
	switch m.Piece.Type {
	case Pawn:
		return checkPawn(b, m, history)
	case Knight:
		return checkKnight(b, m)
	case Bishop:
		return checkSlider(b, m, false, true)
	case Rook:
		return checkSlider(b, m, true, false)
	case Queen:
		return checkSlider(b, m, true, true)
	case King:
		return checkKing(b, m, history)
	}
	return illegal(ReasonWrongShape, m)
}

// checkDestination rejects landing on a piece of the mover's own color.
func checkDestination(b Board, m Move) error {
	if p, ok := b.At(m.To); ok && p.Color == m.Piece.Color {
		return illegal(ReasonOwnPieceAtTarget, m)
	}
	return nil
}

// pathClear reports whether every square strictly between from and to is empty.
// from and to must share a row, a column or a diagonal.
func pathClear(b Board, from, to Square) bool {
	dr, dc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for sq := from.offset(dr, dc); sq != to; sq = sq.offset(dr, dc) {
		if !b.empty(sq) {
			return false
		}
	}
	return true
}

func checkSlider(b Board, m Move, orthogonal, diagonal bool) error {
	dr, dc := m.rowDelta(), m.colDelta()
	straight := (dr == 0) != (dc == 0)
	slant := abs(dr) == abs(dc) && dr != 0
	if !(orthogonal && straight) && !(diagonal && slant) {
		return illegal(ReasonWrongShape, m)
	}
	if !pathClear(b, m.From, m.To) {
		return illegal(ReasonBlockedPath, m)
	}
	return checkDestination(b, m)
}

func checkKnight(b Board, m Move) error {
	dr, dc := m.rowDelta(), m.colDelta()
	for _, o := range knightOffsets {
		if dr == o[0] && dc == o[1] {
			return checkDestination(b, m)
		}
	}
	return illegal(ReasonWrongShape, m)
}

func checkPawn(b Board, m Move, history []Move) error {
	if err := checkDestination(b, m); err != nil {
		return err
	}
	dir := pawnDirection(m.Piece.Color)
	dr, dc := m.rowDelta(), m.colDelta()
	_, occupied := b.At(m.To)

	switch {
	case dc == 0 && dr == dir:
		if occupied {
			return illegal(ReasonBlockedPath, m)
		}
		return nil
	case dc == 0 && dr == 2*dir:
		if m.From.Row != homeRow(m.Piece.Color)+dir {
			return illegal(ReasonWrongShape, m)
		}
		if occupied || !b.empty(m.From.offset(dir, 0)) {
			return illegal(ReasonBlockedPath, m)
		}
		return nil
	case abs(dc) == 1 && dr == dir:
		if occupied {
			return nil
		}
		if !enPassantAvailable(b, m, history) {
			return illegal(ReasonNoEnPassantTarget, m)
		}
		return nil
	}
	return illegal(ReasonWrongShape, m)
}

// enPassantAvailable reports whether the previous move was an enemy double pawn push
// that landed beside m.From on m.To's file.
func enPassantAvailable(b Board, m Move, history []Move) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	victim := Square{Row: m.From.Row, Col: m.To.Col}
	if !last.isDoublePawnPush() || last.Piece.Color == m.Piece.Color || last.To != victim {
		return false
	}
	p, ok := b.At(victim)
	return ok && p.Type == Pawn && p.Color != m.Piece.Color
}

func checkKing(b Board, m Move, history []Move) error {
	dr, dc := m.rowDelta(), m.colDelta()
	if abs(dr) <= 1 && abs(dc) <= 1 {
		return checkDestination(b, m)
	}
	if dr == 0 && abs(dc) == 2 && m.From == kingHome(m.Piece.Color) {
		return checkCastle(b, m, history)
	}
	return illegal(ReasonWrongShape, m)
}
