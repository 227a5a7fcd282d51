package chess

// position is everything the validator reads: the derived board, the move list that
// produced it, and the game status.
type position struct {
	board   Board
	history []Move
	status  Status
}

// turn derives the side to move from move-count parity.
func turn(history []Move) Color {
	if len(history)%2 == 0 {
		return White
	}
	return Black
}

// validate builds the fully-qualified move for seat and runs the generic checks in
// order before the piece rule. The piece on from is read from the board; nothing the
// caller supplies about it is trusted.
func validate(pos position, seat Color, from, to Square) (Move, error) {
	p, ok := pos.board.At(from)
	if !ok {
		return Move{}, ErrNoPieceAtOrigin
	}
	if p.Color != turn(pos.history) || p.Color != seat {
		return Move{}, ErrNotYourTurn
	}
	if pos.status != StatusInProgress {
		return Move{}, ErrGameNotInProgress
	}
	if from == to {
		return Move{}, ErrNullMove
	}
	if target, ok := pos.board.At(to); ok && target.Color == p.Color {
		return Move{}, ErrCannotCaptureOwn
	}

	m := Move{From: from, To: to, Piece: p}
	if err := CheckMove(pos.board, m, pos.history); err != nil {
		return Move{}, err
	}
	return m, nil
}
