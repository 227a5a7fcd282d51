package chess

import (
	"errors"
	"testing"
)

func place(entries ...PiecePosition) Board { return BoardFromPieces(entries) }

func at(t PieceType, c Color, row, col int) PiecePosition {
	return PiecePosition{Piece: Piece{Type: t, Color: c}, Square: Sq(row, col)}
}

func wantReason(t *testing.T, err error, want IllegalReason) {
	t.Helper()
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want illegal move", err)
	}
	if got, _ := ReasonOf(err); got != want {
		t.Fatalf("reason = %s, want %s", got, want)
	}
}

func TestRookBlockedPath(t *testing.T) {
	rook := Piece{Type: Rook, Color: White}
	m := Move{From: Sq(0, 0), To: Sq(0, 7), Piece: rook}

	open := place(at(Rook, White, 0, 0))
	if err := CheckMove(open, m, nil); err != nil {
		t.Fatalf("open rank rejected: %v", err)
	}
	blocked := place(at(Rook, White, 0, 0), at(Knight, Black, 0, 4))
	wantReason(t, CheckMove(blocked, m, nil), ReasonBlockedPath)

	// the blocker itself may be captured
	if err := CheckMove(blocked, Move{From: Sq(0, 0), To: Sq(0, 4), Piece: rook}, nil); err != nil {
		t.Fatalf("capture rejected: %v", err)
	}
	wantReason(t, CheckMove(open, Move{From: Sq(0, 0), To: Sq(2, 1), Piece: rook}, nil), ReasonWrongShape)
}

func TestPieceShapes(t *testing.T) {
	cases := []struct {
		name   string
		piece  PieceType
		from   Square
		to     Square
		reason IllegalReason
	}{
		{"bishop diagonal", Bishop, Sq(2, 2), Sq(5, 5), ""},
		{"bishop straight", Bishop, Sq(2, 2), Sq(2, 5), ReasonWrongShape},
		{"queen straight", Queen, Sq(3, 3), Sq(3, 0), ""},
		{"queen diagonal", Queen, Sq(3, 3), Sq(0, 6), ""},
		{"queen knight jump", Queen, Sq(3, 3), Sq(5, 4), ReasonWrongShape},
		{"knight jump", Knight, Sq(3, 3), Sq(5, 4), ""},
		{"knight straight", Knight, Sq(3, 3), Sq(5, 3), ReasonWrongShape},
		{"king step", King, Sq(3, 3), Sq(4, 4), ""},
		{"king two squares", King, Sq(3, 3), Sq(5, 3), ReasonWrongShape},
		{"king two files off home", King, Sq(3, 3), Sq(3, 5), ReasonWrongShape},
		{"rook off board", Rook, Sq(3, 3), Sq(3, 8), ReasonWrongShape},
	}
	for _, tc := range cases {
		b := place(at(tc.piece, White, tc.from.Row, tc.from.Col))
		err := CheckMove(b, Move{From: tc.from, To: tc.to, Piece: Piece{Type: tc.piece, Color: White}}, nil)
		if tc.reason == "" {
			if err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			continue
		}
		wantReason(t, err, tc.reason)
	}
}

func TestKnightJumpsOverPieces(t *testing.T) {
	b := InitialBoard()
	m := Move{From: Sq(0, 1), To: Sq(2, 2), Piece: Piece{Type: Knight, Color: White}}
	if err := CheckMove(b, m, nil); err != nil {
		t.Fatalf("Nb1-c3 rejected: %v", err)
	}
	m.To = Sq(1, 3)
	wantReason(t, CheckMove(b, m, nil), ReasonOwnPieceAtTarget)
}

func TestPawnRules(t *testing.T) {
	b := InitialBoard()
	pawn := Piece{Type: Pawn, Color: White}
	ok := []Square{Sq(2, 4), Sq(3, 4)}
	for _, to := range ok {
		if err := CheckMove(b, Move{From: Sq(1, 4), To: to, Piece: pawn}, nil); err != nil {
			t.Fatalf("e2-%s rejected: %v", to, err)
		}
	}
	wantReason(t, CheckMove(b, Move{From: Sq(1, 4), To: Sq(4, 4), Piece: pawn}, nil), ReasonWrongShape)
	wantReason(t, CheckMove(b, Move{From: Sq(1, 4), To: Sq(2, 5), Piece: pawn}, nil), ReasonNoEnPassantTarget)

	// double push only from the start rank and through empty squares
	moved := place(at(Pawn, White, 2, 4))
	wantReason(t, CheckMove(moved, Move{From: Sq(2, 4), To: Sq(4, 4), Piece: pawn}, nil), ReasonWrongShape)
	wantReason(t, CheckMove(moved, Move{From: Sq(2, 4), To: Sq(1, 4), Piece: pawn}, nil), ReasonWrongShape)
	jammed := place(at(Pawn, White, 1, 4), at(Knight, Black, 2, 4))
	wantReason(t, CheckMove(jammed, Move{From: Sq(1, 4), To: Sq(3, 4), Piece: pawn}, nil), ReasonBlockedPath)
	wantReason(t, CheckMove(jammed, Move{From: Sq(1, 4), To: Sq(2, 4), Piece: pawn}, nil), ReasonBlockedPath)

	capture := place(at(Pawn, White, 1, 4), at(Knight, Black, 2, 5))
	if err := CheckMove(capture, Move{From: Sq(1, 4), To: Sq(2, 5), Piece: pawn}, nil); err != nil {
		t.Fatalf("pawn capture rejected: %v", err)
	}

	black := Piece{Type: Pawn, Color: Black}
	if err := CheckMove(b, Move{From: Sq(6, 3), To: Sq(4, 3), Piece: black}, nil); err != nil {
		t.Fatalf("d7-d5 rejected: %v", err)
	}
	wantReason(t, CheckMove(b, Move{From: Sq(6, 3), To: Sq(7, 3), Piece: black}, nil), ReasonOwnPieceAtTarget)
}

func TestEnPassantNeedsImmediateDoublePush(t *testing.T) {
	wp := Piece{Type: Pawn, Color: White}
	bp := Piece{Type: Pawn, Color: Black}
	b := place(at(Pawn, White, 4, 4), at(Pawn, Black, 4, 3))
	push := Move{From: Sq(6, 3), To: Sq(4, 3), Piece: bp}
	ep := Move{From: Sq(4, 4), To: Sq(5, 3), Piece: wp}

	if err := CheckMove(b, ep, []Move{push}); err != nil {
		t.Fatalf("en passant rejected: %v", err)
	}
	// a single step from d6 to d5 is not a double push
	wantReason(t, CheckMove(b, ep, []Move{{From: Sq(5, 3), To: Sq(4, 3), Piece: bp}}), ReasonNoEnPassantTarget)
	// the push must be the previous move
	later := []Move{push, {From: Sq(0, 0), To: Sq(0, 1), Piece: Piece{Type: Rook, Color: White}}, {From: Sq(7, 0), To: Sq(7, 1), Piece: Piece{Type: Rook, Color: Black}}}
	wantReason(t, CheckMove(b, ep, later), ReasonNoEnPassantTarget)
	// the pushed pawn must land beside the capturer
	wantReason(t, CheckMove(b, Move{From: Sq(4, 4), To: Sq(5, 5), Piece: wp}, []Move{push}), ReasonNoEnPassantTarget)
}

func castleBoard(extra ...PiecePosition) Board {
	base := []PiecePosition{
		at(King, White, 0, 4), at(Rook, White, 0, 0), at(Rook, White, 0, 7),
		at(King, Black, 7, 4),
	}
	return place(append(base, extra...)...)
}

func TestCastling(t *testing.T) {
	king := Piece{Type: King, Color: White}
	short := Move{From: Sq(0, 4), To: Sq(0, 6), Piece: king}
	long := Move{From: Sq(0, 4), To: Sq(0, 2), Piece: king}

	if err := CheckMove(castleBoard(), short, nil); err != nil {
		t.Fatalf("kingside castle rejected: %v", err)
	}
	if err := CheckMove(castleBoard(), long, nil); err != nil {
		t.Fatalf("queenside castle rejected: %v", err)
	}

	cases := []struct {
		name    string
		board   Board
		move    Move
		history []Move
	}{
		{"king moved", castleBoard(), short, []Move{{From: Sq(0, 4), To: Sq(0, 5), Piece: king}, {From: Sq(7, 4), To: Sq(7, 3)}, {From: Sq(0, 5), To: Sq(0, 4), Piece: king}}},
		{"rook moved", castleBoard(), short, []Move{{From: Sq(0, 7), To: Sq(1, 7)}}},
		{"rook captured", castleBoard(), long, []Move{{From: Sq(5, 5), To: Sq(0, 0)}}},
		{"piece between", castleBoard(at(Knight, White, 0, 1)), long, nil},
		{"in check", castleBoard(at(Rook, Black, 5, 4)), short, nil},
		{"passes attacked square", castleBoard(at(Rook, Black, 5, 5)), short, nil},
		{"lands on attacked square", castleBoard(at(Bishop, Black, 2, 4)), long, nil},
		{"no rook", place(at(King, White, 0, 4)), short, nil},
	}
	for _, tc := range cases {
		err := CheckMove(tc.board, tc.move, tc.history)
		if got, _ := ReasonOf(err); got != ReasonCastlingRejected {
			t.Fatalf("%s: err = %v, want castling rejection", tc.name, err)
		}
	}
}

func TestAttacked(t *testing.T) {
	b := place(
		at(Pawn, Black, 4, 4),
		at(Knight, White, 0, 1),
		at(Rook, White, 3, 0), at(Pawn, White, 3, 2),
		at(Bishop, Black, 7, 7),
	)
	cases := []struct {
		sq   Square
		by   Color
		want bool
	}{
		{Sq(3, 3), Black, true},  // pawn e5 attacks d4
		{Sq(3, 4), Black, false}, // but not e4
		{Sq(2, 2), White, true},  // knight b1
		{Sq(3, 1), White, true},  // rook a4
		{Sq(3, 3), White, false}, // rook blocked by c4
		{Sq(4, 4), Black, true},  // bishop h8 defends e5
		{Sq(1, 1), Black, false}, // long diagonal blocked by e5
		{Sq(6, 6), Black, true},  // bishop h8 next door
		{Sq(4, 3), White, true},  // pawn c4 attacks d5
	}
	for _, tc := range cases {
		if got := Attacked(b, tc.sq, tc.by); got != tc.want {
			t.Fatalf("Attacked(%s, %s) = %v, want %v", tc.sq, tc.by, got, tc.want)
		}
	}
}
