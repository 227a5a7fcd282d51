package chess

import (
	"errors"
	"reflect"
	"testing"
)

func startedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1")
	if err := g.Join("p1"); err != nil {
		t.Fatalf("join p1: %v", err)
	}
	if err := g.Join("p2"); err != nil {
		t.Fatalf("join p2: %v", err)
	}
	return g
}

func play(t *testing.T, g *Game, player, coord string) Move {
	t.Helper()
	m, err := g.ApplyMove(player, sq(t, coord[:2]), sq(t, coord[2:4]))
	if err != nil {
		t.Fatalf("%s %s: %v", player, coord, err)
	}
	return m
}

func playAll(t *testing.T, g *Game, coords ...string) {
	t.Helper()
	for i, c := range coords {
		player := "p1"
		if i%2 == 1 {
			player = "p2"
		}
		play(t, g, player, c)
	}
}

func TestJoinAssignsSeats(t *testing.T) {
	g := NewGame("g1")
	if g.Status() != StatusWaiting {
		t.Fatalf("new game status = %s", g.Status())
	}
	if err := g.Join("p1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := g.Join("p1"); !errors.Is(err, ErrAlreadyInGame) {
		t.Fatalf("second join = %v, want ErrAlreadyInGame", err)
	}
	if g.Status() != StatusWaiting {
		t.Fatalf("one player status = %s", g.Status())
	}
	if err := g.Join("p2"); err != nil {
		t.Fatalf("join p2: %v", err)
	}
	s := g.Snapshot()
	if s.White != "p1" || s.Black != "p2" || s.Status != StatusInProgress {
		t.Fatalf("snapshot = %+v", s)
	}
	if err := g.Join("p3"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("third join = %v, want ErrGameFull", err)
	}
}

func TestTurnAlternation(t *testing.T) {
	g := startedGame(t)
	if g.Turn() != White {
		t.Fatalf("first turn = %s", g.Turn())
	}
	m := play(t, g, "p1", "e2e4")
	if m.Piece != (Piece{Type: Pawn, Color: White}) {
		t.Fatalf("move piece = %+v", m.Piece)
	}
	if s := g.Snapshot(); s.MoveCount != 1 || s.Turn != Black {
		t.Fatalf("after e2e4: %+v", s)
	}
	if _, err := g.ApplyMove("p1", Sq(1, 3), Sq(2, 3)); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("white twice = %v, want ErrNotYourTurn", err)
	}
	play(t, g, "p2", "d7d6")
	play(t, g, "p1", "d2d3")
	for i, m := range g.Moves() {
		want := White
		if i%2 == 1 {
			want = Black
		}
		if m.Piece.Color != want {
			t.Fatalf("move %d by %s", i, m.Piece.Color)
		}
	}
	if g.Turn() != Black {
		t.Fatalf("turn after three moves = %s", g.Turn())
	}
}

func TestValidatorOrder(t *testing.T) {
	waiting := NewGame("w")
	_ = waiting.Join("p1")
	if _, err := waiting.ApplyMove("p1", Sq(1, 4), Sq(3, 4)); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("move before start = %v", err)
	}

	g := startedGame(t)
	cases := []struct {
		name   string
		player string
		from   string
		to     string
		want   error
	}{
		{"stranger", "p3", "e2", "e4", ErrNotInGame},
		{"empty origin", "p1", "e3", "e4", ErrNoPieceAtOrigin},
		{"enemy piece", "p1", "e7", "e5", ErrNotYourTurn},
		{"black on white's turn", "p2", "e2", "e4", ErrNotYourTurn},
		{"null move", "p1", "e2", "e2", ErrNullMove},
		{"own capture", "p1", "a1", "a2", ErrCannotCaptureOwn},
		{"blocked rook", "p1", "a1", "a3", ErrIllegalMove},
	}
	for _, tc := range cases {
		before := g.Snapshot()
		_, err := g.ApplyMove(tc.player, sq(t, tc.from), sq(t, tc.to))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
		if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
			t.Fatalf("%s: rejected move changed state", tc.name)
		}
	}
	if len(g.Moves()) != 0 {
		t.Fatalf("moves appended on rejection")
	}
}

func TestLeave(t *testing.T) {
	g := NewGame("g1")
	_ = g.Join("p1")
	if err := g.Leave("p2"); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("leave stranger = %v", err)
	}
	_ = g.SetPromotion("p1", Rook)
	if err := g.Leave("p1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !reflect.DeepEqual(g.Snapshot(), NewGame("x").Snapshot()) || g.Promotion(White) != Queen {
		t.Fatalf("leave before start did not reset: %+v", g.Snapshot())
	}

	g = startedGame(t)
	play(t, g, "p1", "e2e4")
	if err := g.Leave("p1"); err != nil {
		t.Fatalf("leave in progress: %v", err)
	}
	s := g.Snapshot()
	if s.Status != StatusOver || s.Winner != "p2" {
		t.Fatalf("after leave: %+v", s)
	}
	if err := g.Leave("p2"); err != nil {
		t.Fatalf("leave finished game: %v", err)
	}
	if !reflect.DeepEqual(s, g.Snapshot()) {
		t.Fatalf("leaving a finished game changed it")
	}
	if _, err := g.ApplyMove("p2", Sq(6, 4), Sq(4, 4)); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("move after leave = %v", err)
	}
}

func TestKingCaptureEndsGame(t *testing.T) {
	g := startedGame(t)
	playAll(t, g, "e2e4", "f7f6", "d1h5", "a7a6", "h5e8")
	s := g.Snapshot()
	if s.Status != StatusOver || s.Winner != "p1" {
		t.Fatalf("after king capture: %+v", s)
	}
	if g.Board().HasKing(Black) {
		t.Fatalf("black king still on board")
	}
	if _, err := g.ApplyMove("p2", Sq(5, 0), Sq(4, 0)); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("move after king capture = %v", err)
	}
	if !reflect.DeepEqual(s, g.Snapshot()) {
		t.Fatalf("finished game changed")
	}
}

func TestPromotionPreference(t *testing.T) {
	g := startedGame(t)
	if err := g.SetPromotion("p1", King); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("promote to king = %v", err)
	}
	if err := g.SetPromotion("p3", Knight); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("stranger promotion = %v", err)
	}
	if err := g.SetPromotion("p1", Knight); err != nil {
		t.Fatalf("SetPromotion: %v", err)
	}
	playAll(t, g, "a2a4", "h7h5", "a4a5", "h5h4", "a5a6", "h4h3", "a6b7", "h3g2")
	m := play(t, g, "p1", "b7a8")
	if m.Promotion != Knight || m.Coordinate() != "b7a8n" {
		t.Fatalf("white promotion = %+v (%s)", m, m.Coordinate())
	}
	m = play(t, g, "p2", "g2h1")
	if m.Promotion != Queen {
		t.Fatalf("black default promotion = %s", m.Promotion)
	}
	b := g.Board()
	if p, _ := b.At(Sq(7, 0)); p != (Piece{Type: Knight, Color: White}) {
		t.Fatalf("a8 = %+v", p)
	}
	if p, _ := b.At(Sq(0, 7)); p != (Piece{Type: Queen, Color: Black}) {
		t.Fatalf("h1 = %+v", p)
	}
}

func TestBoardMatchesMoveList(t *testing.T) {
	g := startedGame(t)
	coords := []string{"e2e4", "d7d5", "e4d5", "c7c5", "d5c6", "b8c6", "g1f3", "c8g4", "f1e2", "d8d7", "e1g1", "e8c8"}
	for i, c := range coords {
		player := "p1"
		if i%2 == 1 {
			player = "p2"
		}
		before := BoardAt(g.Moves())
		m := play(t, g, player, c)
		if p, ok := before.At(m.To); ok && p.Color == m.Piece.Color {
			t.Fatalf("%s captured own piece", c)
		}
		if !reflect.DeepEqual(g.Board().Pieces(), BoardAt(g.Moves()).Pieces()) {
			t.Fatalf("board drifted after %s", c)
		}
	}
	b := g.Board()
	if p, _ := b.At(Sq(0, 5)); p.Type != Rook {
		t.Fatalf("white rook not on f1 after castling")
	}
	if p, _ := b.At(Sq(7, 3)); p.Type != Rook || p.Color != Black {
		t.Fatalf("black rook not on d8 after castling")
	}
	if _, ok := b.At(Sq(4, 2)); ok {
		t.Fatalf("c5 pawn not removed en passant")
	}
}

func TestRecordRestore(t *testing.T) {
	g := startedGame(t)
	_ = g.SetPromotion("p2", Bishop)
	playAll(t, g, "e2e4", "e7e5", "g1f3")

	r, err := Restore(g.Record())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !reflect.DeepEqual(r.Snapshot(), g.Snapshot()) || r.Promotion(Black) != Bishop || r.ID() != "g1" {
		t.Fatalf("restored snapshot differs")
	}

	forged := g.Record()
	forged.State.Moves = append(forged.State.Moves, Move{From: Sq(6, 3), To: Sq(3, 3)})
	if _, err := Restore(forged); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("forged move = %v, want ErrCorruptRecord", err)
	}

	lying := g.Record()
	lying.State.Moves[0].Piece = Piece{Type: Queen, Color: White}
	if _, err := Restore(lying); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("forged piece = %v, want ErrCorruptRecord", err)
	}

	_ = g.Leave("p2")
	abandoned, err := Restore(g.Record())
	if err != nil {
		t.Fatalf("Restore abandoned: %v", err)
	}
	if abandoned.Status() != StatusOver || abandoned.Winner() != "p1" {
		t.Fatalf("abandoned restore = %+v", abandoned.Snapshot())
	}

	bad := g.Record()
	bad.State.Winner = "p9"
	if _, err := Restore(bad); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("unknown winner = %v", err)
	}
}
