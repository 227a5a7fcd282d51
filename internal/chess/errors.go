package chess

import "errors"

// Lifecycle, turn/status and move-shape failures. All are caller-input or precondition
// violations; none are retried.
var (
	ErrAlreadyInGame     = errf("player is already in this game")
	ErrGameFull          = errf("game is full")
	ErrNotInGame         = errf("player is not in this game")
	ErrGameNotInProgress = errf("game is not in progress")
	ErrNotYourTurn       = errf("not your turn")
	ErrNoPieceAtOrigin   = errf("start location contains no piece to move")
	ErrNullMove          = errf("origin and destination are the same square")
	ErrCannotCaptureOwn  = errf("cannot capture your own piece")
	ErrIllegalMove       = errf("illegal move")
	ErrInvalidSquare     = errf("invalid square")
	ErrInvalidPromotion  = errf("invalid promotion piece")
	ErrCorruptRecord     = errf("game record does not replay")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error { return staticErr(s) }

// IllegalReason says which piece rule a move broke.
type IllegalReason string

const (
	ReasonWrongShape        IllegalReason = "wrong-shape"
	ReasonBlockedPath       IllegalReason = "blocked-path"
	ReasonOwnPieceAtTarget  IllegalReason = "destination-occupied-by-own-piece"
	ReasonNoEnPassantTarget IllegalReason = "no-en-passant-target"
	ReasonCastlingRejected  IllegalReason = "castling-precondition-failed"
)

// IllegalMoveError is returned by the piece rules. errors.Is(err, ErrIllegalMove) holds.
type IllegalMoveError struct {
	Reason IllegalReason
	Piece  PieceType
	From   Square
	To     Square
}

func (e *IllegalMoveError) Error() string {
	return "illegal move: " + string(e.Piece) + " " + e.From.String() + "-" + e.To.String() + " (" + string(e.Reason) + ")"
}

func (e *IllegalMoveError) Is(target error) bool { return target == ErrIllegalMove }

func illegal(reason IllegalReason, m Move) error {
	return &IllegalMoveError{Reason: reason, Piece: m.Piece.Type, From: m.From, To: m.To}
}

// ReasonOf extracts the rule violation from err, if any.
func ReasonOf(err error) (IllegalReason, bool) {
	var ie *IllegalMoveError
	if errors.As(err, &ie) {
		return ie.Reason, true
	}
	return "", false
}
