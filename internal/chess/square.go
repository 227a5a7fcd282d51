package chess

import (
	"fmt"
	"strings"
)

// Square is a board coordinate. Row 0 is rank 1 (white's back rank), Col 0 is file A.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Sq(row, col int) Square { return Square{Row: row, Col: col} }

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// String returns algebraic form, e.g. "e2".
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return string([]byte{byte('a' + s.Col), byte('1' + s.Row)})
}

// ParseSquare accepts algebraic squares such as "e2" or "E2".
func ParseSquare(raw string) (Square, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if len(v) != 2 || v[0] < 'a' || v[0] > 'h' || v[1] < '1' || v[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, raw)
	}
	return Square{Row: int(v[1] - '1'), Col: int(v[0] - 'a')}, nil
}

func (s Square) offset(dr, dc int) Square { return Square{Row: s.Row + dr, Col: s.Col + dc} }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
