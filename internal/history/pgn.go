package history

import (
	"fmt"
	"strings"
	"time"
)

func mapResultToPGN(o Outcome) string {
	switch o {
	case OutcomeWhite:
		return "1-0"
	case OutcomeBlack:
		return "0-1"
	case OutcomeDraw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// BuildPGN renders r as PGN headers followed by numbered coordinate moves.
func BuildPGN(r *Result) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	date := r.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	pgnResult := mapResultToPGN(r.Outcome)
	b.WriteString("[Event \"Chess Area\"]\n")
	b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", sanitizePGN(r.AreaID)))
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(displayName(r.WhiteName, r.WhiteID))))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(displayName(r.BlackName, r.BlackID))))
	if r.Method != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(string(r.Method))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult))

	for i := 0; i < len(r.Moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(r.Moves[i])))
		if i+1 < len(r.Moves) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(r.Moves[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func displayName(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
