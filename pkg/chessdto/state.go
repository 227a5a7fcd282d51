package chessdto

import "time"

// PieceView is one occupied square.
type PieceView struct {
	Type   string `json:"type"`
	Color  string `json:"color"`
	Square string `json:"square"`
}

// GameView is the public view of the current game.
type GameView struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	White     string      `json:"white,omitempty"`
	Black     string      `json:"black,omitempty"`
	Winner    string      `json:"winner,omitempty"`
	Turn      string      `json:"turn"`
	MoveCount int         `json:"moveCount"`
	Moves     []string    `json:"moves"`
	Pieces    []PieceView `json:"pieces"`
	Board     string      `json:"board,omitempty"`
}

type Occupant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryEntry scores one finished game by player name: 1 for the winner, 0 otherwise.
type HistoryEntry struct {
	GameID string         `json:"gameId"`
	Scores map[string]int `json:"scores"`
}

// AreaState is broadcast after every accepted command and served by GET /areas/{id}.
type AreaState struct {
	AreaID    string         `json:"areaId"`
	Occupants []Occupant     `json:"occupants"`
	Game      *GameView      `json:"game,omitempty"`
	History   []HistoryEntry `json:"history"`
}

// GameResult is a stored finished game.
type GameResult struct {
	GameID    string    `json:"gameId"`
	AreaID    string    `json:"areaId"`
	White     Occupant  `json:"white"`
	Black     Occupant  `json:"black"`
	WinnerID  string    `json:"winnerId,omitempty"`
	Outcome   string    `json:"outcome"`
	Method    string    `json:"method"`
	Moves     []string  `json:"moves"`
	PGN       string    `json:"pgn"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

type ResultsResponse struct {
	PlayerID string       `json:"playerId"`
	Results  []GameResult `json:"results"`
}
