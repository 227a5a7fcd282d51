package chessdto

// CommandType names an area command.
type CommandType string

const (
	CommandJoinGame  CommandType = "JoinGame"
	CommandLeaveGame CommandType = "LeaveGame"
	CommandChessMove CommandType = "ChessMove"
	CommandPromotion CommandType = "Promotion"
)

// Command is sent by a client to its area. GameID is required for everything except
// JoinGame. Squares use algebraic form ("e2"); Piece is one of Q, R, B, N.
type Command struct {
	RequestID string      `json:"requestId,omitempty"`
	Type      CommandType `json:"type"`
	GameID    string      `json:"gameId,omitempty"`
	From      string      `json:"from,omitempty"`
	To        string      `json:"to,omitempty"`
	Piece     string      `json:"piece,omitempty"`
}

// CommandResult acknowledges an accepted command.
type CommandResult struct {
	GameID string `json:"gameId,omitempty"`
	Move   string `json:"move,omitempty"`
}

// EnvelopeType tags a server-to-client websocket frame.
type EnvelopeType string

const (
	EnvelopeAck   EnvelopeType = "ack"
	EnvelopeError EnvelopeType = "error"
	EnvelopeState EnvelopeType = "state"
)

// Envelope is every frame the server writes to a websocket.
type Envelope struct {
	Type      EnvelopeType   `json:"type"`
	RequestID string         `json:"requestId,omitempty"`
	Result    *CommandResult `json:"result,omitempty"`
	Error     *ErrorResponse `json:"error,omitempty"`
	State     *AreaState     `json:"state,omitempty"`
}
