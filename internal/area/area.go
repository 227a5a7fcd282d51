package area

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-area/internal/chess"
	"github.com/park285/chess-area/internal/history"
	"github.com/park285/chess-area/internal/obslog"
	"github.com/park285/chess-area/pkg/chessdto"
)

// Deps are the optional collaborators of an area. Nil members are skipped.
type Deps struct {
	Store   SnapshotStore
	Results history.Repository
	NewID   func() string
}

// Area owns at most one game and serializes every call into it.
type Area struct {
	id   string
	deps Deps

	mu        sync.Mutex
	version   int64
	game      *chess.Game
	names     map[string]string // player id -> display name
	history   []chessdto.HistoryEntry
	listeners map[int]Listener
	nextSub   int
}

func New(id string, deps Deps) *Area {
	if deps.NewID == nil {
		deps.NewID = func() string { return uuid.NewString() }
	}
	return &Area{
		id:        id,
		deps:      deps,
		names:     make(map[string]string),
		listeners: make(map[int]Listener),
	}
}

func (a *Area) ID() string { return a.id }

// Subscribe registers fn for state broadcasts and returns a func that removes it.
func (a *Area) Subscribe(fn Listener) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// HandleCommand applies cmd on behalf of p. Rejected commands leave the area untouched
// and notify nobody.
func (a *Area) HandleCommand(ctx context.Context, p Player, cmd chessdto.Command) (chessdto.CommandResult, error) {
	if strings.TrimSpace(p.ID) == "" {
		return chessdto.CommandResult{}, ErrInvalidPlayer
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if cmd.Type == chessdto.CommandJoinGame {
		return a.join(ctx, p)
	}

	switch cmd.Type {
	case chessdto.CommandLeaveGame, chessdto.CommandChessMove, chessdto.CommandPromotion:
	default:
		return chessdto.CommandResult{}, fmt.Errorf("%w: %q", ErrInvalidCommand, cmd.Type)
	}
	if a.game == nil {
		return chessdto.CommandResult{}, chess.ErrGameNotInProgress
	}
	if cmd.GameID != a.game.ID() {
		return chessdto.CommandResult{}, ErrGameIDMismatch
	}

	g := a.game
	res := chessdto.CommandResult{GameID: g.ID()}
	wasOver := g.Status() == chess.StatusOver
	method := history.MethodKingCapture

	switch cmd.Type {
	case chessdto.CommandLeaveGame:
		if err := g.Leave(p.ID); err != nil {
			return chessdto.CommandResult{}, err
		}
		method = history.MethodAbandoned
	case chessdto.CommandChessMove:
		from, err := chess.ParseSquare(cmd.From)
		if err != nil {
			return chessdto.CommandResult{}, err
		}
		to, err := chess.ParseSquare(cmd.To)
		if err != nil {
			return chessdto.CommandResult{}, err
		}
		m, err := g.ApplyMove(p.ID, from, to)
		if err != nil {
			return chessdto.CommandResult{}, err
		}
		res.Move = m.Coordinate()
	case chessdto.CommandPromotion:
		pt := chess.PieceType(strings.ToUpper(strings.TrimSpace(cmd.Piece)))
		if err := g.SetPromotion(p.ID, pt); err != nil {
			return chessdto.CommandResult{}, err
		}
	}

	if !wasOver && g.Status() == chess.StatusOver {
		a.finish(ctx, g, method)
	}
	a.commit(ctx, string(cmd.Type), p)
	return res, nil
}

// join seats p in the current game, starting a new one when none is running.
func (a *Area) join(ctx context.Context, p Player) (chessdto.CommandResult, error) {
	g := a.game
	if g == nil || g.Status() == chess.StatusOver {
		g = chess.NewGame(a.deps.NewID())
	}
	if err := g.Join(p.ID); err != nil {
		return chessdto.CommandResult{}, err
	}
	if g != a.game {
		obslog.L().Info("game_created", zap.String("area_id", a.id), zap.String("game_id", g.ID()))
	}
	a.game = g
	a.names[p.ID] = displayName(p)
	a.commit(ctx, string(chessdto.CommandJoinGame), p)
	return chessdto.CommandResult{GameID: g.ID()}, nil
}

// finish scores a game that just ended and stores its result.
func (a *Area) finish(ctx context.Context, g *chess.Game, method history.Method) {
	white, black, winner := g.White(), g.Black(), g.Winner()
	scores := make(map[string]int, 2)
	for _, id := range []string{white, black} {
		if id == "" {
			continue
		}
		score := 0
		if id == winner {
			score = 1
		}
		scores[a.names[id]] = score
	}
	a.history = append(a.history, chessdto.HistoryEntry{GameID: g.ID(), Scores: scores})
	obslog.L().Info("game_over",
		zap.String("area_id", a.id),
		zap.String("game_id", g.ID()),
		zap.String("winner", winner),
		zap.String("method", string(method)),
		zap.Int("moves", len(g.Moves())),
	)

	if a.deps.Results == nil {
		return
	}
	res := a.result(g, method)
	if err := a.deps.Results.SaveResult(ctx, res); err != nil {
		obslog.L().Warn("result_save_error", zap.String("area_id", a.id), zap.String("game_id", g.ID()), zap.Error(err))
	}
}

func (a *Area) result(g *chess.Game, method history.Method) *history.Result {
	moves := g.Moves()
	coords := make([]string, len(moves))
	for i, m := range moves {
		coords[i] = m.Coordinate()
	}
	res := &history.Result{
		GameID:    g.ID(),
		AreaID:    a.id,
		WhiteID:   g.White(),
		WhiteName: a.names[g.White()],
		BlackID:   g.Black(),
		BlackName: a.names[g.Black()],
		WinnerID:  g.Winner(),
		Outcome:   history.OutcomeDraw,
		Method:    method,
		Moves:     coords,
		StartedAt: g.CreatedAt(),
		EndedAt:   time.Now().UTC(),
	}
	switch g.Winner() {
	case g.White():
		res.Outcome = history.OutcomeWhite
	case g.Black():
		res.Outcome = history.OutcomeBlack
	}
	return res
}

// commit persists the area and notifies listeners. Called with a.mu held after an
// accepted command.
func (a *Area) commit(ctx context.Context, action string, p Player) {
	a.version++
	if a.deps.Store != nil {
		if err := a.deps.Store.Save(ctx, a.record()); err != nil {
			obslog.L().Warn("area_save_error", zap.String("area_id", a.id), zap.Int64("version", a.version), zap.Error(err))
		}
	}
	obslog.L().Debug("area_command", zap.String("area_id", a.id), zap.String("command", action), zap.String("player_id", p.ID))

	st := a.state(false)
	for _, fn := range a.listeners {
		fn(st)
	}
}

func (a *Area) record() *Record {
	rec := &Record{AreaID: a.id, Version: a.version, Names: make(map[string]string, len(a.names))}
	for k, v := range a.names {
		rec.Names[k] = v
	}
	rec.History = append(rec.History, a.history...)
	if a.game != nil {
		gr := a.game.Record()
		rec.Game = &gr
	}
	return rec
}

// restore loads rec into a fresh area. A game that no longer replays is dropped.
func (a *Area) restore(rec *Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.version = rec.Version
	for k, v := range rec.Names {
		a.names[k] = v
	}
	a.history = append(a.history[:0], rec.History...)
	if rec.Game == nil {
		return
	}
	g, err := chess.Restore(*rec.Game)
	if err != nil {
		obslog.L().Warn("area_restore_error", zap.String("area_id", a.id), zap.String("game_id", rec.Game.ID), zap.Error(err))
		return
	}
	a.game = g
}

// State returns the current public view of the area, including an ASCII board.
func (a *Area) State() chessdto.AreaState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state(true)
}

// GameID returns the id of the current game, or "".
func (a *Area) GameID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.game == nil {
		return ""
	}
	return a.game.ID()
}

// Board returns the current position and the last accepted move, if any. ok is false
// when the area has no game.
func (a *Area) Board() (b chess.Board, last *chess.Move, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.game == nil {
		return chess.Board{}, nil, false
	}
	moves := a.game.Moves()
	if len(moves) > 0 {
		last = &moves[len(moves)-1]
	}
	return a.game.Board(), last, true
}

// History returns the scored list of finished games, oldest first.
func (a *Area) History() []chessdto.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]chessdto.HistoryEntry(nil), a.history...)
}

func (a *Area) state(withBoard bool) chessdto.AreaState {
	st := chessdto.AreaState{
		AreaID:  a.id,
		History: append([]chessdto.HistoryEntry{}, a.history...),
	}
	ids := make([]string, 0, len(a.names))
	for id := range a.names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	st.Occupants = make([]chessdto.Occupant, 0, len(ids))
	for _, id := range ids {
		st.Occupants = append(st.Occupants, chessdto.Occupant{ID: id, Name: a.names[id]})
	}
	if a.game != nil {
		v := gameView(a.game, withBoard)
		st.Game = &v
	}
	return st
}

func gameView(g *chess.Game, withBoard bool) chessdto.GameView {
	s := g.Snapshot()
	v := chessdto.GameView{
		ID:        g.ID(),
		Status:    string(s.Status),
		White:     s.White,
		Black:     s.Black,
		Winner:    s.Winner,
		Turn:      string(s.Turn),
		MoveCount: s.MoveCount,
		Moves:     make([]string, 0, s.MoveCount),
		Pieces:    make([]chessdto.PieceView, 0, len(s.Pieces)),
	}
	for _, m := range g.Moves() {
		v.Moves = append(v.Moves, m.Coordinate())
	}
	for _, p := range s.Pieces {
		v.Pieces = append(v.Pieces, chessdto.PieceView{
			Type:   string(p.Piece.Type),
			Color:  string(p.Piece.Color),
			Square: p.Square.String(),
		})
	}
	if withBoard {
		v.Board = g.Board().String()
	}
	return v
}

func displayName(p Player) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return p.ID
}
