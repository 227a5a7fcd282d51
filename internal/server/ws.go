package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-area/internal/area"
	"github.com/park285/chess-area/internal/msgcat"
	"github.com/park285/chess-area/internal/obslog"
	"github.com/park285/chess-area/pkg/chessdto"
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

// WSHandler serves GET /areas/{id}/ws?player=<id>&name=<name>.
type WSHandler struct {
	reg          *area.Registry
	cat          *msgcat.Catalog
	pingInterval time.Duration
}

func NewWSHandler(reg *area.Registry, cat *msgcat.Catalog, pingInterval time.Duration) *WSHandler {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &WSHandler{reg: reg, cat: cat, pingInterval: pingInterval}
}

// areaFromWSPath extracts the id from /areas/{id}/ws.
func areaFromWSPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "areas" || parts[2] != "ws" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	areaID, ok := areaFromWSPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	player := area.Player{
		ID:   strings.TrimSpace(r.URL.Query().Get("player")),
		Name: strings.TrimSpace(r.URL.Query().Get("name")),
	}
	if player.ID == "" {
		http.Error(w, "player is required", http.StatusBadRequest)
		return
	}
	a, err := h.reg.Get(r.Context(), areaID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, area.ErrAreaNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.String("area_id", areaID), zap.Error(err))
		return
	}
	c := &wsConn{
		conn:   conn,
		area:   a,
		player: player,
		cat:    h.cat,
		out:    make(chan chessdto.Envelope, sendBuffer),
	}
	c.serve(r.Context(), h.pingInterval)
}

// wsConn is one client connection. A single writer goroutine owns conn writes.
type wsConn struct {
	conn   *websocket.Conn
	area   *area.Area
	player area.Player
	cat    *msgcat.Catalog
	out    chan chessdto.Envelope

	closeOnce sync.Once
}

func (c *wsConn) serve(parent context.Context, pingInterval time.Duration) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	unsubscribe := c.area.Subscribe(func(st chessdto.AreaState) {
		select {
		case c.out <- chessdto.Envelope{Type: chessdto.EnvelopeState, State: &st}:
		default:
			obslog.L().Warn("ws_broadcast_dropped", zap.String("area_id", c.area.ID()), zap.String("player_id", c.player.ID))
		}
	})
	defer unsubscribe()

	obslog.L().Info("ws_connected", zap.String("area_id", c.area.ID()), zap.String("player_id", c.player.ID))
	defer obslog.L().Info("ws_disconnected", zap.String("area_id", c.area.ID()), zap.String("player_id", c.player.ID))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.writeLoop(ctx)
		cancel()
	}()
	go func() {
		defer wg.Done()
		c.pingLoop(ctx, pingInterval)
		cancel()
	}()

	// initial state so the client does not wait for the next broadcast
	st := c.area.State()
	c.send(ctx, chessdto.Envelope{Type: chessdto.EnvelopeState, State: &st})

	c.readLoop(ctx)
	cancel()
	c.close(websocket.StatusNormalClosure, "bye")
	wg.Wait()
}

func (c *wsConn) readLoop(ctx context.Context) {
	for {
		var cmd chessdto.Command
		if err := wsjson.Read(ctx, c.conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				obslog.L().Debug("ws_read_error", zap.String("player_id", c.player.ID), zap.Error(err))
			}
			return
		}
		res, err := c.area.HandleCommand(ctx, c.player, cmd)
		if err != nil {
			resp := errorResponse(c.cat, err, c.player.ID, c.area.ID())
			obslog.L().Info("ws_command_rejected",
				zap.String("area_id", c.area.ID()),
				zap.String("player_id", c.player.ID),
				zap.String("command", string(cmd.Type)),
				zap.String("code", resp.Code),
			)
			c.send(ctx, chessdto.Envelope{Type: chessdto.EnvelopeError, RequestID: cmd.RequestID, Error: &resp})
			continue
		}
		c.send(ctx, chessdto.Envelope{Type: chessdto.EnvelopeAck, RequestID: cmd.RequestID, Result: &res})
	}
}

func (c *wsConn) send(ctx context.Context, env chessdto.Envelope) {
	select {
	case c.out <- env:
	case <-ctx.Done():
	}
}

func (c *wsConn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, env)
			cancel()
			if err != nil {
				c.close(websocket.StatusInternalError, "write failure")
				return
			}
		}
	}
}

func (c *wsConn) pingLoop(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	consecutivePingFailures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.conn.Ping(pctx)
			cancel()
			if err == nil {
				consecutivePingFailures = 0
				continue
			}
			consecutivePingFailures++
			if consecutivePingFailures >= 2 {
				c.close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

func (c *wsConn) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() { _ = c.conn.Close(code, reason) })
}
