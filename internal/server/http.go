package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-area/internal/area"
	"github.com/park285/chess-area/internal/chess"
	"github.com/park285/chess-area/internal/history"
	"github.com/park285/chess-area/internal/msgcat"
	"github.com/park285/chess-area/internal/obslog"
	"github.com/park285/chess-area/internal/render"
	"github.com/park285/chess-area/pkg/chessdto"
)

const requestTimeout = 5 * time.Second

// API is the read-only HTTP surface served with fasthttp.
type API struct {
	reg          *area.Registry
	results      history.Repository
	cat          *msgcat.Catalog
	historyLimit int
}

func NewAPI(reg *area.Registry, results history.Repository, cat *msgcat.Catalog, historyLimit int) *API {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &API{reg: reg, results: results, cat: cat, historyLimit: historyLimit}
}

// Handler routes:
//
//	GET /health
//	GET /areas
//	GET /areas/{id}
//	GET /areas/{id}/history
//	GET /areas/{id}/board.png?size=n&flip=1
//	GET /players/{id}/results?limit=n
func (api *API) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() {
			ctx.Response.Header.Set("Allow", fasthttp.MethodGet)
			api.writeJSON(ctx, fasthttp.StatusMethodNotAllowed, chessdto.ErrorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
			return
		}
		parts := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
		switch {
		case len(parts) == 1 && parts[0] == "health":
			api.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		case len(parts) == 1 && parts[0] == "areas":
			api.areaList(ctx)
		case len(parts) == 2 && parts[0] == "areas":
			api.areaState(ctx, parts[1])
		case len(parts) == 3 && parts[0] == "areas" && parts[2] == "history":
			api.areaHistory(ctx, parts[1])
		case len(parts) == 3 && parts[0] == "areas" && parts[2] == "board.png":
			api.areaBoard(ctx, parts[1])
		case len(parts) == 3 && parts[0] == "players" && parts[2] == "results":
			api.playerResults(ctx, parts[1])
		default:
			api.writeJSON(ctx, fasthttp.StatusNotFound, chessdto.ErrorResponse{Error: "route not found", Code: "NOT_FOUND"})
		}
	}
}

func (api *API) areaList(ctx *fasthttp.RequestCtx) {
	rctx, cancel := requestContext()
	defer cancel()
	ids, err := api.reg.Known(rctx)
	if err != nil {
		api.writeError(ctx, err, "")
		return
	}
	api.writeJSON(ctx, fasthttp.StatusOK, map[string][]string{"areas": ids})
}

func (api *API) areaState(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	a, err := api.reg.Get(rctx, id)
	if err != nil {
		api.writeError(ctx, err, id)
		return
	}
	api.writeJSON(ctx, fasthttp.StatusOK, a.State())
}

func (api *API) areaHistory(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	a, err := api.reg.Get(rctx, id)
	if err != nil {
		api.writeError(ctx, err, id)
		return
	}
	entries := a.History()
	if entries == nil {
		entries = []chessdto.HistoryEntry{}
	}
	api.writeJSON(ctx, fasthttp.StatusOK, entries)
}

// areaBoard renders the current position, or the start position when the area has no
// game yet.
func (api *API) areaBoard(ctx *fasthttp.RequestCtx, id string) {
	opts := render.Options{Flip: ctx.QueryArgs().GetBool("flip")}
	if raw := ctx.QueryArgs().Peek("size"); len(raw) > 0 {
		n, err := fasthttp.ParseUint(raw)
		if err != nil {
			api.writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.ErrorResponse{Error: "size must be a positive integer", Code: "INVALID_COMMAND"})
			return
		}
		opts.SquareSize = n
	}

	rctx, cancel := requestContext()
	defer cancel()
	a, err := api.reg.Get(rctx, id)
	if err != nil {
		api.writeError(ctx, err, id)
		return
	}
	board, last, ok := a.Board()
	if !ok {
		board = chess.InitialBoard()
	}
	opts.LastMove = last

	img, err := render.RenderPNG(rctx, board, opts)
	if err != nil {
		api.writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.ErrorResponse{Error: err.Error(), Code: "INVALID_COMMAND"})
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.SetBody(img)
}

func (api *API) playerResults(ctx *fasthttp.RequestCtx, playerID string) {
	limit := api.historyLimit
	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		n, err := fasthttp.ParseUint(raw)
		if err != nil || n <= 0 {
			api.writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.ErrorResponse{Error: "limit must be a positive integer", Code: "INVALID_COMMAND"})
			return
		}
		if n < limit {
			limit = n
		}
	}
	resp := chessdto.ResultsResponse{PlayerID: playerID, Results: []chessdto.GameResult{}}
	if api.results != nil {
		rctx, cancel := requestContext()
		defer cancel()
		list, err := api.results.RecentByPlayer(rctx, playerID, limit)
		if err != nil {
			api.writeError(ctx, err, "")
			return
		}
		for _, r := range list {
			resp.Results = append(resp.Results, resultDTO(r))
		}
	}
	api.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func resultDTO(r *history.Result) chessdto.GameResult {
	return chessdto.GameResult{
		GameID:    r.GameID,
		AreaID:    r.AreaID,
		White:     chessdto.Occupant{ID: r.WhiteID, Name: r.WhiteName},
		Black:     chessdto.Occupant{ID: r.BlackID, Name: r.BlackName},
		WinnerID:  r.WinnerID,
		Outcome:   string(r.Outcome),
		Method:    string(r.Method),
		Moves:     append([]string{}, r.Moves...),
		PGN:       history.BuildPGN(r),
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}

func (api *API) writeError(ctx *fasthttp.RequestCtx, err error, areaID string) {
	resp := errorResponse(api.cat, err, "", areaID)
	status := fasthttp.StatusBadRequest
	switch {
	case errors.Is(err, area.ErrAreaNotFound), errors.Is(err, history.ErrNotFound):
		status = fasthttp.StatusNotFound
	case resp.Code == codeInternal:
		status = fasthttp.StatusInternalServerError
		obslog.L().Error("http_internal_error", zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	api.writeJSON(ctx, status, resp)
}

func (api *API) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error("encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// requestContext bounds the storage calls of one request.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
