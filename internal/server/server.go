package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-area/internal/obslog"
)

// Server runs the fasthttp query API and the websocket endpoint side by side.
type Server struct {
	httpAddr string
	wsAddr   string
	api      *API
	ws       *WSHandler
}

func New(httpAddr, wsAddr string, api *API, ws *WSHandler) *Server {
	return &Server{httpAddr: httpAddr, wsAddr: wsAddr, api: api, ws: ws}
}

// Run serves until ctx is cancelled or a listener fails, then shuts both down.
func (s *Server) Run(ctx context.Context) error {
	fast := &fasthttp.Server{
		Handler:      s.api.Handler(),
		Name:         "chess-area",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	mux := http.NewServeMux()
	mux.Handle("/areas/", s.ws)
	wsSrv := &http.Server{
		Addr:              s.wsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// hijacked websocket connections outlive Shutdown; tie them to ctx instead
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 2)
	go func() {
		obslog.L().Info("http_listen", zap.String("addr", s.httpAddr))
		errCh <- fast.ListenAndServe(s.httpAddr)
	}()
	go func() {
		obslog.L().Info("ws_listen", zap.String("addr", s.wsAddr))
		if err := wsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := wsSrv.Shutdown(shutdownCtx); err != nil {
		obslog.L().Warn("ws_shutdown_error", zap.Error(err))
	}
	if err := fast.ShutdownWithContext(shutdownCtx); err != nil {
		obslog.L().Warn("http_shutdown_error", zap.Error(err))
	}
	return runErr
}
