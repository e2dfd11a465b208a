// Package web serves the sticky-note board over HTTP.
package web

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/stickies/internal/board"
	"github.com/hpungsan/stickies/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// NewServer creates and configures the HTTP server for the board.
func NewServer(b *board.Board, cfg *config.Config, logger *zap.Logger, version string) *http.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.WebBind, fmt.Sprint(cfg.WebPort)),
		Handler:           NewHandler(b, cfg, logger, version),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}
}

// NewHandler builds the routed, middleware-wrapped handler.
func NewHandler(b *board.Board, cfg *config.Config, logger *zap.Logger, version string) http.Handler {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	h := &Handlers{
		board:    b,
		cfg:      cfg,
		renderer: NewRenderer(templateSub, version, logger),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/notes", http.StatusFound)
	})
	mux.HandleFunc("GET /notes", h.HandleBoard)
	mux.HandleFunc("POST /notes", h.HandleAdd)
	mux.HandleFunc("POST /notes/{id}/edit", h.HandleEdit)
	mux.HandleFunc("POST /notes/{id}/save", h.HandleSave)
	mux.HandleFunc("POST /notes/{id}/cancel", h.HandleCancel)
	mux.HandleFunc("POST /notes/{id}/delete", h.HandleDelete)
	mux.HandleFunc("DELETE /notes/{id}", h.HandleDelete)
	mux.HandleFunc("POST /notes/{id}/swipe", h.HandleSwipe)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return withRequestID(accessLog(logger, securityHeaders(mux)))
}

// Run serves srv until ctx ends or the process receives SIGINT/SIGTERM,
// then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	logger.Info("stickies board running", zap.String("url", "http://"+ln.Addr().String()))
	if host, _, _ := net.SplitHostPort(srv.Addr); host == "" || host == "0.0.0.0" || host == "::" {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
