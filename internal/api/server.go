// Package api serves the active translation over HTTP and pushes published
// views to WebSocket clients.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperScripture/internal/annotations"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
	"github.com/FocuswithJustin/JuniperScripture/internal/reader"
)

// Server is the HTTP front of one reader session.
type Server struct {
	cfg     Config
	session *reader.Session
	notes   *annotations.Store
	hub     *Hub
	started time.Time
}

// New returns a server over session. notes may be nil, in which case an
// empty in-memory set is used.
func New(cfg Config, session *reader.Session, notes *annotations.Store) *Server {
	if notes == nil {
		notes = annotations.New()
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	return &Server{
		cfg:     cfg,
		session: session,
		notes:   notes,
		hub:     NewHub(),
		started: time.Now(),
	}
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logging.CombinedMiddleware(s.routes())
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /translations", s.handleTranslations)
	mux.HandleFunc("GET /books", s.handleBooks)
	mux.HandleFunc("GET /chapters/{book}", s.handleChapters)
	mux.HandleFunc("GET /verses/{book}/{chapter}", s.handleVerses)
	mux.HandleFunc("POST /switch/{id}", s.handleSwitch)
	mux.HandleFunc("GET /navigate", s.handleNavigate)
	mux.HandleFunc("POST /navigate", s.handleNavigate)
	mux.HandleFunc("GET /current", s.handleCurrent)
	mux.HandleFunc("GET /annotations/{book}/{chapter}", s.handleAnnotations)
	mux.HandleFunc("POST /annotations", s.handleAddAnnotation)
	mux.HandleFunc("DELETE /annotations/{id}", s.handleDeleteAnnotation)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// Run starts the hub and the view pump. It returns when ctx is done.
func (s *Server) Run(ctx context.Context) {
	views, cancel := s.session.Subscribe()
	defer cancel()

	go s.hub.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-views:
			if !ok {
				return
			}
			s.hub.Broadcast(newViewMessage(p))
		}
	}
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	go s.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		logging.ServerStartup("api", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	logging.Info("server_shutdown", "addr", s.cfg.Addr)
	return srv.Shutdown(shutdownCtx)
}
