// Package web serves the derived views over HTTP: a JSON API plus a
// minimal HTML rendering of the same queries.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"agentview/internal/config"
	"agentview/internal/memory"
	"agentview/internal/search"
)

type Server struct {
	cfg config.AppConfig
	mem *memory.Reader
	idx *search.Index
	log *slog.Logger
}

// New wires a server. idx may be nil, which disables the search endpoint.
func New(cfg config.AppConfig, mem *memory.Reader, idx *search.Index, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, mem: mem, idx: idx, log: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("GET /api/commands", s.handleCommands)
	mux.HandleFunc("GET /api/memory", s.handleMemory)
	mux.HandleFunc("GET /api/memory/file", s.handleMemoryFile)
	mux.HandleFunc("GET /api/search", s.handleSearch)

	mux.HandleFunc("GET /session", s.handleSessionPage)
	mux.HandleFunc("GET /{$}", s.handleIndexPage)

	return s.logRequests(mux)
}

func (s *Server) ListenAndServe() error {
	s.log.Info("listening", "addr", s.cfg.HTTPAddr)
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}
