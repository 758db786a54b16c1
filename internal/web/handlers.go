package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agentview/internal/logview"
	"agentview/internal/search"
)

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	max := intQuery(r, "limit", s.cfg.MaxSessions)
	writeJSON(w, http.StatusOK, logview.Sessions(s.cfg.LogsDir, max))
}

type sessionResponse struct {
	Summary    logview.Summary `json:"summary"`
	Transcript []logview.Entry `json:"transcript"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	summary, ok := logview.Session(s.cfg.LogsDir, ref)
	if !ok {
		http.NotFound(w, r)
		return
	}
	entries, _ := logview.Transcript(s.cfg.LogsDir, ref)
	writeJSON(w, http.StatusOK, sessionResponse{Summary: summary, Transcript: entries})
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	max := intQuery(r, "limit", s.cfg.MaxCommands)
	writeJSON(w, http.StatusOK, logview.Commands(s.cfg.LogsDir, s.cfg.MaxCommandFiles, max))
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mem.Snapshot(s.cfg.MaxChanges))
}

func (s *Server) handleMemoryFile(w http.ResponseWriter, r *http.Request) {
	content, ok := s.mem.ReadFile(r.URL.Query().Get("path"))
	if !ok {
		// One signal for every rejection; the reason stays on this side.
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(content))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.idx == nil {
		http.Error(w, "search index disabled", http.StatusServiceUnavailable)
		return
	}
	hits, err := s.idx.Search(r.URL.Query().Get("q"), intQuery(r, "limit", 50))
	if err != nil {
		s.log.Error("search failed", "err", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	writeJSON(w, http.StatusOK, hits)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > fallback {
		return fallback
	}
	return n
}
