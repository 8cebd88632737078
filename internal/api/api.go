// Package api implements the HTTP API server for vouch.
package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sprite-ai/vouch/internal/classify"
	"github.com/sprite-ai/vouch/internal/jobs"
	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/review"
	"github.com/sprite-ai/vouch/internal/storage"
)

// Options wires the server to its collaborators. Session is required;
// everything else is optional.
type Options struct {
	Session    *review.Session
	Entries    []model.FileEntry
	Saver      *storage.Saver
	Classifier classify.Classifier
	Grouper    classify.Grouper
	Log        zerolog.Logger
}

// Server is the vouch HTTP API server.
type Server struct {
	addr   string
	mux    *http.ServeMux
	server *http.Server
	log    zerolog.Logger

	session    *review.Session
	entries    []model.FileEntry
	saver      *storage.Saver
	runner     *jobs.Runner
	classifier classify.Classifier
	grouper    classify.Grouper
	hub        *hub
}

// New creates a new API server.
func New(addr string, opts Options) *Server {
	s := &Server{
		addr:       addr,
		log:        opts.Log,
		session:    opts.Session,
		entries:    opts.Entries,
		saver:      opts.Saver,
		runner:     jobs.NewRunner(),
		classifier: opts.Classifier,
		grouper:    opts.Grouper,
		hub:        newHub(opts.Log),
	}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.logged(s.mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/review", s.handleReview)
	s.mux.HandleFunc("GET /api/review/tree", s.handleTree)
	s.mux.HandleFunc("GET /api/review/staleness", s.handleStaleness)
	s.mux.HandleFunc("POST /api/review/approve", s.decisionHandler(s.session.Approve))
	s.mux.HandleFunc("POST /api/review/reject", s.decisionHandler(s.session.Reject))
	s.mux.HandleFunc("POST /api/review/save-for-later", s.decisionHandler(s.session.SaveForLater))
	s.mux.HandleFunc("POST /api/review/unapprove", s.decisionHandler(s.session.Unapprove))
	s.mux.HandleFunc("PUT /api/review/trust-list", s.handleTrustList)
	s.mux.HandleFunc("PUT /api/review/notes", s.handleNotes)
	s.mux.HandleFunc("POST /api/review/classify", s.handleClassify)
	s.mux.HandleFunc("POST /api/review/groups", s.handleGroups)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.addr).Msg("api server listening")
	return s.server.ListenAndServe()
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.logged(s.mux)
}

// changed runs after every mutation: schedule a persistence write and
// push the new version to websocket clients.
func (s *Server) changed() {
	if s.saver != nil {
		s.saver.Mark()
	}
	s.hub.broadcast(s.session.Version())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so the websocket
// upgrade works behind the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.log.Error().Err(err).Msg("json encode")
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
