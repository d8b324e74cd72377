// Package http serves the pipeline over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aretw0/turtleshot"
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxSourceBytes bounds the body of a run request.
const MaxSourceBytes = 1 << 20

// Pipeline executes runs. *turtleshot.Pipeline satisfies it.
type Pipeline interface {
	Execute(ctx context.Context, req turtleshot.Request) (*turtleshot.Result, error)
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Source    string `json:"source"`
	Tag       string `json:"tag,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Margin    *int   `json:"margin,omitempty"`
	MaxCycles int    `json:"max_cycles,omitempty"`
	MaxStack  int    `json:"max_stack,omitempty"`
}

// Server holds the collaborators of the HTTP handlers.
type Server struct {
	pipeline Pipeline
	ledger   ports.RunLedger
	metrics  http.Handler
	logger   *slog.Logger
	margin   int
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLedger enables the /runs endpoints.
func WithLedger(ledger ports.RunLedger) Option {
	return func(s *Server) { s.ledger = ledger }
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithDefaultMargin sets the crop margin used when a request omits one.
func WithDefaultMargin(margin int) Option {
	return func(s *Server) { s.margin = margin }
}

// NewHandler creates the HTTP handler for pipeline.
func NewHandler(pipeline Pipeline, opts ...Option) http.Handler {
	s := &Server{
		pipeline: pipeline,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		margin:   5,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Post("/run", s.Run)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.ListRuns)
		r.Get("/{id}", s.GetRun)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": turtleshot.Version,
	})
}

// Run handles POST /run. The program runs in combined mode inside a scratch
// directory and the bundle is returned as the body.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxSourceBytes)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Source == "" {
		http.Error(w, "source is required", http.StatusBadRequest)
		return
	}

	dir, err := os.MkdirTemp("", "turtleshot-")
	if err != nil {
		s.logger.Error("scratch dir", "err", err)
		http.Error(w, "no scratch space", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)

	margin := s.margin
	if body.Margin != nil {
		margin = *body.Margin
	}

	res, runErr := s.pipeline.Execute(r.Context(), turtleshot.Request{
		Source:       body.Source,
		OutputPrefix: filepath.Join(dir, "run"),
		Combined:     true,
		Tag:          body.Tag,
		Width:        body.Width,
		Height:       body.Height,
		Margin:       margin,
		MaxCycles:    body.MaxCycles,
		MaxStack:     body.MaxStack,
	})
	if res == nil || res.Status == domain.ExitFatal {
		s.logger.Error("run could not be persisted", "err", runErr)
		http.Error(w, "run could not be persisted", http.StatusInternalServerError)
		return
	}

	bundle, err := os.ReadFile(res.Outputs.Combined)
	if err != nil {
		s.logger.Error("reading bundle", "run_id", res.ID, "err", err)
		http.Error(w, "bundle missing", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if res.Outcome == domain.OutcomeFailed {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", res.ID)
	w.WriteHeader(status)
	if _, err := w.Write(bundle); err != nil {
		s.logger.Warn("writing bundle", "run_id", res.ID, "err", err)
	}
}

// ListRuns handles GET /runs?tag=.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "no ledger configured", http.StatusNotFound)
		return
	}
	ids, err := s.ledger.List(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		s.logger.Error("listing runs", "err", err)
		http.Error(w, "ledger unavailable", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

// GetRun handles GET /runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "no ledger configured", http.StatusNotFound)
		return
	}
	rec, err := s.ledger.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("loading run", "err", err)
		http.Error(w, "ledger unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", "err", err)
	}
}
