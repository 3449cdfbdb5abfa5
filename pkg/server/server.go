// Package server exposes a pipeline result over a read-only JSON API for a
// checkbox-tree UI.
//
// Routes:
//
//	GET /healthz                     liveness and snapshot summary
//	GET /api/tree[?counts=true]      checkbox-tree nodes
//	GET /api/outline                 Markdown outline of the hierarchy
//	GET /api/subjects[?selected=…]   subject frequency rows, filtered by selection
//	GET /api/repositories[?selected=…]
//	GET /api/repositories/{id}
//	GET /metrics                     Prometheus metrics, when configured
//
// The selection is a comma-separated list of tree values. An empty selection
// returns every row.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rerrors "github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/pipeline"
	"github.com/matzehuels/re3facet/pkg/registry"
	"github.com/matzehuels/re3facet/pkg/subject"
)

const requestTimeout = 30 * time.Second

// Server serves one pipeline result. The result is never modified.
type Server struct {
	result  *pipeline.Result
	logger  *log.Logger
	metrics http.Handler
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger (default log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a Server for result.
func New(result *pipeline.Result, opts ...Option) *Server {
	s := &Server{result: result, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/outline", s.handleOutline)
		r.Get("/subjects", s.handleSubjects)
		r.Get("/repositories", s.handleRepositories)
		r.Get("/repositories/{id}", s.handleRepository)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr, "records", s.result.Table.Len())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type healthResponse struct {
	Status   string `json:"status"`
	RunID    string `json:"run_id"`
	Records  int    `json:"records"`
	Subjects int    `json:"subjects"`
	CacheHit bool   `json:"cache_hit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		RunID:    s.result.RunID.String(),
		Records:  s.result.Table.Len(),
		Subjects: len(s.result.Subjects),
		CacheHit: s.result.CacheHit,
	})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	counts, _ := strconv.ParseBool(r.URL.Query().Get("counts"))
	writeJSON(w, http.StatusOK, pipeline.Tree(s.result.Hierarchy, counts))
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(hierarchy.ToMarkdown(s.result.Hierarchy, 0)))
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	sel, err := selection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rows := s.result.Subjects
	if len(sel) > 0 {
		rows = subject.FilterBySelection(rows, sel)
	}
	if rows == nil {
		rows = []subject.Frequency{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	sel, err := selection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	table := s.result.Table
	if len(sel) > 0 {
		table = subject.FilterRecords(table, sel)
	}
	records := table.Records
	if records == nil {
		records = []registry.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRepository(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.result.Table.ByID(id)
	if !ok {
		writeError(w, rerrors.New(rerrors.ErrCodeNotFound, "repository %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func selection(r *http.Request) (subject.Selection, error) {
	return subject.ParseSelection(r.URL.Query().Get("selected"))
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := rerrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case rerrors.ErrCodeInvalidInput, rerrors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case rerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case "":
		code = rerrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: string(code), Message: rerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
