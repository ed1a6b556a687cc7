// Package httpapi sketches the read-only report/health HTTP surface: route
// registration and middleware only, per spec.md's Non-goals excluding a
// full production server (auth, TLS termination, graceful drain beyond a
// bare Shutdown).
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/evesaga/evesaga/internal/report"
	"github.com/evesaga/evesaga/internal/snapshot"
)

// Config configures the Server's listen address and timeouts.
type Config struct {
	Addr         string        `yaml:"addr" env:"SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig mirrors the teacher's DefaultServerConfig timeouts.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server is the read-only report/health HTTP surface.
type Server struct {
	router *mux.Router
	server *http.Server
	gen    *report.Generator
	cache  *snapshot.ReportCache
}

// New builds a Server that projects gen.Generate() on each /report
// request, optionally serving a cached projection from cache first.
func New(cfg Config, gen *report.Generator, cache *snapshot.ReportCache) *Server {
	s := &Server{router: mux.NewRouter(), gen: gen, cache: cache}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware)
	s.router.Use(jsonContentTypeMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/report", s.handleReport).Methods("GET")
	s.router.NotFoundHandler = http.HandlerFunc(handleNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

const reportCacheKey = "global"

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(reportCacheKey); ok {
			_ = json.NewEncoder(w).Encode(cached)
			return
		}
	}

	rep := s.gen.Generate()
	if s.cache != nil {
		if err := s.cache.Set(reportCacheKey, rep); err != nil {
			log.Warn().Err(err).Msg("failed to cache generated report")
		}
	}
	_ = json.NewEncoder(w).Encode(rep)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		log.Info().
			Str("request_id", fmt.Sprint(r.Context().Value(requestIDKey{}))).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}

// Start blocks serving HTTP until the listener errors or Shutdown is
// called, at which point it returns http.ErrServerClosed.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting report http server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the underlying router for tests (e.g.
// httptest.NewServer(s.Router())).
func (s *Server) Router() *mux.Router {
	return s.router
}
