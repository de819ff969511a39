// Package server exposes the service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/KaramelBytes/datadeck/internal/logger"
	"github.com/KaramelBytes/datadeck/internal/metrics"
	"github.com/KaramelBytes/datadeck/internal/service"
)

// Config holds the HTTP settings.
type Config struct {
	Addr             string
	UploadsPerMinute int // <= 0 disables the limit
	CORSOrigins      []string
	Clock            clockwork.Clock
}

// Server is the datadeck HTTP server.
type Server struct {
	router  *chi.Mux
	svc     *service.Service
	cfg     Config
	limiter *rateLimiter
	logger  *slog.Logger
	srv     *http.Server
}

// New builds the router and the underlying http.Server.
func New(svc *service.Service, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	s := &Server{
		router:  chi.NewRouter(),
		svc:     svc,
		cfg:     cfg,
		limiter: newRateLimiter(cfg.UploadsPerMinute, cfg.Clock),
		logger:  log,
	}
	s.setupRoutes()
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(metrics.Middleware)
	if len(s.cfg.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", sessionHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.With(s.limiter.middleware(s)).Post("/upload", s.handleUpload)
		r.Post("/generate_chart", s.handleGenerateChart)
		r.Get("/preview", s.handlePreview)
		r.Get("/stats", s.handleStats)
		r.Delete("/dataset", s.handleClear)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, apperr.New(apperr.CodeInvalidRequest, "no route for %s %s", r.Method, r.URL.Path), http.StatusNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, apperr.New(apperr.CodeInvalidRequest, "method %s not allowed", r.Method), http.StatusMethodNotAllowed)
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

// writeJSON encodes before committing the status so an encode failure still
// reaches the client as a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(apperr.ToResponse(apperr.Wrap(apperr.CodeInternal, err, "encode response")))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeError renders err as {error, code}. status 0 derives it from the code.
func (s *Server) writeError(w http.ResponseWriter, err error, status int) {
	resp := apperr.ToResponse(err)
	if status == 0 {
		status = apperr.HTTPStatus(resp.Code)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, resp)
}

// requestLogger logs one line per request through slog.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
