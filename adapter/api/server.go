// Package api exposes taskbrief over HTTP with JSON bodies and bearer tokens.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendarApp "github.com/felixgeelhaar/taskbrief/internal/calendar/application"
	"github.com/felixgeelhaar/taskbrief/internal/identity/application/auth"
	identityDomain "github.com/felixgeelhaar/taskbrief/internal/identity/domain"
	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	summaryApp "github.com/felixgeelhaar/taskbrief/internal/summary/application"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/commands"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/application/queries"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger
	deps   Dependencies
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration. The write
// timeout leaves room for a slow summarizer call.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "127.0.0.1:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Dependencies are the application services behind the routes.
// ExportDeadlines, Health and Metrics are optional.
type Dependencies struct {
	Auth            *auth.Service
	CreateTask      *commands.CreateTaskHandler
	DeleteTask      *commands.DeleteTaskHandler
	ListTasks       *queries.ListTasksHandler
	Summarize       *summaryApp.SummarizeHandler
	ExportDeadlines *calendarApp.ExportDeadlinesHandler
	Health          *observability.HealthRegistry
	Metrics         *observability.InMemoryMetrics
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		deps:   deps,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)

	// Accounts
	s.mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignUp)
	s.mux.HandleFunc("POST /api/v1/auth/signin", s.handleSignIn)
	s.mux.HandleFunc("POST /api/v1/auth/signout", s.handleSignOut)
	s.mux.HandleFunc("POST /api/v1/auth/reset-request", s.handleResetRequest)
	s.mux.HandleFunc("POST /api/v1/auth/reset", s.handleReset)

	// Tasks
	s.mux.HandleFunc("GET /api/v1/tasks", s.authenticated(s.handleListTasks))
	s.mux.HandleFunc("POST /api/v1/tasks", s.authenticated(s.handleCreateTask))
	s.mux.HandleFunc("DELETE /api/v1/tasks/{taskID}", s.authenticated(s.handleDeleteTask))

	s.mux.HandleFunc("POST /api/v1/summary", s.authenticated(s.handleSummary))
	s.mux.HandleFunc("POST /api/v1/calendar/export", s.authenticated(s.handleCalendarExport))
}

// Handler returns the routes wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestContext(s.mux)
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestContext tags every request with request and correlation IDs and
// logs its outcome.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get("X-Correlation-ID"))
		w.Header().Set("X-Request-ID", observability.RequestIDFromContext(ctx))
		w.Header().Set("X-Correlation-ID", observability.CorrelationIDFromContext(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			observability.DurationKey, time.Since(start).Milliseconds(),
		)
	})
}

type ownerHandler func(w http.ResponseWriter, r *http.Request, owner shared.OwnerID)

// authenticated resolves the bearer token to an owner before calling next.
func (s *Server) authenticated(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || s.deps.Auth == nil {
			s.writeError(w, r, shared.ErrUnauthenticated)
			return
		}
		owner, ok := s.deps.Auth.CurrentUserID(r.Context(), token)
		if !ok {
			s.writeError(w, r, shared.ErrUnauthenticated)
			return
		}
		ctx := observability.WithOwnerID(r.Context(), owner.String())
		next(w, r.WithContext(ctx), owner)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type errorBody struct {
	Error *APIError `json:"error"`
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)

// toAPIError maps an application error onto a status and a stable code.
// Internal details of upstream failures are logged, not returned.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	var validation *shared.ValidationError
	var upstream *shared.UpstreamError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, identityDomain.ErrInvalidSession):
		return &APIError{Status: http.StatusUnauthorized, Code: "unauthenticated", Message: "sign in required"}
	case errors.Is(err, identityDomain.ErrInvalidCredentials):
		return &APIError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: err.Error()}
	case errors.As(err, &validation):
		return &APIError{Status: http.StatusBadRequest, Code: "validation_failed", Message: validation.Error()}
	case errors.Is(err, identityDomain.ErrInvalidEmail),
		errors.Is(err, identityDomain.ErrWeakPassword),
		errors.Is(err, identityDomain.ErrPasswordMismatch),
		errors.Is(err, identityDomain.ErrInvalidResetToken):
		return &APIError{Status: http.StatusBadRequest, Code: "validation_failed", Message: err.Error()}
	case errors.Is(err, identityDomain.ErrEmailTaken):
		return &APIError{Status: http.StatusConflict, Code: "email_taken", Message: err.Error()}
	case errors.Is(err, task.ErrTaskNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "task not found"}
	case errors.As(err, &upstream):
		return &APIError{Status: http.StatusBadGateway, Code: "upstream_unavailable", Message: upstream.Source + " unavailable"}
	default:
		return ErrInternalServer
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, apiErr.Status, errorBody{Error: apiErr})
}
