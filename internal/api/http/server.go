package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/repository/handoff"
)

// Server holds the collaborators of the HTTP handlers.
type Server struct {
	// registry owns the widget sessions.
	registry *flow.Registry
	// store keeps hand-off records for the detail view.
	store handoff.Repository
	// handoffKey is the base hand-off key, scoped per session.
	handoffKey string
	// metrics serves /metrics; nil disables the route.
	metrics http.Handler
	// reply produces the answer of the chat responder endpoint.
	reply func(message string) string
}

// Option configures the server.
type Option func(*Server)

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithResponder replaces the answer of POST /api/chat.
func WithResponder(reply func(message string) string) Option {
	return func(s *Server) {
		if reply != nil {
			s.reply = reply
		}
	}
}

// NewServer creates the handlers.
func NewServer(registry *flow.Registry, store handoff.Repository, handoffKey string, opts ...Option) *Server {
	s := &Server{
		registry:   registry,
		store:      store,
		handoffKey: handoffKey,
		reply:      cannedReply,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.startSession)
		r.Post("/sessions/{id}/messages", s.postMessage)
		r.Post("/sessions/{id}/panel", s.updatePanel)
		r.Get("/alarms/{id}", s.getAlarm)
		r.Post("/chat", s.chat)
	})

	return r
}

// requestIDHeader carries the request id in both directions.
const requestIDHeader = "X-Request-Id"

// requestID tags every request with an id and a scoped logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := logger.WithKV(r.Context(), "request_id", id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs one line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			started = time.Now()
			ww      = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		)

		next.ServeHTTP(ww, r)

		logger.DebugKV(r.Context(), "HTTP request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(started),
		)
	})
}

// sessionContext scopes the logger to a widget session.
func sessionContext(ctx context.Context, sessionID string) context.Context {
	return logger.WithKV(ctx, "session_id", sessionID)
}
