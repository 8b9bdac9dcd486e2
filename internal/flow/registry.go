package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/logger"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists is returned when a fresh start reuses a live session id.
	ErrSessionExists = errors.New("session already exists")
)

// Registry keeps the widget sessions served by one process. Sessions share
// no mutable data; the registry only maps ids to them.
type Registry struct {
	// engine creates new sessions.
	engine *Engine
	// ttl evicts sessions idle for longer; zero disables eviction.
	ttl time.Duration
	// mu protects sessions.
	mu sync.Mutex
	// sessions maps session ids to live sessions.
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(engine *Engine, ttl time.Duration) *Registry {
	return &Registry{
		engine:   engine,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Start creates a session. An empty id gets a random one. A live id is
// only replaced when resuming; a fresh start with it fails with
// ErrSessionExists.
func (r *Registry) Start(sessionID string, resume bool) (*Session, chat.Result, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, live := r.sessions[sessionID]; live && !resume {
		return nil, chat.Result{}, ErrSessionExists
	}

	session, result := r.engine.NewSession(sessionID, resume)
	r.sessions[sessionID] = session

	return session, result, nil
}

// Get returns the live session with the given id.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Evict drops sessions idle for longer than the ttl. Busy sessions are kept
// until their call resolves. It returns the number of evicted sessions.
func (r *Registry) Evict() int {
	if r.ttl <= 0 {
		return 0
	}

	cutoff := r.engine.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0

	for id, session := range r.sessions {
		if session.Busy() || session.Touched().After(cutoff) {
			continue
		}

		delete(r.sessions, id)

		evicted++
	}

	return evicted
}

// Run evicts idle sessions every interval until ctx is canceled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				logger.DebugKV(ctx, "Evicted idle sessions", "count", n, "live", r.Len())
			}
		}
	}
}
