package flow

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
)

// Session owns the conversation state of one widget session and feeds it
// through the engine one input at a time.
type Session struct {
	// engine decides the transitions.
	engine *Engine
	// mu protects state and touched; it is never held across a collaborator call.
	mu sync.Mutex
	// state is the current conversation state.
	state chat.State
	// touched is the time of the last interaction.
	touched time.Time
}

// NewSession starts a session and returns it with its opening result.
func (e *Engine) NewSession(sessionID string, resume bool) (*Session, chat.Result) {
	result := e.Start(sessionID, resume)

	return &Session{
		engine:  e,
		state:   result.State,
		touched: e.now(),
	}, result
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.SessionID
}

// State returns a copy of the current state.
func (s *Session) State() chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Touched returns the time of the last interaction.
func (s *Session) Touched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.touched
}

// Busy reports whether a collaborator call is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Step == chat.StepBusy
}

// Submit handles one user input. Input arriving while the session is busy
// is ignored: the result is flagged Ignored, carries no effects and the
// state is left untouched.
func (s *Session) Submit(ctx context.Context, input string) chat.Result {
	s.mu.Lock()
	s.touched = s.engine.now()

	d := s.engine.Decide(s.state, input)
	if d.Result.Ignored {
		s.mu.Unlock()

		return d.Result
	}

	s.state = d.Result.State
	s.mu.Unlock()

	if !d.Pending() {
		return d.Result
	}

	result := s.engine.Complete(ctx, d)

	s.mu.Lock()
	// The sink may have opened or closed the panel during the await.
	result.State.Panel = s.state.Panel
	s.state = result.State
	s.touched = s.engine.now()
	s.mu.Unlock()

	result.Effects = append(append([]chat.Effect(nil), d.Result.Effects...), result.Effects...)

	return result
}

// UpdatePanel applies fn to the sink-owned panel flags and returns them.
func (s *Session) UpdatePanel(fn func(*chat.Panel)) chat.Panel {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state.Panel)

	return s.state.Panel
}
