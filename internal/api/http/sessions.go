package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/repository/handoff"
	"github.com/oshokin/alarm-chat/internal/sink"
)

type startRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Resume    bool   `json:"resume,omitempty"`
	Return    string `json:"return,omitempty"`
}

// returnChat is the return flag the alarm detail view links back with.
const returnChat = "chat"

// resuming reports whether the start comes back from the detail view, either
// through ?return=chat or the request body.
func (req startRequest) resuming(r *http.Request) bool {
	return req.Resume || req.Return == returnChat || r.URL.Query().Get("return") == returnChat
}

type messageRequest struct {
	Text string `json:"text"`
}

type panelRequest struct {
	Action string `json:"action"`
}

type turnResponse struct {
	SessionID string        `json:"session_id"`
	State     chat.State    `json:"state"`
	Effects   []chat.Effect `json:"effects"`
	Ignored   bool          `json:"ignored"`
}

// Panel actions accepted by POST /api/sessions/{id}/panel.
const (
	panelOpen     = "open"
	panelClose    = "close"
	panelMinimize = "minimize"
)

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	resume := req.resuming(r)

	session, result, err := s.registry.Start(strings.TrimSpace(req.SessionID), resume)
	if err != nil {
		if errors.Is(err, flow.ErrSessionExists) {
			writeError(w, http.StatusConflict, err.Error())

			return
		}

		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	ctx := sessionContext(r.Context(), session.ID())

	logger.InfoKV(ctx, "Widget session started", "resume", resume)

	writeJSON(w, http.StatusCreated, s.deliver(ctx, session, result))
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	ctx := sessionContext(r.Context(), session.ID())
	result := session.Submit(ctx, req.Text)

	if result.Ignored {
		logger.DebugKV(ctx, "Input ignored while a request is in flight")
	}

	writeJSON(w, http.StatusOK, s.deliver(ctx, session, result))
}

func (s *Server) updatePanel(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req panelRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	var action func(*chat.Panel)

	switch req.Action {
	case panelOpen:
		action = (*chat.Panel).Open
	case panelClose:
		action = (*chat.Panel).Close
	case panelMinimize:
		action = (*chat.Panel).Minimize
	default:
		writeError(w, http.StatusBadRequest, "action must be one of open, close, minimize")

		return
	}

	writeJSON(w, http.StatusOK, session.UpdatePanel(action))
}

func (s *Server) getAlarm(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	record, err := s.store.Load(r.Context(), handoff.Key(s.handoffKey, sessionID))
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no alarm details for this session")

			return
		}

		logger.ErrorKV(sessionContext(r.Context(), sessionID), "Failed to load hand-off record", "error", err)
		writeError(w, http.StatusInternalServerError, "unable to load alarm details")

		return
	}

	writeJSON(w, http.StatusOK, record)
}

// session resolves the {id} path parameter, answering 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*flow.Session, bool) {
	session, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())

		return nil, false
	}

	return session, true
}

// deliver runs the turn's effects through the session sink and builds the
// response with the resulting panel flags.
func (s *Server) deliver(ctx context.Context, session *flow.Session, result chat.Result) turnResponse {
	dispatcher := sink.NewDispatcher(
		&sessionSink{session: session},
		sink.WithoutDelays(),
		sink.WithStore(s.store, handoff.Key(s.handoffKey, session.ID())),
	)

	// Dispatch without delays only fails on a cancelled context, and the
	// effects still go back to the browser.
	_ = dispatcher.Dispatch(ctx, result.Effects)

	state := result.State
	state.Panel = session.UpdatePanel(func(*chat.Panel) {})

	effects := result.Effects
	if effects == nil {
		effects = []chat.Effect{}
	}

	return turnResponse{
		SessionID: session.ID(),
		State:     state,
		Effects:   effects,
		Ignored:   result.Ignored,
	}
}

// sessionSink counts unread bot messages on the session's panel. Rendering
// happens in the browser.
type sessionSink struct {
	session *flow.Session
}

func (s *sessionSink) Append(_ context.Context, msg sink.Message) error {
	s.session.UpdatePanel(func(p *chat.Panel) {
		p.Deliver(msg.Sender)
	})

	return nil
}

func (*sessionSink) SetTyping(context.Context, bool) error {
	return nil
}
