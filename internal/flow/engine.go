package flow

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/lookup"
	"github.com/oshokin/alarm-chat/internal/transport"
)

// Responder answers free text the local menu does not understand.
type Responder interface {
	Send(ctx context.Context, message, sessionID string) (string, error)
}

// Observer is notified about engine activity, typically to export metrics.
type Observer interface {
	TurnHandled(step chat.Step, outcome Outcome)
	LookupFinished(result LookupResult, elapsed time.Duration)
	TransportFailed(kind transport.Kind)
}

// Outcome classifies how a turn was handled.
type Outcome string

// Turn outcomes.
const (
	OutcomeHandled Outcome = "handled"
	OutcomeInvalid Outcome = "invalid"
	OutcomeIgnored Outcome = "ignored"
	OutcomeRelayed Outcome = "relayed"
	OutcomeLookup  Outcome = "lookup"
)

// LookupResult classifies a finished alarm lookup.
type LookupResult string

// Lookup results.
const (
	LookupFound       LookupResult = "found"
	LookupNotFound    LookupResult = "not_found"
	LookupUnavailable LookupResult = "unavailable"
)

// DefaultLookupTimeout bounds lookups when no timeout is configured.
const DefaultLookupTimeout = 10 * time.Second

// callKind selects the collaborator a pending call goes to.
type callKind uint8

const (
	callLookup callKind = iota + 1
	callRelay
)

// call is a collaborator request the decision could not finish synchronously.
type call struct {
	kind    callKind
	alarmID string
	element string
	message string
	// resume is the step to return to after a relay.
	resume chat.Step
}

// Decision is the synchronous half of a turn.
type Decision struct {
	// Result holds the next state and the effects known before any await.
	Result chat.Result

	outcome Outcome
	call    *call
}

// Pending reports whether Complete must be called to finish the turn.
func (d Decision) Pending() bool {
	return d.call != nil
}

// Engine is the dialogue controller. It holds configuration only; all
// session data lives in the chat.State values passed through it.
type Engine struct {
	// lookup resolves alarms; always bounded by lookupTimeout.
	lookup lookup.Service
	// responder receives free text when remote relay is enabled.
	responder Responder
	// observer receives turn and collaborator statistics.
	observer Observer
	// typingDelay precedes every bot turn; zero disables typing effects.
	typingDelay time.Duration
	// lookupTimeout bounds one alarm lookup.
	lookupTimeout time.Duration
	// detailURL is the alarm detail page.
	detailURL string
	// now measures lookup durations.
	now func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithResponder enables relaying free text to a remote responder.
func WithResponder(r Responder) Option {
	return func(e *Engine) {
		e.responder = r
	}
}

// WithObserver registers an activity observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithTypingDelay sets the typing indicator duration before bot turns.
func WithTypingDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.typingDelay = d
		}
	}
}

// WithLookupTimeout bounds alarm lookups.
func WithLookupTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.lookupTimeout = d
		}
	}
}

// WithDetailURL sets the alarm detail page.
func WithDetailURL(u string) Option {
	return func(e *Engine) {
		if u != "" {
			e.detailURL = u
		}
	}
}

// WithClock overrides the clock used to time lookups.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine backed by the given lookup service.
func New(svc lookup.Service, opts ...Option) *Engine {
	e := &Engine{
		observer:      nopObserver{},
		lookupTimeout: DefaultLookupTimeout,
		detailURL:     "/alarm-details.html",
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if svc == nil {
		svc = lookup.Func(func(context.Context, string, string) (*alarm.Record, error) {
			return nil, lookup.ErrUnavailable
		})
	}

	e.lookup = lookup.WithTimeout(svc, e.lookupTimeout)

	return e
}

// Start returns the initial result of a new session. With resume set the
// session returns from the detail view and lands in the main menu.
func (e *Engine) Start(sessionID string, resume bool) chat.Result {
	state := chat.NewState(sessionID)
	if !resume {
		return chat.Result{State: state}
	}

	return chat.Result{
		State:   state.WithStep(chat.StepMainMenu),
		Effects: e.say(chat.BotMessage(welcomeBackText), chat.BotMessage(menuText)),
	}
}

// HandleInput runs a whole turn: it decides, awaits any collaborator call
// and returns the final state together with every effect in order.
func (e *Engine) HandleInput(ctx context.Context, state chat.State, input string) chat.Result {
	d := e.Decide(state, input)
	if !d.Pending() {
		return d.Result
	}

	result := e.Complete(ctx, d)
	result.Effects = append(append([]chat.Effect(nil), d.Result.Effects...), result.Effects...)

	return result
}

// Decide is the pure transition function. It never blocks and never calls
// a collaborator; a turn that needs one returns a pending Decision whose
// state is StepBusy.
func (e *Engine) Decide(state chat.State, input string) Decision {
	if !state.Step.Valid() {
		state = state.WithStep(chat.StepIdle)
	}

	input = normalize(input)

	h, ok := transitions[transitionKey{step: state.Step, class: classify(state.Step, input)}]
	if !ok {
		// Unreachable while the table is exhaustive; keep the session usable anyway.
		h = (*Engine).greet
	}

	d := h(e, state, input)
	if d.outcome == "" {
		d.outcome = OutcomeHandled
	}

	if !d.Pending() {
		e.observer.TurnHandled(state.Step, d.outcome)
	}

	return d
}

// Complete awaits the collaborator call of a pending decision and returns
// the resolved state with the effects produced after the await.
func (e *Engine) Complete(ctx context.Context, d Decision) chat.Result {
	if !d.Pending() {
		return d.Result
	}

	state := d.Result.State

	switch d.call.kind {
	case callRelay:
		e.observer.TurnHandled(d.call.resume, d.outcome)

		return e.resolveRelay(ctx, state, d.call)
	default:
		e.observer.TurnHandled(chat.StepAwaitingElement, d.outcome)

		return e.resolveLookup(ctx, state, d.call)
	}
}

// greet opens the conversation with the main menu.
func (e *Engine) greet(state chat.State, _ string) Decision {
	return e.reply(state.WithStep(chat.StepMainMenu),
		chat.BotMessage(greetingText),
		chat.BotMessage(menuText))
}

// askAlarmID starts the alarm sub-dialogue.
func (e *Engine) askAlarmID(state chat.State, _ string) Decision {
	return e.reply(state.WithStep(chat.StepAwaitingAlarmID), chat.BotMessage(askAlarmIDText))
}

// rejectChoice re-prompts for a valid menu option without changing state.
func (e *Engine) rejectChoice(state chat.State, _ string) Decision {
	d := e.reply(state, chat.BotMessage(invalidChoiceText))
	d.outcome = OutcomeInvalid

	return d
}

// relayOrReject sends free text to the responder when one is configured.
func (e *Engine) relayOrReject(state chat.State, input string) Decision {
	if e.responder == nil {
		return e.rejectChoice(state, input)
	}

	return Decision{
		Result:  chat.Result{State: state.WithStep(chat.StepBusy)},
		outcome: OutcomeRelayed,
		call: &call{
			kind:    callRelay,
			message: input,
			resume:  state.Step,
		},
	}
}

// captureAlarmID stores the alarm number as typed; any value is accepted.
func (e *Engine) captureAlarmID(state chat.State, input string) Decision {
	next := state.WithStep(chat.StepAwaitingElement)
	next.Slots.AlarmID = chat.StringPtr(input)

	return e.reply(next, chat.BotMessage(askElementText))
}

// captureElement stores the element and schedules the lookup.
func (e *Engine) captureElement(state chat.State, input string) Decision {
	next := state.WithStep(chat.StepBusy)
	next.Slots.Element = chat.StringPtr(input)

	var alarmID string
	if next.Slots.AlarmID != nil {
		alarmID = *next.Slots.AlarmID
	}

	return Decision{
		Result:  chat.Result{State: next},
		outcome: OutcomeLookup,
		call: &call{
			kind:    callLookup,
			alarmID: alarmID,
			element: input,
		},
	}
}

// ignore drops input received while a call is in flight.
func (e *Engine) ignore(state chat.State, _ string) Decision {
	return Decision{
		Result:  chat.Result{State: state, Ignored: true},
		outcome: OutcomeIgnored,
	}
}

// resolveLookup turns the lookup outcome into the closing turn of the sub-dialogue.
func (e *Engine) resolveLookup(ctx context.Context, state chat.State, c *call) chat.Result {
	ctx = logger.WithKV(ctx, "session_id", state.SessionID, "alarm_id", c.alarmID, "element", c.element)

	started := e.now()
	record, err := e.lookup.Lookup(ctx, c.alarmID, c.element)
	elapsed := e.now().Sub(started)

	if err != nil {
		result, text := LookupUnavailable, lookupUnavailableText
		if errors.Is(err, lookup.ErrNotFound) {
			result, text = LookupNotFound, alarmNotFoundText
		}

		e.observer.LookupFinished(result, elapsed)
		logger.WarnKV(ctx, "Alarm lookup failed", "result", result, "error", err)

		return chat.Result{
			State:   state.WithStep(chat.StepMainMenu),
			Effects: e.say(chat.BotMessage(text)),
		}
	}

	e.observer.LookupFinished(LookupFound, elapsed)
	logger.InfoKV(ctx, "Alarm found", "severity", record.Severity, "elapsed", elapsed)

	effects := e.say(chat.BotMessage(record.Summary()))
	effects = append(effects,
		chat.Persist(record),
		chat.NavigateTo(e.detailLink(state.SessionID)),
	)

	return chat.Result{
		State:   state.WithStep(chat.StepIdle),
		Effects: effects,
	}
}

// resolveRelay forwards free text and restores the step it came from.
func (e *Engine) resolveRelay(ctx context.Context, state chat.State, c *call) chat.Result {
	next := state.WithStep(c.resume)

	reply, err := e.responder.Send(ctx, c.message, state.SessionID)
	if err != nil {
		kind := transport.KindOf(err)
		if kind == 0 {
			kind = transport.KindNetworkUnavailable
		}

		e.observer.TransportFailed(kind)
		logger.WarnKV(ctx, "Chat relay failed", "session_id", state.SessionID, "kind", kind.String(), "error", err)

		return chat.Result{
			State:   next,
			Effects: e.say(chat.BotMessage(connectionErrorText)),
		}
	}

	return chat.Result{
		State:   next,
		Effects: e.say(chat.BotMessage(reply)),
	}
}

// reply builds a finished decision that says msgs and moves to state.
func (e *Engine) reply(state chat.State, msgs ...chat.Effect) Decision {
	return Decision{
		Result: chat.Result{
			State:   state,
			Effects: e.say(msgs...),
		},
	}
}

// say prefixes a bot turn with the typing indicator.
func (e *Engine) say(msgs ...chat.Effect) []chat.Effect {
	effects := make([]chat.Effect, 0, len(msgs)+1)
	if e.typingDelay > 0 {
		effects = append(effects, chat.Typing(e.typingDelay))
	}

	return append(effects, msgs...)
}

// detailLink points the detail view at the session's hand-off record.
func (e *Engine) detailLink(sessionID string) string {
	u, err := url.Parse(e.detailURL)
	if err != nil {
		return e.detailURL
	}

	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()

	return u.String()
}

// nopObserver discards all notifications.
type nopObserver struct{}

func (nopObserver) TurnHandled(chat.Step, Outcome) {}

func (nopObserver) LookupFinished(LookupResult, time.Duration) {}

func (nopObserver) TransportFailed(transport.Kind) {}
