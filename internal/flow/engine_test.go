package flow

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/lookup"
	"github.com/oshokin/alarm-chat/internal/transport"
)

// stubLookup answers every lookup with a record for the requested element.
func stubLookup() lookup.Service {
	return lookup.Func(func(_ context.Context, alarmID, element string) (*alarm.Record, error) {
		return &alarm.Record{
			ID:                 alarmID,
			Severity:           "Critical",
			Element:            element,
			Timestamp:          "2026-10-17 09:30:00",
			Description:        "Loss of signal",
			Meaning:            "No light on the port.",
			RecommendedActions: "Check the fibre.",
		}, nil
	})
}

// failingLookup fails every lookup with err.
func failingLookup(err error) lookup.Service {
	return lookup.Func(func(context.Context, string, string) (*alarm.Record, error) {
		return nil, err
	})
}

// fakeResponder is a Responder with a canned outcome.
type fakeResponder struct {
	reply string
	err   error
	calls []string
}

// Send records the message and returns the canned outcome.
func (f *fakeResponder) Send(_ context.Context, message, _ string) (string, error) {
	f.calls = append(f.calls, message)

	return f.reply, f.err
}

// stateAt returns a session state positioned at step.
func stateAt(step chat.Step) chat.State {
	return chat.NewState("s1").WithStep(step)
}

// botTexts returns the texts of every bot message effect.
func botTexts(effects []chat.Effect) []string {
	var texts []string

	for _, e := range effects {
		if e.Kind == chat.EffectEmitMessage && e.Sender == chat.SenderBot {
			texts = append(texts, e.Text)
		}
	}

	return texts
}

// TestTransitionTable_Exhaustive checks every (step, class) pair has a handler.
func TestTransitionTable_Exhaustive(t *testing.T) {
	t.Parallel()

	for _, step := range chat.Steps() {
		for _, class := range classesOf(step) {
			_, ok := transitions[transitionKey{step: step, class: class}]
			require.True(t, ok, "missing transition for step %s class %d", step, class)
		}
	}
}

// TestHandleInput_Total feeds every step a spread of inputs and expects a valid state back.
func TestHandleInput_Total(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())
	inputs := []string{"", "  ", "1", "2", "3", "4", "5", "6", "7", "0", "hello", " 1 ", "１"}

	for _, step := range chat.Steps() {
		for _, input := range inputs {
			result := e.HandleInput(context.Background(), stateAt(step), input)
			require.True(t, result.State.Step.Valid(), "step %s input %q", step, input)

			if step == chat.StepBusy {
				require.True(t, result.Ignored)

				continue
			}

			require.NotEqual(t, chat.StepBusy, result.State.Step, "turn must resolve")
		}
	}

	// A corrupted step recovers into the dialogue.
	result := e.HandleInput(context.Background(), chat.State{Step: chat.Step(200)}, "x")
	require.Equal(t, chat.StepMainMenu, result.State.Step)
}

// TestIdle_AnyInputGreets opens the main menu on the first input, even an empty one.
func TestIdle_AnyInputGreets(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())

	result := e.HandleInput(context.Background(), stateAt(chat.StepIdle), "")
	require.Equal(t, chat.StepMainMenu, result.State.Step)
	require.Equal(t, []string{greetingText, menuText}, botTexts(result.Effects))
}

// TestMainMenu_CannedOptions answers options 2-6 and stays in the menu.
func TestMainMenu_CannedOptions(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())

	cases := map[string]string{
		"2": docsText,
		"3": incidentsText,
		"4": statusText,
		"5": changesText,
		"6": contactText,
	}

	for input, want := range cases {
		result := e.HandleInput(context.Background(), stateAt(chat.StepMainMenu), " "+input+"\t")
		require.Equal(t, chat.StepMainMenu, result.State.Step, "option %s", input)
		require.Equal(t, []string{want}, botTexts(result.Effects), "option %s", input)
	}

	docs := e.HandleInput(context.Background(), stateAt(chat.StepMainMenu), "2")
	require.Equal(t, docsQuickReplies, docs.Effects[0].QuickReplies)
}

// TestMainMenu_InvalidIsIdempotent re-prompts identically and never moves.
func TestMainMenu_InvalidIsIdempotent(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())
	state := stateAt(chat.StepMainMenu)

	first := e.HandleInput(context.Background(), state, "9")
	second := e.HandleInput(context.Background(), first.State, "9")

	require.Equal(t, chat.StepMainMenu, first.State.Step)
	require.Equal(t, state, first.State)
	require.Equal(t, first, second)
	require.Equal(t, []string{invalidChoiceText}, botTexts(first.Effects))
}

// TestMainMenu_WhitespaceIsInvalid treats blank input as an invalid choice.
func TestMainMenu_WhitespaceIsInvalid(t *testing.T) {
	t.Parallel()

	// Even with a relay configured, blank input never leaves the engine.
	responder := new(fakeResponder)
	e := New(stubLookup(), WithResponder(responder))

	result := e.HandleInput(context.Background(), stateAt(chat.StepMainMenu), "  ")
	require.Equal(t, chat.StepMainMenu, result.State.Step)
	require.Equal(t, []string{invalidChoiceText}, botTexts(result.Effects))
	require.Empty(t, responder.calls)
}

// TestAlarmLookup_RoundTrip walks the whole alarm sub-dialogue.
func TestAlarmLookup_RoundTrip(t *testing.T) {
	t.Parallel()

	e := New(stubLookup(), WithDetailURL("https://support.example.com/alarm-details.html"))
	ctx := context.Background()

	r := e.HandleInput(ctx, chat.NewState("s1"), "")
	require.Equal(t, chat.StepMainMenu, r.State.Step)

	r = e.HandleInput(ctx, r.State, "1")
	require.Equal(t, chat.StepAwaitingAlarmID, r.State.Step)
	require.Equal(t, []string{askAlarmIDText}, botTexts(r.Effects))

	r = e.HandleInput(ctx, r.State, "42")
	require.Equal(t, chat.StepAwaitingElement, r.State.Step)
	require.NotNil(t, r.State.Slots.AlarmID)
	require.Equal(t, "42", *r.State.Slots.AlarmID)
	require.Nil(t, r.State.Slots.Element)
	require.Equal(t, []string{askElementText}, botTexts(r.Effects))

	r = e.HandleInput(ctx, r.State, "routerA")
	require.Equal(t, chat.StepIdle, r.State.Step)
	require.True(t, r.State.Slots.Empty())
	require.Equal(t, 1, r.Count(chat.EffectPersistAlarm))
	require.Equal(t, 1, r.Count(chat.EffectNavigate))

	// Confirmation, then persistence, then navigation.
	kinds := make([]chat.EffectKind, 0, len(r.Effects))
	for _, eff := range r.Effects {
		kinds = append(kinds, eff.Kind)
	}

	require.Equal(t, []chat.EffectKind{chat.EffectEmitMessage, chat.EffectPersistAlarm, chat.EffectNavigate}, kinds)
	require.Equal(t, "routerA", r.Effects[1].Record.Element)
	require.Equal(t, "42", r.Effects[1].Record.ID)
	require.Equal(t, "https://support.example.com/alarm-details.html?session=s1", r.Effects[2].URL)
	require.Contains(t, r.Effects[0].Text, "Critical")
	require.Contains(t, r.Effects[0].Text, "routerA")
}

// TestAwaitingAlarmID_AcceptsEmpty keeps the permissive capture of empty identifiers.
func TestAwaitingAlarmID_AcceptsEmpty(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())

	r := e.HandleInput(context.Background(), stateAt(chat.StepAwaitingAlarmID), "   ")
	require.Equal(t, chat.StepAwaitingElement, r.State.Step)
	require.NotNil(t, r.State.Slots.AlarmID)
	require.Empty(t, *r.State.Slots.AlarmID)
}

// TestAlarmLookup_Failures resets to the main menu with a single apology.
func TestAlarmLookup_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "unavailable", err: lookup.ErrUnavailable, want: lookupUnavailableText},
		{name: "not found", err: lookup.ErrNotFound, want: alarmNotFoundText},
		{name: "arbitrary error", err: errors.New("boom"), want: lookupUnavailableText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := New(failingLookup(tc.err))

			state := stateAt(chat.StepAwaitingElement)
			state.Slots.AlarmID = chat.StringPtr("42")

			r := e.HandleInput(context.Background(), state, "routerA")
			require.Equal(t, chat.StepMainMenu, r.State.Step)
			require.True(t, r.State.Slots.Empty())
			require.Equal(t, []string{tc.want}, botTexts(r.Effects))
			require.Equal(t, 1, r.Count(chat.EffectEmitMessage))
			require.Zero(t, r.Count(chat.EffectNavigate))
			require.Zero(t, r.Count(chat.EffectPersistAlarm))
		})
	}
}

// TestAlarmLookup_TimeoutIsUnavailable bounds a hanging lookup.
func TestAlarmLookup_TimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		hanging := lookup.Func(func(ctx context.Context, _, _ string) (*alarm.Record, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		})

		e := New(hanging, WithLookupTimeout(3*time.Second))

		state := stateAt(chat.StepAwaitingElement)
		state.Slots.AlarmID = chat.StringPtr("42")

		start := time.Now()
		r := e.HandleInput(context.Background(), state, "routerA")

		require.Equal(t, 3*time.Second, time.Since(start))
		require.Equal(t, chat.StepMainMenu, r.State.Step)
		require.Equal(t, []string{lookupUnavailableText}, botTexts(r.Effects))
	})
}

// TestBusy_IgnoresInput proves input during a call changes nothing.
func TestBusy_IgnoresInput(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())
	state := stateAt(chat.StepBusy)
	state.Slots.AlarmID = chat.StringPtr("42")

	r := e.HandleInput(context.Background(), state, "1")
	require.True(t, r.Ignored)
	require.Empty(t, r.Effects)
	require.Equal(t, state, r.State)
}

// TestDecide_PendingLookup exposes the busy state before the await.
func TestDecide_PendingLookup(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())
	state := stateAt(chat.StepAwaitingElement)
	state.Slots.AlarmID = chat.StringPtr("42")

	d := e.Decide(state, "routerA")
	require.True(t, d.Pending())
	require.Equal(t, chat.StepBusy, d.Result.State.Step)
	require.Equal(t, "routerA", *d.Result.State.Slots.Element)
	require.Empty(t, d.Result.Effects)

	r := e.Complete(context.Background(), d)
	require.Equal(t, chat.StepIdle, r.State.Step)

	// Completing a finished decision is a no-op.
	done := e.Decide(stateAt(chat.StepMainMenu), "3")
	require.Equal(t, done.Result, e.Complete(context.Background(), done))
}

// TestRelay_Success forwards free text and keeps the menu step.
func TestRelay_Success(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "An operator will contact you."}
	e := New(stubLookup(), WithResponder(responder))

	r := e.HandleInput(context.Background(), stateAt(chat.StepMainMenu), "  is DC2 down?  ")
	require.Equal(t, chat.StepMainMenu, r.State.Step)
	require.Equal(t, []string{"An operator will contact you."}, botTexts(r.Effects))
	require.Equal(t, []string{"is DC2 down?"}, responder.calls)
}

// TestRelay_FailureKeepsStep shows one retry prompt and leaves the step alone.
func TestRelay_FailureKeepsStep(t *testing.T) {
	t.Parallel()

	errs := []error{
		&transport.Error{Kind: transport.KindNetworkUnavailable},
		&transport.Error{Kind: transport.KindServerError, StatusCode: 500},
		&transport.Error{Kind: transport.KindMalformedResponse},
	}

	for _, err := range errs {
		e := New(stubLookup(), WithResponder(&fakeResponder{err: err}))

		r := e.HandleInput(context.Background(), stateAt(chat.StepMainMenu), "hello")
		require.Equal(t, chat.StepMainMenu, r.State.Step)
		require.Equal(t, []string{connectionErrorText}, botTexts(r.Effects))
	}
}

// TestStart_Resume lands a returning user in the main menu.
func TestStart_Resume(t *testing.T) {
	t.Parallel()

	e := New(stubLookup())

	fresh := e.Start("s1", false)
	require.Equal(t, chat.StepIdle, fresh.State.Step)
	require.Equal(t, "s1", fresh.State.SessionID)
	require.Empty(t, fresh.Effects)

	back := e.Start("s1", true)
	require.Equal(t, chat.StepMainMenu, back.State.Step)
	require.Equal(t, []string{welcomeBackText, menuText}, botTexts(back.Effects))
}

// TestTypingDelay_PrefixesBotTurns emits one typing effect ahead of each bot turn.
func TestTypingDelay_PrefixesBotTurns(t *testing.T) {
	t.Parallel()

	e := New(stubLookup(), WithTypingDelay(time.Second))

	r := e.HandleInput(context.Background(), stateAt(chat.StepIdle), "hi")
	require.Len(t, r.Effects, 3)
	require.Equal(t, chat.EffectScheduleTyping, r.Effects[0].Kind)
	require.Equal(t, time.Second, r.Effects[0].Duration)

	ignored := e.HandleInput(context.Background(), stateAt(chat.StepBusy), "hi")
	require.Empty(t, ignored.Effects)
}

// TestNew_NilLookupIsUnavailable keeps an unwired engine usable.
func TestNew_NilLookupIsUnavailable(t *testing.T) {
	t.Parallel()

	e := New(nil)
	state := stateAt(chat.StepAwaitingElement)
	state.Slots.AlarmID = chat.StringPtr("42")

	r := e.HandleInput(context.Background(), state, "routerA")
	require.Equal(t, chat.StepMainMenu, r.State.Step)
	require.Equal(t, []string{lookupUnavailableText}, botTexts(r.Effects))
}
