package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/lookup"
)

// gatedLookup blocks every lookup until release is closed.
type gatedLookup struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedLookup() *gatedLookup {
	return &gatedLookup{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

// Lookup signals start and waits for the gate.
func (g *gatedLookup) Lookup(ctx context.Context, alarmID, element string) (*alarm.Record, error) {
	g.once.Do(func() { close(g.started) })

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
	}

	return &alarm.Record{ID: alarmID, Element: element, Severity: "Minor"}, nil
}

// TestSession_IgnoresInputWhileBusy blocks re-entrancy during a lookup.
func TestSession_IgnoresInputWhileBusy(t *testing.T) {
	t.Parallel()

	gate := newGatedLookup()
	e := New(gate, WithLookupTimeout(time.Minute))

	session, _ := e.NewSession("s1", false)
	ctx := context.Background()

	session.Submit(ctx, "")
	session.Submit(ctx, "1")
	session.Submit(ctx, "42")

	done := make(chan chat.Result)

	go func() {
		done <- session.Submit(ctx, "routerA")
	}()

	<-gate.started
	require.True(t, session.Busy())

	before := session.State()
	ignored := session.Submit(ctx, "3")
	require.True(t, ignored.Ignored)
	require.Empty(t, ignored.Effects)
	require.Equal(t, before, session.State())

	close(gate.release)

	final := <-done
	require.False(t, final.Ignored)
	require.Equal(t, chat.StepIdle, final.State.Step)
	require.Equal(t, 1, final.Count(chat.EffectPersistAlarm))
	require.Equal(t, chat.StepIdle, session.State().Step)
}

// TestSession_PanelSurvivesAwait keeps sink changes made during a lookup.
func TestSession_PanelSurvivesAwait(t *testing.T) {
	t.Parallel()

	gate := newGatedLookup()
	e := New(gate, WithLookupTimeout(time.Minute))

	session, _ := e.NewSession("s1", false)
	ctx := context.Background()

	session.Submit(ctx, "")
	session.Submit(ctx, "1")
	session.Submit(ctx, "42")

	done := make(chan chat.Result)

	go func() {
		done <- session.Submit(ctx, "routerA")
	}()

	<-gate.started
	session.UpdatePanel(func(p *chat.Panel) {
		p.IsOpen = true
		p.UnreadCount = 0
	})

	close(gate.release)
	<-done

	require.True(t, session.State().Panel.IsOpen)
}

// TestSession_Isolation shows two sessions of one engine do not share state.
func TestSession_Isolation(t *testing.T) {
	t.Parallel()

	e := New(lookup.NewCatalog())

	a, _ := e.NewSession("a", false)
	b, _ := e.NewSession("b", false)

	a.Submit(context.Background(), "")
	a.Submit(context.Background(), "1")

	require.Equal(t, chat.StepAwaitingAlarmID, a.State().Step)
	require.Equal(t, chat.StepIdle, b.State().Step)
	require.Equal(t, "a", a.ID())
	require.Equal(t, "b", b.ID())
}
