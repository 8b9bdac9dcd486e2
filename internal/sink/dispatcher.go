package sink

import (
	"context"
	"time"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/logger"
)

// Store persists the found alarm for the detail view.
type Store interface {
	Save(ctx context.Context, key string, record *alarm.Record) error
}

// Navigator opens another page.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Dispatcher performs effects in the order the engine returned them.
type Dispatcher struct {
	// sink receives messages and typing changes.
	sink Sink
	// store receives persist effects; nil skips them.
	store Store
	// storeKey is the key the record is stored under.
	storeKey string
	// navigator receives navigate effects; nil skips them.
	navigator Navigator
	// wait sleeps for typing delays; nil skips the delay.
	wait func(ctx context.Context, d time.Duration) error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithStore routes persist effects to store under key.
func WithStore(store Store, key string) DispatcherOption {
	return func(d *Dispatcher) {
		d.store = store
		d.storeKey = key
	}
}

// WithNavigator routes navigate effects to nav.
func WithNavigator(nav Navigator) DispatcherOption {
	return func(d *Dispatcher) {
		d.navigator = nav
	}
}

// WithoutDelays toggles the typing indicator without waiting, for hosts
// whose client plays the delay itself.
func WithoutDelays() DispatcherOption {
	return func(d *Dispatcher) {
		d.wait = nil
	}
}

// NewDispatcher creates a dispatcher that renders through sink and waits
// out typing delays.
func NewDispatcher(sink Sink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sink: sink,
		wait: sleep,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dispatch performs effects in order. Collaborator failures are logged and
// skipped; only cancellation of ctx during a typing delay stops dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []chat.Effect) error {
	for _, effect := range effects {
		switch effect.Kind {
		case chat.EffectEmitMessage:
			msg := Message{
				Text:         effect.Text,
				Sender:       effect.Sender,
				QuickReplies: effect.QuickReplies,
			}

			if err := d.sink.Append(ctx, msg); err != nil {
				logger.ErrorKV(ctx, "Failed to append message", "error", err)
			}
		case chat.EffectScheduleTyping:
			if err := d.typing(ctx, effect.Duration); err != nil {
				return err
			}
		case chat.EffectPersistAlarm:
			d.persist(ctx, effect.Record)
		case chat.EffectNavigate:
			if d.navigator == nil {
				continue
			}

			if err := d.navigator.Navigate(ctx, effect.URL); err != nil {
				logger.ErrorKV(ctx, "Failed to navigate", "url", effect.URL, "error", err)
			}
		default:
			logger.WarnKV(ctx, "Unknown effect skipped", "kind", effect.Kind)
		}
	}

	return nil
}

// typing shows the indicator for d and hides it before the next append.
func (d *Dispatcher) typing(ctx context.Context, delay time.Duration) error {
	if err := d.sink.SetTyping(ctx, true); err != nil {
		logger.ErrorKV(ctx, "Failed to show typing indicator", "error", err)
	}

	var waitErr error
	if d.wait != nil {
		waitErr = d.wait(ctx, delay)
	}

	if err := d.sink.SetTyping(ctx, false); err != nil {
		logger.ErrorKV(ctx, "Failed to hide typing indicator", "error", err)
	}

	return waitErr
}

// persist stores the record for the detail view.
func (d *Dispatcher) persist(ctx context.Context, record *alarm.Record) {
	if d.store == nil || record == nil {
		return
	}

	if err := d.store.Save(ctx, d.storeKey, record); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarm for the detail view", "key", d.storeKey, "error", err)
	}
}

// sleep waits for delay or until ctx is done.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
