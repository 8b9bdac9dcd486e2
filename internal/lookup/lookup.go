package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
)

// Service resolves an alarm number reported by an element into a record.
type Service interface {
	Lookup(ctx context.Context, alarmID, element string) (*alarm.Record, error)
}

var (
	// ErrNotFound is returned when no alarm matches the identifier.
	ErrNotFound = errors.New("alarm not found")
	// ErrUnavailable is returned when the backend cannot answer in time.
	ErrUnavailable = errors.New("alarm lookup unavailable")
)

// Func adapts a plain function to the Service interface.
type Func func(ctx context.Context, alarmID, element string) (*alarm.Record, error)

// Lookup calls f.
func (f Func) Lookup(ctx context.Context, alarmID, element string) (*alarm.Record, error) {
	return f(ctx, alarmID, element)
}

// timeoutService bounds every lookup of the wrapped service.
type timeoutService struct {
	// next is the wrapped service.
	next Service
	// timeout is the maximum duration of one lookup.
	timeout time.Duration
}

// WithTimeout bounds each lookup of next by timeout. A lookup that does not
// finish in time, or fails with anything but ErrNotFound, is reported as
// ErrUnavailable. A non-positive timeout only normalises errors.
//
//nolint:ireturn // Decorator returns the interface it wraps.
func WithTimeout(next Service, timeout time.Duration) Service {
	return &timeoutService{
		next:    next,
		timeout: timeout,
	}
}

// Lookup implements Service.
func (s *timeoutService) Lookup(ctx context.Context, alarmID, element string) (*alarm.Record, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	type outcome struct {
		record *alarm.Record
		err    error
	}

	// The wrapped service may ignore cancellation; never wait past the deadline.
	done := make(chan outcome, 1)

	go func() {
		record, err := s.next.Lookup(callCtx, alarmID, element)
		done <- outcome{record: record, err: err}
	}()

	select {
	case <-callCtx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, callCtx.Err())
	case out := <-done:
		return normalize(out.record, out.err)
	}
}

// callContext applies the configured timeout, if any.
func (s *timeoutService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.timeout)
}

// normalize maps arbitrary backend errors onto the two lookup failures.
func normalize(record *alarm.Record, err error) (*alarm.Record, error) {
	switch {
	case err == nil && record == nil:
		return nil, ErrNotFound
	case err == nil:
		return record, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}
