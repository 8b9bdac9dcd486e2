package sink

import (
	"context"
	"sync"
)

// Event is one call observed by a Recorder.
type Event struct {
	// Message is set for appends.
	Message *Message
	// Typing is set for typing indicator changes.
	Typing *bool
}

// Recorder is a Sink that remembers every call in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned from every call after recording it.
	Err error
}

// Append implements Sink.
func (r *Recorder) Append(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{Message: &msg})

	return r.Err
}

// SetTyping implements Sink.
func (r *Recorder) SetTyping(_ context.Context, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{Typing: &active})

	return r.Err
}

// Events returns the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

// Texts returns the text of every recorded append.
func (r *Recorder) Texts() []string {
	var texts []string

	for _, e := range r.Events() {
		if e.Message != nil {
			texts = append(texts, e.Message.Text)
		}
	}

	return texts
}
