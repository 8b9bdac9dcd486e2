package sink

import (
	"context"
	"sync"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
)

// Message is one transcript entry.
type Message struct {
	Text         string
	Sender       chat.Sender
	QuickReplies []string
}

// Sink renders messages and the typing indicator.
type Sink interface {
	Append(ctx context.Context, msg Message) error
	SetTyping(ctx context.Context, active bool) error
}

// Panel is a Sink that tracks the widget panel flags and forwards rendering
// to an optional Renderer.
type Panel struct {
	// renderer draws messages; nil keeps the panel headless.
	renderer Sink
	// mu protects flags and transcript.
	mu sync.Mutex
	// flags are the open/closed/minimized flags and the unread counter.
	flags chat.Panel
	// transcript holds every appended message.
	transcript []Message
}

// NewPanel creates a closed panel drawing through renderer.
func NewPanel(renderer Sink) *Panel {
	return &Panel{
		renderer: renderer,
	}
}

// Append records msg, updates the unread counter and renders it.
func (p *Panel) Append(ctx context.Context, msg Message) error {
	p.mu.Lock()
	p.flags.Deliver(msg.Sender)
	p.transcript = append(p.transcript, msg)
	p.mu.Unlock()

	if p.renderer == nil {
		return nil
	}

	return p.renderer.Append(ctx, msg)
}

// SetTyping forwards the typing indicator to the renderer.
func (p *Panel) SetTyping(ctx context.Context, active bool) error {
	if p.renderer == nil {
		return nil
	}

	return p.renderer.SetTyping(ctx, active)
}

// Open shows the panel and resets the unread counter.
func (p *Panel) Open() chat.Panel {
	return p.update((*chat.Panel).Open)
}

// Close hides the panel.
func (p *Panel) Close() chat.Panel {
	return p.update((*chat.Panel).Close)
}

// Minimize collapses an open panel.
func (p *Panel) Minimize() chat.Panel {
	return p.update((*chat.Panel).Minimize)
}

// Flags returns the current panel flags.
func (p *Panel) Flags() chat.Panel {
	return p.update(func(*chat.Panel) {})
}

// Transcript returns a copy of every appended message.
func (p *Panel) Transcript() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Message(nil), p.transcript...)
}

// update applies fn to the flags under the lock.
func (p *Panel) update(fn func(*chat.Panel)) chat.Panel {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(&p.flags)

	return p.flags
}
