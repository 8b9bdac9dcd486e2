package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
)

// Console renders the conversation as plain text lines.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console renderer writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Append implements Sink.
func (c *Console) Append(_ context.Context, msg Message) error {
	prefix := "bot> "
	if msg.Sender == chat.SenderUser {
		prefix = "you> "
	}

	var b strings.Builder

	for i, line := range strings.Split(msg.Text, "\n") {
		if i == 0 {
			b.WriteString(prefix)
		} else {
			b.WriteString(strings.Repeat(" ", len(prefix)))
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(msg.QuickReplies) > 0 {
		b.WriteString(strings.Repeat(" ", len(prefix)))

		for i, reply := range msg.QuickReplies {
			if i > 0 {
				b.WriteString(" ")
			}

			b.WriteString("[" + reply + "]")
		}

		b.WriteString("\n")
	}

	return c.write(b.String())
}

// SetTyping implements Sink.
func (c *Console) SetTyping(_ context.Context, active bool) error {
	if !active {
		return nil
	}

	return c.write("bot is typing...\n")
}

// Navigate prints the page the widget would open.
func (c *Console) Navigate(_ context.Context, url string) error {
	return c.write(fmt.Sprintf("--> opening %s\n", url))
}

// Notice prints a status line outside the conversation.
func (c *Console) Notice(format string, args ...any) error {
	return c.write("-- " + fmt.Sprintf(format, args...) + "\n")
}

// Prompt asks for the next line of input.
func (c *Console) Prompt() error {
	return c.write("> ")
}

// write serialises output.
func (c *Console) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.out, s); err != nil {
		return fmt.Errorf("write console: %w", err)
	}

	return nil
}
