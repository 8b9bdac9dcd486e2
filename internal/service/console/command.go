package console

import (
	"bufio"
	"context"
	"io"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/oshokin/alarm-chat/internal/config"
	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/repository/handoff"
	"github.com/oshokin/alarm-chat/internal/service/common"
	"github.com/oshokin/alarm-chat/internal/sink"
)

// Options configures the console widget.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// SessionID overrides the detected user@host session id.
	SessionID string
	// Resume starts in the main menu as if returning from the detail view.
	Resume bool
	// Verbose keeps informational logs on stderr.
	Verbose bool
	// In is read for visitor input; defaults to stdin.
	In io.Reader
	// Out receives the conversation; defaults to stdout.
	Out io.Writer
}

// Panel commands.
const (
	commandOpen     = "/open"
	commandClose    = "/close"
	commandMinimize = "/minimize"
	commandQuit     = "/quit"
)

const helpText = "type a message, or /open, /close, /minimize, /quit"

// Run drives a session until the input ends, /quit is typed or ctx is done.
func Run(ctx context.Context, opts *Options) error {
	var logOptions []zap.Option
	if !opts.Verbose {
		logOptions = append(logOptions, logger.WithLevel(zapcore.WarnLevel))
	}

	settings, err := common.LoadSettings(opts.ConfigPath, os.Stderr, logOptions...)
	if err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "alarm-chat-console")

	sessionID := opts.SessionID
	if sessionID == "" {
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		sessionID = actor.String()
	}

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	svc, closeLookup, err := common.NewLookup(ctx, settings)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeLookup()
	}()

	store, closeStore, err := common.NewHandoff(ctx, settings)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeStore()
	}()

	responder, err := common.NewResponder(settings)
	if err != nil {
		return err
	}

	w := newWidget(common.NewEngine(settings, svc, responder, nil), settings, store, sessionID, opts.Resume, out)
	w.prompt = isTerminal(in)

	return w.run(ctx, in)
}

// widget is one console session with its panel.
type widget struct {
	session    *flow.Session
	start      chat.Result
	panel      *sink.Panel
	console    *sink.Console
	dispatcher *sink.Dispatcher
	// prompt shows "> " before each line of an interactive terminal.
	prompt bool
}

func newWidget(
	engine *flow.Engine,
	settings *config.Config,
	store handoff.Repository,
	sessionID string,
	resume bool,
	out io.Writer,
) *widget {
	w := &widget{
		console: sink.NewConsole(out),
	}

	w.panel = sink.NewPanel(&gate{widget: w})
	w.dispatcher = sink.NewDispatcher(w.panel,
		sink.WithStore(store, handoff.Key(settings.Handoff.Key, sessionID)),
		sink.WithNavigator(w.console),
	)
	w.session, w.start = engine.NewSession(sessionID, resume)

	return w
}

// run reads lines until the input ends, /quit or ctx is done.
func (w *widget) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	w.open(ctx)
	w.notice(ctx, "session %s: %s", w.session.ID(), helpText)

	if err := w.dispatcher.Dispatch(ctx, w.start.Effects); err != nil {
		return nil
	}

	for {
		if w.prompt {
			_ = w.console.Prompt()
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			if stop := w.handle(ctx, line); stop {
				return nil
			}
		}
	}
}

// handle processes one input line and reports whether the widget should stop.
func (w *widget) handle(ctx context.Context, line string) bool {
	switch strings.TrimSpace(line) {
	case commandQuit:
		return true
	case commandOpen:
		w.open(ctx)
	case commandClose:
		w.panel.Close()
		w.notice(ctx, "panel closed")
	case commandMinimize:
		if flags := w.panel.Minimize(); flags.IsMinimized {
			w.notice(ctx, "panel minimized")
		}
	default:
		result := w.session.Submit(ctx, line)
		if result.Ignored {
			w.notice(ctx, "still working on your previous request")

			return false
		}

		effects := result.Effects

		// A terminal already shows what was typed; scripted input is echoed.
		if !w.prompt {
			effects = append([]chat.Effect{chat.UserMessage(line)}, effects...)
		}

		// Only cancellation stops a dispatch.
		if err := w.dispatcher.Dispatch(ctx, effects); err != nil {
			return true
		}
	}

	return false
}

// open shows the panel and replays what arrived while it was closed.
func (w *widget) open(ctx context.Context) {
	unread := w.panel.Flags().UnreadCount
	w.panel.Open()

	if unread == 0 {
		return
	}

	w.notice(ctx, "%d unread", unread)

	for _, msg := range unreadTail(w.panel.Transcript(), unread) {
		if err := w.console.Append(ctx, msg); err != nil {
			logger.ErrorKV(ctx, "Failed to replay message", "error", err)
		}
	}
}

// notice prints a status line outside the conversation.
func (w *widget) notice(ctx context.Context, format string, args ...any) {
	if err := w.console.Notice(format, args...); err != nil {
		logger.ErrorKV(ctx, "Failed to write notice", "error", err)
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// unreadTail returns the last n bot messages of transcript in order.
func unreadTail(transcript []sink.Message, n int) []sink.Message {
	tail := make([]sink.Message, 0, n)

	for i := len(transcript) - 1; i >= 0 && len(tail) < n; i-- {
		if transcript[i].Sender == chat.SenderBot {
			tail = append(tail, transcript[i])
		}
	}

	slices.Reverse(tail)

	return tail
}

// gate renders to the console only while the panel is open.
type gate struct {
	widget *widget
}

func (g *gate) Append(ctx context.Context, msg sink.Message) error {
	if !g.widget.panel.Flags().IsOpen {
		return nil
	}

	return g.widget.console.Append(ctx, msg)
}

func (g *gate) SetTyping(ctx context.Context, active bool) error {
	if !g.widget.panel.Flags().IsOpen {
		return nil
	}

	return g.widget.console.SetTyping(ctx, active)
}
