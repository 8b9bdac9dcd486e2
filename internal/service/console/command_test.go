package console

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-chat/internal/config"
	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/lookup"
	"github.com/oshokin/alarm-chat/internal/repository/handoff"
	"github.com/oshokin/alarm-chat/internal/sink"
)

// TestWidget_Conversation drives a whole console session.
func TestWidget_Conversation(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	store := handoff.NewFileRepository(filepath.Join(t.TempDir(), "handoff"))

	var out bytes.Buffer

	w := newWidget(flow.New(lookup.NewCatalog()), settings, store, "tester", false, &out)

	input := strings.Join([]string{
		"hi",
		"/close",
		"4",
		"5",
		"/open",
		"1",
		"42",
		"router-1",
		"/quit",
		"never read",
	}, "\n")

	require.NoError(t, w.run(t.Context(), strings.NewReader(input)))

	text := out.String()
	require.Contains(t, text, "session tester")
	require.Contains(t, text, "panel closed")

	unread := strings.Index(text, "-- 2 unread")
	require.Positive(t, unread)
	require.Less(t, unread, strings.Index(text, "bot> Operational status"))

	require.Contains(t, text, "you> 42")
	require.Contains(t, text, "Alarm 42 found")
	require.Contains(t, text, "--> opening /alarm-details.html?session=tester")
	require.NotContains(t, text, "never read")

	record, err := store.Load(t.Context(), handoff.Key(settings.Handoff.Key, "tester"))
	require.NoError(t, err)
	require.Equal(t, "router-1", record.Element)
}

// TestWidget_MinimizeNeedsOpenPanel ignores minimize on a closed panel.
func TestWidget_MinimizeNeedsOpenPanel(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	w := newWidget(flow.New(lookup.NewCatalog()), config.Default(), handoff.NewFileRepository(t.TempDir()), "s", true, &out)

	require.NoError(t, w.run(t.Context(), strings.NewReader("/minimize\n/close\n/minimize\n")))
	require.Equal(t, 1, strings.Count(out.String(), "panel minimized"))
	require.Contains(t, out.String(), "Welcome back")
}

// TestUnreadTail keeps the last bot messages in order.
func TestUnreadTail(t *testing.T) {
	t.Parallel()

	transcript := []sink.Message{
		{Text: "a", Sender: chat.SenderBot},
		{Text: "b", Sender: chat.SenderBot},
		{Text: "me", Sender: chat.SenderUser},
		{Text: "c", Sender: chat.SenderBot},
	}

	tail := unreadTail(transcript, 2)
	require.Len(t, tail, 2)
	require.Equal(t, "b", tail[0].Text)
	require.Equal(t, "c", tail[1].Text)
}

// TestIsTerminal treats non-file readers as scripted input.
func TestIsTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, isTerminal(strings.NewReader("1\n")))
}
