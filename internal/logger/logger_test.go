package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestParseEncoding verifies the accepted encodings and the console fallback.
func TestParseEncoding(t *testing.T) {
	t.Parallel()

	enc, ok := ParseEncoding("JSON")
	require.True(t, ok)
	require.Equal(t, EncodingJSON, enc)

	enc, ok = ParseEncoding("")
	require.True(t, ok)
	require.Equal(t, EncodingConsole, enc)

	_, ok = ParseEncoding("xml")
	require.False(t, ok)
}

// TestNewWithOutput_JSON checks that JSON output lands in the provided writer.
func TestNewWithOutput_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithOutput(&buf, EncodingJSON, zapcore.DebugLevel)
	l.Infow("Lookup finished", "alarm_id", "42")
	require.NoError(t, l.Sync())

	require.Contains(t, buf.String(), `"alarm_id":"42"`)
	require.Contains(t, buf.String(), `"message":"Lookup finished"`)
}

// TestWithLevel_RaisesFloor drops entries below the wrapped level.
func TestWithLevel_RaisesFloor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithOutput(&buf, EncodingJSON, zapcore.DebugLevel, WithLevel(zapcore.WarnLevel))
	l.Info("chatter")
	l.Warn("lookup backend slow")
	require.NoError(t, l.Sync())

	require.NotContains(t, buf.String(), "chatter")
	require.Contains(t, buf.String(), "lookup backend slow")
}
