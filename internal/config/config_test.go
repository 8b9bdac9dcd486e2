package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validations and defaults.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty settings get defaults.
	settings := new(Config)
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultListenAddress, settings.ListenAddress)
	require.Equal(t, DefaultLookupTimeout, settings.LookupTimeout)
	require.Equal(t, HandoffFile, settings.Handoff.Backend)
	require.Equal(t, DefaultHandoffKey, settings.Handoff.Key)
	require.Equal(t, "info", settings.LogLevel)

	// Bad lookup address.
	settings = &Config{LookupAddress: "no-port"}
	require.Error(t, Validate(settings))

	// Bad chat endpoint.
	settings = &Config{ChatEndpoint: "not a url"}
	require.Error(t, Validate(settings))

	// Redis backend needs an address.
	settings = &Config{Handoff: Handoff{Backend: HandoffRedis}}
	require.ErrorIs(t, Validate(settings), errRedisAddressRequired)

	// Unknown backend.
	settings = &Config{Handoff: Handoff{Backend: "s3"}}
	require.ErrorIs(t, Validate(settings), errUnknownHandoffBackend)

	// Negative durations.
	settings = &Config{TypingDelay: -time.Second}
	require.ErrorIs(t, Validate(settings), errNegativeDuration)

	// Unknown log level.
	settings = &Config{LogLevel: "chatty"}
	require.ErrorIs(t, Validate(settings), errInvalidLogLevel)

	// Okay with everything set.
	settings = &Config{
		LookupAddress: "127.0.0.1:50051",
		ChatEndpoint:  "https://support.example.com/api/chat",
		Handoff: Handoff{
			Backend:      HandoffRedis,
			RedisAddress: "127.0.0.1:6379",
		},
		LogFormat: "json",
	}
	require.NoError(t, Validate(settings))

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestDefault keeps the typing delay and simulated latency presets.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Equal(t, DefaultTypingDelay, cfg.TypingDelay)
	require.Equal(t, DefaultSimulatedLatency, cfg.SimulatedLatency)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ListenAddress: "127.0.0.1:9090",
		LookupAddress: "127.0.0.1:50051",
		ChatEndpoint:  "https://support.local/api/chat",
		TypingDelay:   0,
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ListenAddress, loaded.ListenAddress)
	require.Equal(t, settings.LookupAddress, loaded.LookupAddress)
	require.Equal(t, settings.ChatEndpoint, loaded.ChatEndpoint)
	// An explicit zero in the file disables typing delays.
	require.Zero(t, loaded.TypingDelay)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingExplicitFile fails when the requested file does not exist.
func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestSave_Nil rejects a nil configuration.
func TestSave_Nil(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil), errConfigIsNotSet)
}

// TestApplyEnvironment verifies ALARM_CHAT_* variables override file values.
func TestApplyEnvironment(t *testing.T) {
	t.Setenv("ALARM_CHAT_LISTEN_ADDR", ":7070")
	t.Setenv("ALARM_CHAT_REDIS_ADDR", "redis:6379")
	t.Setenv("ALARM_CHAT_TYPING_DELAY", "250ms")
	t.Setenv("ALARM_CHAT_REDIS_DB", "3")

	cfg := &Config{ListenAddress: ":8080"}
	require.NoError(t, ApplyEnvironment(cfg))

	require.Equal(t, ":7070", cfg.ListenAddress)
	require.Equal(t, "redis:6379", cfg.Handoff.RedisAddress)
	require.Equal(t, 250*time.Millisecond, cfg.TypingDelay)
	require.Equal(t, 3, cfg.Handoff.RedisDB)
}

// TestApplyEnvironment_BadDuration reports unparsable durations.
func TestApplyEnvironment_BadDuration(t *testing.T) {
	t.Setenv("ALARM_CHAT_LOOKUP_TIMEOUT", "soon")

	require.Error(t, ApplyEnvironment(new(Config)))
}
