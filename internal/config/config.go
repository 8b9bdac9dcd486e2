package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-chat/internal/logger"
)

// Handoff backends.
const (
	// HandoffFile stores hand-off records as JSON files in a directory.
	HandoffFile = "file"
	// HandoffRedis stores hand-off records in Redis.
	HandoffRedis = "redis"
)

// Handoff configures where a found alarm is stored for the detail view.
type Handoff struct {
	// Backend is either "file" or "redis".
	Backend string `yaml:"backend"`
	// Directory holds one JSON file per session for the file backend.
	Directory string `yaml:"directory"`
	// RedisAddress is the host:port of the Redis server.
	RedisAddress string `yaml:"redis_addr"`
	// RedisPassword authenticates against Redis, if required.
	RedisPassword string `yaml:"redis_password"`
	// RedisDB selects the Redis logical database.
	RedisDB int `yaml:"redis_db"`
	// Key is the well-known key prefix the detail view reads.
	Key string `yaml:"key"`
	// TTL expires hand-off records; zero keeps them until overwritten.
	TTL time.Duration `yaml:"ttl"`
}

// Config holds the settings shared by the alarm-chat processes.
type Config struct {
	// ListenAddress is where the widget HTTP API listens.
	ListenAddress string `yaml:"listen_addr"`
	// LookupAddress is the gRPC address of the alarm lookup service.
	// Empty selects the built-in simulated catalog.
	LookupAddress string `yaml:"lookup_addr"`
	// LookupListenAddress is where lookup-server listens.
	LookupListenAddress string `yaml:"lookup_listen_addr"`
	// ChatEndpoint is the remote responder URL for free-text messages.
	// Empty keeps the widget on the local menu only.
	ChatEndpoint string `yaml:"chat_endpoint"`
	// DetailURL is the page that shows a found alarm.
	DetailURL string `yaml:"detail_url"`
	// LookupTimeout bounds a single alarm lookup; slower lookups count as unavailable.
	LookupTimeout time.Duration `yaml:"lookup_timeout"`
	// TransportTimeout bounds a single request to the chat endpoint.
	TransportTimeout time.Duration `yaml:"transport_timeout"`
	// TypingDelay is how long the typing indicator shows before a bot reply.
	TypingDelay time.Duration `yaml:"typing_delay"`
	// SimulatedLatency is the artificial delay of the simulated catalog.
	SimulatedLatency time.Duration `yaml:"simulated_latency"`
	// SessionTTL evicts widget sessions idle for longer than this.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// Handoff configures the detail-view hand-off store.
	Handoff Handoff `yaml:"handoff"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is console or json.
	LogFormat string `yaml:"log_format"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-chat-settings.yaml"

	// DefaultListenAddress is the default widget API address.
	DefaultListenAddress = ":8080"

	// DefaultLookupListenAddress is the default lookup-server address.
	DefaultLookupListenAddress = ":50051"

	// DefaultDetailURL is the default alarm detail page.
	DefaultDetailURL = "/alarm-details.html"

	// DefaultLookupTimeout bounds alarm lookups.
	DefaultLookupTimeout = 10 * time.Second

	// DefaultTransportTimeout bounds chat endpoint requests.
	DefaultTransportTimeout = 15 * time.Second

	// DefaultTypingDelay is the default typing indicator duration.
	DefaultTypingDelay = 800 * time.Millisecond

	// DefaultSimulatedLatency mimics a backend round trip.
	DefaultSimulatedLatency = 1500 * time.Millisecond

	// DefaultSessionTTL evicts abandoned widget sessions.
	DefaultSessionTTL = 30 * time.Minute

	// DefaultHandoffKey is the key the detail view reads.
	DefaultHandoffKey = "lastAlarmDetails"

	// DefaultHandoffDirectory holds file hand-off records.
	DefaultHandoffDirectory = "alarm-chat-handoff"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is the default permission for created directories.
	DefaultDirPermissions = 0o750

	// envPrefix prefixes every environment override.
	envPrefix = "ALARM_CHAT_"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownHandoffBackend is returned for an unsupported hand-off backend.
	errUnknownHandoffBackend = errors.New("unknown hand-off backend")
	// errRedisAddressRequired is returned when the redis backend has no address.
	errRedisAddressRequired = errors.New("redis address must be provided for the redis hand-off backend")
	// errInvalidLogLevel is returned for an unparsable log level.
	errInvalidLogLevel = errors.New("invalid log level")
	// errInvalidLogFormat is returned for an unknown log format.
	errInvalidLogFormat = errors.New("invalid log format")
	// errNegativeDuration is returned when a duration setting is negative.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := preset()
	_ = Validate(cfg) //nolint:errcheck // Defaults always validate.

	return cfg
}

// preset returns the settings whose zero value is meaningful, so they can
// only be defaulted before the file is read.
func preset() *Config {
	return &Config{
		TypingDelay:      DefaultTypingDelay,
		SimulatedLatency: DefaultSimulatedLatency,
	}
}

// Load reads configuration from the provided path, applies environment
// overrides and validates the result. A missing default settings file is
// not an error: defaults and the environment are used instead.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	cfg := preset()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = ApplyEnvironment(cfg); err != nil {
		return nil, err
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ApplyEnvironment loads an optional .env file and copies ALARM_CHAT_*
// variables over the matching settings.
func ApplyEnvironment(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load() //nolint:errcheck // Optional file.

	texts := map[string]*string{
		"LISTEN_ADDR":        &cfg.ListenAddress,
		"LOOKUP_ADDR":        &cfg.LookupAddress,
		"LOOKUP_LISTEN_ADDR": &cfg.LookupListenAddress,
		"CHAT_ENDPOINT":      &cfg.ChatEndpoint,
		"DETAIL_URL":         &cfg.DetailURL,
		"HANDOFF_BACKEND":    &cfg.Handoff.Backend,
		"HANDOFF_DIR":        &cfg.Handoff.Directory,
		"REDIS_ADDR":         &cfg.Handoff.RedisAddress,
		"REDIS_PASSWORD":     &cfg.Handoff.RedisPassword,
		"LOG_LEVEL":          &cfg.LogLevel,
		"LOG_FORMAT":         &cfg.LogFormat,
	}

	for name, target := range texts {
		if value, ok := os.LookupEnv(envPrefix + name); ok {
			*target = value
		}
	}

	durations := map[string]*time.Duration{
		"LOOKUP_TIMEOUT":    &cfg.LookupTimeout,
		"TRANSPORT_TIMEOUT": &cfg.TransportTimeout,
		"TYPING_DELAY":      &cfg.TypingDelay,
		"SESSION_TTL":       &cfg.SessionTTL,
	}

	for name, target := range durations {
		value, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}

		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse %s%s: %w", envPrefix, name, err)
		}

		*target = d
	}

	if value, ok := os.LookupEnv(envPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse %sREDIS_DB: %w", envPrefix, err)
		}

		cfg.Handoff.RedisDB = db
	}

	return nil
}

// Validate checks the provided settings and fills defaults.
//
//nolint:cyclop,funlen // Flat list of independent checks.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ListenAddress == "" {
		settings.ListenAddress = DefaultListenAddress
	}

	if settings.LookupListenAddress == "" {
		settings.LookupListenAddress = DefaultLookupListenAddress
	}

	if settings.LookupAddress != "" {
		if _, _, err := net.SplitHostPort(settings.LookupAddress); err != nil {
			return fmt.Errorf("invalid lookup address: %w", err)
		}
	}

	if settings.ChatEndpoint != "" {
		if _, err := url.ParseRequestURI(settings.ChatEndpoint); err != nil {
			return fmt.Errorf("invalid chat endpoint URI: %w", err)
		}
	}

	if settings.DetailURL == "" {
		settings.DetailURL = DefaultDetailURL
	}

	if _, err := url.Parse(settings.DetailURL); err != nil {
		return fmt.Errorf("invalid detail URL: %w", err)
	}

	durations := []*time.Duration{
		&settings.LookupTimeout,
		&settings.TransportTimeout,
		&settings.TypingDelay,
		&settings.SimulatedLatency,
		&settings.SessionTTL,
		&settings.Handoff.TTL,
	}

	for _, d := range durations {
		if *d < 0 {
			return errNegativeDuration
		}
	}

	if settings.LookupTimeout == 0 {
		settings.LookupTimeout = DefaultLookupTimeout
	}

	if settings.TransportTimeout == 0 {
		settings.TransportTimeout = DefaultTransportTimeout
	}

	if settings.SessionTTL == 0 {
		settings.SessionTTL = DefaultSessionTTL
	}

	if err := validateHandoff(&settings.Handoff); err != nil {
		return err
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, settings.LogLevel)
	}

	if _, ok := logger.ParseEncoding(settings.LogFormat); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogFormat, settings.LogFormat)
	}

	return nil
}

// validateHandoff checks hand-off settings and fills defaults.
func validateHandoff(h *Handoff) error {
	if h.Key == "" {
		h.Key = DefaultHandoffKey
	}

	switch h.Backend {
	case "", HandoffFile:
		h.Backend = HandoffFile
		if h.Directory == "" {
			h.Directory = DefaultHandoffDirectory
		}
	case HandoffRedis:
		if h.RedisAddress == "" {
			return errRedisAddressRequired
		}

		if _, _, err := net.SplitHostPort(h.RedisAddress); err != nil {
			return fmt.Errorf("invalid redis address: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownHandoffBackend, h.Backend)
	}

	return nil
}
