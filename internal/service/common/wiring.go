//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	grpclookup "github.com/oshokin/alarm-chat/internal/api/grpc/lookup"
	"github.com/oshokin/alarm-chat/internal/config"
	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/lookup"
	"github.com/oshokin/alarm-chat/internal/repository/handoff"
	"github.com/oshokin/alarm-chat/internal/transport"
)

// LoadSettings reads the configuration at path and points the global logger
// at w with the configured level and format.
func LoadSettings(path string, w io.Writer, options ...zap.Option) (*config.Config, error) {
	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// Both values were checked by config.Validate.
	level, _ := logger.ParseLogLevel(settings.LogLevel)
	encoding, _ := logger.ParseEncoding(settings.LogFormat)

	logger.Configure(w, encoding, level, options...)

	return settings, nil
}

// NewLookup returns a gRPC client when a lookup address is configured and the
// simulated catalog otherwise. The returned closer is never nil.
//
//nolint:ireturn // Callers only need the service behaviour.
func NewLookup(ctx context.Context, settings *config.Config) (lookup.Service, func() error, error) {
	if settings.LookupAddress == "" {
		logger.InfoKV(ctx, "Using the simulated alarm catalog", "latency", settings.SimulatedLatency)

		return lookup.NewCatalog(lookup.WithLatency(settings.SimulatedLatency)), noClose, nil
	}

	client, err := grpclookup.Dial(settings.LookupAddress, grpclookup.WithCallTimeout(settings.LookupTimeout))
	if err != nil {
		return nil, nil, err
	}

	logger.InfoKV(ctx, "Using the remote alarm lookup service", "lookup_address", settings.LookupAddress)

	return client, client.Close, nil
}

// NewHandoff builds the configured hand-off repository. The returned closer
// is never nil.
//
//nolint:ireturn // Callers only need the repository behaviour.
func NewHandoff(ctx context.Context, settings *config.Config) (handoff.Repository, func() error, error) {
	h := settings.Handoff

	if h.Backend != config.HandoffRedis {
		return handoff.NewFileRepository(h.Directory), noClose, nil
	}

	repo := handoff.NewRedisRepository(redis.NewClient(&redis.Options{
		Addr:     h.RedisAddress,
		Password: h.RedisPassword,
		DB:       h.RedisDB,
	}), h.TTL)

	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()

		return nil, nil, fmt.Errorf("connect to redis at %s: %w", h.RedisAddress, err)
	}

	return repo, repo.Close, nil
}

// NewResponder returns the chat endpoint client, or nil when free text is
// not relayed.
//
//nolint:ireturn // A nil interface disables relaying.
func NewResponder(settings *config.Config) (flow.Responder, error) {
	if settings.ChatEndpoint == "" {
		return nil, nil
	}

	client, err := transport.New(settings.ChatEndpoint, transport.WithCallTimeout(settings.TransportTimeout))
	if err != nil {
		return nil, fmt.Errorf("create chat endpoint client: %w", err)
	}

	return client, nil
}

// NewEngine builds the dialogue engine from settings.
func NewEngine(
	settings *config.Config,
	svc lookup.Service,
	responder flow.Responder,
	observer flow.Observer,
) *flow.Engine {
	opts := []flow.Option{
		flow.WithTypingDelay(settings.TypingDelay),
		flow.WithLookupTimeout(settings.LookupTimeout),
		flow.WithDetailURL(settings.DetailURL),
	}

	if responder != nil {
		opts = append(opts, flow.WithResponder(responder))
	}

	if observer != nil {
		opts = append(opts, flow.WithObserver(observer))
	}

	return flow.New(svc, opts...)
}

func noClose() error {
	return nil
}
