package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	api "github.com/oshokin/alarm-chat/internal/api/http"
	"github.com/oshokin/alarm-chat/internal/config"
	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/metrics"
	"github.com/oshokin/alarm-chat/internal/service/common"
)

// Options controls the widget server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override.
	ListenAddress string
}

const (
	// shutdownTimeout bounds the graceful shutdown of in-flight requests.
	shutdownTimeout = 10 * time.Second
	// readHeaderTimeout protects against slow clients.
	readHeaderTimeout = 5 * time.Second
	// minJanitorInterval keeps eviction from spinning on tiny TTLs.
	minJanitorInterval = time.Second
)

// app is the wired widget server.
type app struct {
	registry *flow.Registry
	handler  http.Handler
	closers  []func() error
}

// Run starts the HTTP server and blocks until ctx is canceled or the server stops.
func Run(ctx context.Context, opts *Options) error {
	settings, err := common.LoadSettings(opts.ConfigPath, os.Stdout)
	if err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "alarm-chat-server")

	listenAddress, err := common.ResolveListenAddress(settings.ListenAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	a, err := newApp(ctx, settings)
	if err != nil {
		return fmt.Errorf("initialise server: %w", err)
	}

	defer a.close(ctx)

	go a.registry.Run(ctx, janitorInterval(settings.SessionTTL))

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	logger.InfoKV(ctx, "Widget server listening",
		"listen_address", listenAddress,
		"handoff_backend", settings.Handoff.Backend,
		"relay", settings.ChatEndpoint != "",
	)

	return serve(ctx, lis, a.handler)
}

// newApp wires the collaborators described by settings.
func newApp(ctx context.Context, settings *config.Config) (*app, error) {
	a := new(app)

	svc, closeLookup, err := common.NewLookup(ctx, settings)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, closeLookup)

	store, closeStore, err := common.NewHandoff(ctx, settings)
	if err != nil {
		a.close(ctx)

		return nil, err
	}

	a.closers = append(a.closers, closeStore)

	responder, err := common.NewResponder(settings)
	if err != nil {
		a.close(ctx)

		return nil, err
	}

	collector := metrics.New()
	engine := common.NewEngine(settings, svc, responder, collector)

	a.registry = flow.NewRegistry(engine, settings.SessionTTL)
	collector.TrackSessions(a.registry.Len)

	a.handler = api.NewServer(a.registry, store, settings.Handoff.Key, api.WithMetrics(collector.Handler())).Handler()

	return a, nil
}

// close releases the collaborators in reverse order.
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.WarnKV(ctx, "Failed to release resource", "error", err)
		}
	}
}

// serve runs an HTTP server on lis until ctx is done, then drains it.
func serve(ctx context.Context, lis net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "HTTP server shutdown incomplete", "error", err)
		}
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// janitorInterval checks for idle sessions twice per TTL.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/2, minJanitorInterval)
}
