package lookupserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-chat/internal/api/grpc/lookup"
	"github.com/oshokin/alarm-chat/internal/logger"
	"github.com/oshokin/alarm-chat/internal/lookup"
	"github.com/oshokin/alarm-chat/internal/service/common"
)

// Options controls the lookup server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
}

// Run starts the gRPC server and blocks until context is canceled or server stops.
func Run(ctx context.Context, opts *Options) error {
	settings, err := common.LoadSettings(opts.ConfigPath, os.Stdout)
	if err != nil {
		return err
	}

	ctx = logger.WithName(ctx, "alarm-lookup-server")

	listenAddress, err := common.ResolveListenAddress(settings.LookupListenAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	catalog := lookup.NewCatalog(lookup.WithLatency(settings.SimulatedLatency))

	logger.InfoKV(ctx, "Alarm lookup server listening",
		"listen_address", listenAddress,
		"simulated_latency", settings.SimulatedLatency,
	)

	return serve(ctx, lis, catalog)
}

// serve answers lookups from svc on lis until ctx is done.
func serve(ctx context.Context, lis net.Listener, svc lookup.Service) error {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logCalls))
	api.RegisterServer(grpcServer, api.NewServer(svc))

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// logCalls logs every unary call at debug level.
func logCalls(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	resp, err := handler(ctx, req)

	logger.DebugKV(ctx, "GRPC call served", "method", info.FullMethod, "error", err)

	return resp, err
}
