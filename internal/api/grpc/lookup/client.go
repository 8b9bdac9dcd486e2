package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-chat/internal/config"
	"github.com/oshokin/alarm-chat/internal/domain/alarm"
	lookupsvc "github.com/oshokin/alarm-chat/internal/lookup"
)

// Client calls a remote AlarmLookupService and implements lookup.Service.
type Client struct {
	// conn is the underlying gRPC connection.
	conn grpc.ClientConnInterface
	// closer releases conn; nil for borrowed connections.
	closer func() error
	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the lookup server at address.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy.
func Dial(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial lookup server: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultLookupTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the connection created by Dial.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// Lookup implements lookup.Service.
func (c *Client) Lookup(ctx context.Context, alarmID, element string) (*alarm.Record, error) {
	request, err := structpb.NewStruct(map[string]any{
		requestAlarmID: alarmID,
		requestElement: element,
	})
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response := new(structpb.Struct)

	if err = c.conn.Invoke(callCtx, lookupMethod, request, response); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, lookupsvc.ErrNotFound
		}

		return nil, fmt.Errorf("%w: %w", lookupsvc.ErrUnavailable, err)
	}

	fields := make(map[string]string, len(response.GetFields()))
	for k, v := range response.GetFields() {
		fields[k] = v.GetStringValue()
	}

	record, err := alarm.FromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lookupsvc.ErrUnavailable, err)
	}

	return record, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
