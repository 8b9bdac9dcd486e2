package lookup

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
	lookupsvc "github.com/oshokin/alarm-chat/internal/lookup"
)

const bufSize = 1 << 20

// startServer serves svc over an in-memory listener and returns a client.
func startServer(t *testing.T, svc lookupsvc.Service) *Client {
	t.Helper()

	listener := bufconn.Listen(bufSize)
	server := grpc.NewServer()
	RegisterServer(server, NewServer(svc))

	go func() {
		_ = server.Serve(listener)
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})

	return NewClient(conn)
}

// TestLookup_Found returns the catalog record over the wire.
func TestLookup_Found(t *testing.T) {
	t.Parallel()

	client := startServer(t, lookupsvc.NewCatalog())

	record, err := client.Lookup(t.Context(), "42", "router-1")
	require.NoError(t, err)
	require.Equal(t, "42", record.ID)
	require.Equal(t, "router-1", record.Element)
	require.Equal(t, "Major", record.Severity)
	require.NotEmpty(t, record.Timestamp)
}

// TestLookup_NotFound maps codes.NotFound back to ErrNotFound.
func TestLookup_NotFound(t *testing.T) {
	t.Parallel()

	client := startServer(t, lookupsvc.NewCatalog())

	_, err := client.Lookup(t.Context(), "999", "router-1")
	require.ErrorIs(t, err, lookupsvc.ErrNotFound)
}

// TestLookup_BackendFailure reports unavailability.
func TestLookup_BackendFailure(t *testing.T) {
	t.Parallel()

	client := startServer(t, lookupsvc.Func(func(context.Context, string, string) (*alarm.Record, error) {
		return nil, errors.New("database is down")
	}))

	_, err := client.Lookup(t.Context(), "42", "router-1")
	require.ErrorIs(t, err, lookupsvc.ErrUnavailable)
}

// TestServer_StatusCodes checks the handler without a transport.
func TestServer_StatusCodes(t *testing.T) {
	t.Parallel()

	s := NewServer(lookupsvc.NewCatalog())

	_, err := s.Lookup(t.Context(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	req, err := structpb.NewStruct(map[string]any{requestAlarmID: " 205 ", requestElement: "switch-2"})
	require.NoError(t, err)

	resp, err := s.Lookup(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, "205", resp.GetFields()["alarmId"].GetStringValue())
	require.Equal(t, "switch-2", resp.GetFields()[alarm.FieldElement].GetStringValue())

	req, err = structpb.NewStruct(map[string]any{requestAlarmID: "nope"})
	require.NoError(t, err)

	_, err = s.Lookup(t.Context(), req)
	require.Equal(t, codes.NotFound, status.Code(err))
}

// TestDial_RequiresAddress rejects an empty address.
func TestDial_RequiresAddress(t *testing.T) {
	t.Parallel()

	_, err := Dial("")
	require.ErrorIs(t, err, errAddressRequired)
}
