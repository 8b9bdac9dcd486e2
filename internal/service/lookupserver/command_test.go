package lookupserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-chat/internal/api/grpc/lookup"
	"github.com/oshokin/alarm-chat/internal/lookup"
)

// TestServe_AnswersAndStops serves the catalog over TCP and stops on cancel.
func TestServe_AnswersAndStops(t *testing.T) {
	t.Parallel()

	lc := net.ListenConfig{}

	lis, err := lc.Listen(t.Context(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- serve(ctx, lis, lookup.NewCatalog())
	}()

	client, err := api.Dial(lis.Addr().String(), api.WithCallTimeout(5*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	record, err := client.Lookup(t.Context(), "101", "olt-3")
	require.NoError(t, err)
	require.Equal(t, "101", record.ID)

	_, err = client.Lookup(t.Context(), "0", "olt-3")
	require.ErrorIs(t, err, lookup.ErrNotFound)

	cancel()

	select {
	case err = <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
