package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-chat/internal/service/server"
)

// serveCmd runs the widget HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve [listen-address]",
	Short: "Run the widget HTTP API.",
	Long: `Starts the HTTP server that hosts widget sessions, the chat responder
endpoint, the alarm detail hand-off and Prometheus metrics.

The listen address argument overrides listen_address from the configuration
(e.g. :8080, 127.0.0.1:9000).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return server.Run(ctx, &server.Options{
			ConfigPath:    configPath,
			ListenAddress: optionalArg(args),
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(serveCmd)
}
