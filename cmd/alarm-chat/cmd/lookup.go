package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-chat/internal/service/lookupserver"
)

// lookupCmd serves the alarm catalog over gRPC.
var lookupCmd = &cobra.Command{
	Use:   "lookup-server [listen-address]",
	Short: "Serve the alarm catalog over gRPC.",
	Long: `Starts the gRPC AlarmLookupService backed by the simulated catalog.

Point lookup_address of a widget server or console at it to use remote
lookups. The listen address argument overrides lookup_listen_address.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return lookupserver.Run(ctx, &lookupserver.Options{
			ConfigPath:    configPath,
			ListenAddress: optionalArg(args),
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(lookupCmd)
}
