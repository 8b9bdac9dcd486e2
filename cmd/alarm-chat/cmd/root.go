package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-chat/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd is the base command; the work happens in subcommands.
	rootCmd = &cobra.Command{
		Use:   "alarm-chat",
		Short: "Network operations chat widget with guided alarm lookup.",
		Long: `alarm-chat answers network operators through a scripted chat widget.

The serve command runs the widget HTTP API, lookup-server serves the alarm
catalog over gRPC and console drives a widget session from the terminal.
Settings come from a YAML file, an optional .env file and ALARM_CHAT_*
environment variables, in increasing priority.`,
		SilenceUsage: true,
	}
)

// Execute runs the alarm-chat CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// optionalArg returns args[0] or an empty string.
func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return ""
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default alarm-chat-settings.yaml when present)")
}
