package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-chat/internal/service/console"
)

var (
	// sessionID overrides the detected user@host session id.
	sessionID string
	// resume starts the console session in the main menu.
	resume bool
	// verbose keeps informational logs on stderr.
	verbose bool

	// consoleCmd drives a widget session from the terminal.
	consoleCmd = &cobra.Command{
		Use:   "console",
		Short: "Chat with the widget from the terminal.",
		Long: `Runs one widget session on stdin/stdout.

Type messages as a visitor would. /open, /close and /minimize control the
panel; bot messages received while it is closed are counted as unread and
shown when it is opened again. /quit ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return console.Run(ctx, &console.Options{
				ConfigPath: configPath,
				SessionID:  sessionID,
				Resume:     resume,
				Verbose:    verbose,
				In:         cmd.InOrStdin(),
				Out:        cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	consoleCmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (default user@host)")
	consoleCmd.Flags().BoolVar(&resume, "resume", false, "start in the main menu as if returning from the detail view")
	consoleCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log informational messages to stderr")
	rootCmd.AddCommand(consoleCmd)
}
