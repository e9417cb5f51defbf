package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/psclink/cmd/psclink/handlers"
)

// Serve returns the serve command.
func Serve() *cobra.Command {
	var configPath, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep every configured cluster converged",
		Long: `Serve runs the reconciliation engine until it receives SIGINT or
SIGTERM. Failed passes are retried according to the retry policy and
converged chains are re-checked on the resync interval.

Example:
  psclink serve -c psclink.yaml --metrics-bind-address :8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath, metricsAddr)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")

	return cmd
}
