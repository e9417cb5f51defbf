package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/psclink/cmd/psclink/handlers"
)

// Teardown returns the teardown command.
func Teardown() *cobra.Command {
	var configPath, clusterID string

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete the resource chain of each configured cluster",
		Long: `Teardown deletes every resource of the selected clusters.

Resources are deleted in reverse dependency order, starting with the DNS
record and ending with the health check. A failure on one resource does
not stop the others; every failure is reported.

Example:
  psclink teardown -c psclink.yaml --cluster c1

WARNING: Customers lose connectivity to the cluster immediately.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Teardown(cmd.Context(), configPath, clusterID)
		},
	}

	configFlag(cmd, &configPath)
	clusterFlag(cmd, &clusterID)

	return cmd
}
