package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/psclink/cmd/psclink/handlers"
)

// Reconcile returns the reconcile command.
func Reconcile() *cobra.Command {
	var configPath, clusterID, output string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Converge the resource chain of each configured cluster once",
		Long: `Reconcile runs one pass for every request in the configuration.

Resources are created in dependency order:
  - Health check
  - Backend service
  - Forwarding rule
  - Service attachment
  - Customer endpoint
  - DNS record

The customer firewall rule is created alongside the chain. Resources that
already exist are adopted; nothing is recreated.

Example:
  psclink reconcile -c psclink.yaml --cluster c1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Reconcile(cmd.Context(), configPath, clusterID, output)
		},
	}

	configFlag(cmd, &configPath)
	clusterFlag(cmd, &clusterID)
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")

	return cmd
}
