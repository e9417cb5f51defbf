package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/psclink/cmd/psclink/handlers"
)

// Status returns the status command.
func Status() *cobra.Command {
	var (
		configPath string
		clusterID  string
		output     string
		probe      bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored state of each configured cluster",
		Long: `Status prints the stored resource records and the availability
condition of the selected clusters. Nothing is created or deleted.

Example:
  psclink status -c psclink.yaml -o json --probe`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath, clusterID, output, probe)
		},
	}

	configFlag(cmd, &configPath)
	clusterFlag(cmd, &clusterID)
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&probe, "probe", false, "Also read backend health")

	return cmd
}
