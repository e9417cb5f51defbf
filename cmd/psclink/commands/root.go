// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the psclink CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "psclink",
		Short:        "Provision Private Service Connect chains for managed clusters",
		SilenceUsage: true,
	}

	cmd.AddCommand(Reconcile())
	cmd.AddCommand(Teardown())
	cmd.AddCommand(Status())
	cmd.AddCommand(Serve())
	cmd.AddCommand(Version())

	return cmd
}

func configFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Path to engine configuration file (required)")
	_ = cmd.MarkFlagRequired("config")
}

func clusterFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "cluster", "", "Only act on this cluster id")
}
