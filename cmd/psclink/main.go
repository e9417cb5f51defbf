// Package main is the entry point for the psclink CLI.
//
// psclink provisions and maintains the chain of cloud resources that
// exposes a managed cluster to a customer network over Private Service
// Connect: health check, backend service, forwarding rule, service
// attachment, customer endpoint and DNS record, plus the customer-side
// firewall rule.
//
// Commands: reconcile, teardown, status, serve, version.
//
// For detailed usage information, run:
//
//	psclink --help
package main

import (
	"os"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/imamik/psclink/cmd/psclink/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	opts := zap.Options{
		Development: os.Getenv("DEBUG") == "true",
	}
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		ctrl.Log.WithName("setup").Error(err, "command failed")
		os.Exit(1)
	}
}
