package handlers

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/psclink/internal/platform"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/provisioning/status"
	"github.com/imamik/psclink/internal/store"
)

// Reconcile handles the reconcile command.
//
// It runs one synchronous pass per configured request, starting from the
// stored records, and prints the resulting report. A failing request does
// not stop the others; all failures are returned together.
func Reconcile(ctx context.Context, configPath, clusterID, output string) error {
	cfg, p, s, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	reqs, err := selectRequests(cfg, clusterID)
	if err != nil {
		return err
	}

	var errs []error
	for _, req := range reqs {
		if err := reconcileOne(ctx, p, s, req, output); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func reconcileOne(ctx context.Context, p platform.Platform, s store.Store, req provisioning.Request, output string) error {
	logger := log.FromContext(ctx).WithValues("clusterId", req.ClusterID, "generation", req.Generation)
	records, err := loadRecords(ctx, s, req.ClusterID)
	if err != nil {
		return err
	}

	logger.Info("reconciling")
	out := p.ReconcileInfra(ctx, req, records, provisioning.WithObserver(provisioning.NewLogObserver(logger)))

	report := status.Report{
		ClusterID:  req.ClusterID,
		Generation: req.Generation,
		Records:    out.Records,
	}
	status.SetCondition(&report.Conditions, status.Publish(out.Records, req.Generation))
	if err := printReport(report, output); err != nil {
		return err
	}

	if out.Err != nil {
		return fmt.Errorf("reconcile of %s failed: %w", req.ClusterID, out.Err)
	}
	logger.Info("chain ready")
	return nil
}

func printReport(report status.Report, output string) error {
	data, err := report.Format(output)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
