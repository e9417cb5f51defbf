package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/psclink/internal/operator/controller"
	"github.com/imamik/psclink/internal/provisioning/status"
)

// Status handles the status command.
//
// It publishes the stored records of the selected requests without
// mutating anything. With probe set, the backend health of each chain is
// read as well.
func Status(ctx context.Context, configPath, clusterID, output string, probe bool) error {
	cfg, p, s, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	reqs, err := selectRequests(cfg, clusterID)
	if err != nil {
		return err
	}

	var monitor *controller.HealthMonitor
	if probe {
		monitor = controller.NewHealthMonitor(p, cfg.HealthInterval)
	}

	var errs []error
	for _, req := range reqs {
		records, err := s.Load(ctx, req.ClusterID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load records of %s: %w", req.ClusterID, err))
			continue
		}
		report := status.Report{
			ClusterID:  req.ClusterID,
			Generation: req.Generation,
			Records:    records,
		}
		status.SetCondition(&report.Conditions, status.Publish(records, req.Generation))
		if monitor != nil {
			snap := monitor.Probe(ctx, req)
			report.Health = &snap
		}
		if err := printReport(report, output); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
