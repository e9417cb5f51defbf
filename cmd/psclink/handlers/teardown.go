package handlers

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/psclink/internal/provisioning"
)

// Teardown handles the teardown command.
//
// It deletes every resource of the selected requests in reverse chain
// order and removes their stored records once all of them are gone.
func Teardown(ctx context.Context, configPath, clusterID string) error {
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
		logger := log.FromContext(ctx).WithValues("clusterId", req.ClusterID)
		records, err := loadRecords(ctx, s, req.ClusterID)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		logger.Info("tearing down")
		out := p.Teardown(ctx, req, records, provisioning.WithObserver(provisioning.NewLogObserver(logger)))
		if out.Err != nil {
			errs = append(errs, fmt.Errorf("teardown of %s failed: %w", req.ClusterID, out.Err))
			continue
		}
		if err := s.Delete(ctx, req.ClusterID); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete records of %s: %w", req.ClusterID, err))
			continue
		}
		fmt.Fprintf(stdout, "Cluster %s torn down\n", req.ClusterID)
	}
	return errors.Join(errs...)
}
