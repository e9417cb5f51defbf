package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// reconcileBackendService binds the backend service to the health check.
// Its selector is derived from the backend template labels, so every
// generation selects the same backends.
func (r *Reconciler) reconcileBackendService(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	hc, err := upstream(pctx, cloud.KindBackendService, cloud.KindHealthCheck)
	if err != nil {
		return current(pctx, cloud.KindBackendService), err
	}

	desired := pctx.Desired.BackendService(hc.URI)
	return (&EnsureOperation[cloud.BackendService]{
		Kind:     cloud.KindBackendService,
		Ref:      desired.Ref(),
		Desired:  desired,
		Labels:   desired.Labels,
		Selector: desired.Selector,
		Get:      client.GetBackendService,
		Insert:   client.InsertBackendService,
		Ignore:   cmpopts.IgnoreFields(cloud.BackendService{}, "SelfLink", "Labels"),
		Observe:  func(bs *cloud.BackendService) (string, string) { return bs.SelfLink, "" },
	}).Execute(pctx, client)
}
