package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

func (r *Reconciler) reconcileHealthCheck(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	desired := pctx.Desired.HealthCheck()
	return (&EnsureOperation[cloud.HealthCheck]{
		Kind:    cloud.KindHealthCheck,
		Ref:     desired.Ref(),
		Desired: desired,
		Labels:  desired.Labels,
		Get:     client.GetHealthCheck,
		Insert:  client.InsertHealthCheck,
		Ignore:  cmpopts.IgnoreFields(cloud.HealthCheck{}, "SelfLink", "Labels"),
		Observe: func(hc *cloud.HealthCheck) (string, string) { return hc.SelfLink, "" },
	}).Execute(pctx, client)
}
