package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

func (r *Reconciler) reconcileServiceAttachment(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	fr, err := upstream(pctx, cloud.KindServiceAttachment, cloud.KindForwardingRule)
	if err != nil {
		return current(pctx, cloud.KindServiceAttachment), err
	}

	desired := pctx.Desired.ServiceAttachment(fr.URI)
	return (&EnsureOperation[cloud.ServiceAttachment]{
		Kind:    cloud.KindServiceAttachment,
		Ref:     desired.Ref(),
		Desired: desired,
		Labels:  desired.Labels,
		Get:     client.GetServiceAttachment,
		Insert:  client.InsertServiceAttachment,
		Ignore:  cmpopts.IgnoreFields(cloud.ServiceAttachment{}, "SelfLink", "Labels"),
		Observe: func(sa *cloud.ServiceAttachment) (string, string) { return sa.SelfLink, "" },
	}).Execute(pctx, client)
}
