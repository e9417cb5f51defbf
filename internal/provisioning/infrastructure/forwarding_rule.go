package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

func (r *Reconciler) reconcileForwardingRule(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	bs, err := upstream(pctx, cloud.KindForwardingRule, cloud.KindBackendService)
	if err != nil {
		return current(pctx, cloud.KindForwardingRule), err
	}

	desired := pctx.Desired.ForwardingRule(bs.URI)
	return (&EnsureOperation[cloud.ForwardingRule]{
		Kind:    cloud.KindForwardingRule,
		Ref:     desired.Ref(),
		Desired: desired,
		Labels:  desired.Labels,
		Get:     client.GetForwardingRule,
		Insert:  client.InsertForwardingRule,
		Ignore:  cmpopts.IgnoreFields(cloud.ForwardingRule{}, "SelfLink", "Labels", "IPAddress"),
		Observe: func(fr *cloud.ForwardingRule) (string, string) { return fr.SelfLink, fr.IPAddress },
	}).Execute(pctx, client)
}
