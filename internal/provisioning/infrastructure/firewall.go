package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// reconcileFirewallRule has no upstream and may run alongside the chain.
func (r *Reconciler) reconcileFirewallRule(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	desired := pctx.Desired.FirewallRule()
	return (&EnsureOperation[cloud.FirewallRule]{
		Kind:    cloud.KindFirewallRule,
		Ref:     desired.Ref(),
		Desired: desired,
		Labels:  desired.Labels,
		Get:     client.GetFirewallRule,
		Insert:  client.InsertFirewallRule,
		Ignore:  cmpopts.IgnoreFields(cloud.FirewallRule{}, "SelfLink", "Labels"),
		Observe: func(fw *cloud.FirewallRule) (string, string) { return fw.SelfLink, "" },
	}).Execute(pctx, client)
}
