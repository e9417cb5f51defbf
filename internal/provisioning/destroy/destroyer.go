package destroy

import (
	"fmt"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// Destroyer deletes individual chain resources.
type Destroyer struct{}

// NewDestroyer creates a destroyer.
func NewDestroyer() *Destroyer {
	return &Destroyer{}
}

// Delete removes the resource of kind named by the pass's desired state.
// Names are deterministic, so teardown needs no stored record.
func (d *Destroyer) Delete(pctx *provisioning.Context, kind cloud.Kind) (provisioning.ResourceRecord, error) {
	ref := pctx.Desired.Ref(kind)

	client, err := pctx.Clients.For(provisioning.SideOf(kind))
	if err != nil {
		op := &DeleteOperation{Kind: kind, Ref: ref}
		return op.fail(pctx, op.startRecord(pctx), cloud.Classified("credentials", ref.Name, err))
	}

	op := &DeleteOperation{Kind: kind, Ref: ref}
	switch kind {
	case cloud.KindHealthCheck:
		op.Get, op.Delete = probe(client.GetHealthCheck), client.DeleteHealthCheck
	case cloud.KindBackendService:
		op.Get, op.Delete = probe(client.GetBackendService), client.DeleteBackendService
	case cloud.KindForwardingRule:
		op.Get, op.Delete = probe(client.GetForwardingRule), client.DeleteForwardingRule
	case cloud.KindServiceAttachment:
		op.Get, op.Delete = probe(client.GetServiceAttachment), client.DeleteServiceAttachment
	case cloud.KindConsumerEndpoint:
		op.Get, op.Delete = probe(client.GetConsumerEndpoint), client.DeleteConsumerEndpoint
	case cloud.KindDNSRecords:
		op.Get, op.Delete = probe(client.GetDNSRecords), client.DeleteDNSRecords
	case cloud.KindFirewallRule:
		op.Get, op.Delete = probe(client.GetFirewallRule), client.DeleteFirewallRule
	default:
		return provisioning.ResourceRecord{}, cloud.NewClassifiedError(cloud.ErrorValidation, "delete", string(kind),
			fmt.Errorf("unknown resource kind %q", kind))
	}
	return op.Execute(pctx, client)
}
