package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

func (r *Reconciler) reconcileDNSRecords(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	ep, err := upstream(pctx, cloud.KindDNSRecords, cloud.KindConsumerEndpoint)
	if err != nil {
		return current(pctx, cloud.KindDNSRecords), err
	}

	desired := pctx.Desired.DNSRecords(ep.IPAddress)
	return (&EnsureOperation[cloud.DNSRecords]{
		Kind:    cloud.KindDNSRecords,
		Ref:     desired.Ref(),
		Desired: desired,
		Labels:  desired.Labels,
		Get:     client.GetDNSRecords,
		Insert:  client.InsertDNSRecords,
		Ignore:  cmpopts.IgnoreFields(cloud.DNSRecords{}, "SelfLink", "Labels"),
		Observe: func(zone *cloud.DNSRecords) (string, string) { return zone.SelfLink, "" },
	}).Execute(pctx, client)
}
