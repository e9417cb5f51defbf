package infrastructure

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// reconcileConsumerEndpoint creates the endpoint in the customer project.
// The attachment link crosses the project boundary; the endpoint itself is
// written with customer credentials only.
func (r *Reconciler) reconcileConsumerEndpoint(pctx *provisioning.Context, client cloud.Client) (provisioning.ResourceRecord, error) {
	sa, err := upstream(pctx, cloud.KindConsumerEndpoint, cloud.KindServiceAttachment)
	if err != nil {
		return current(pctx, cloud.KindConsumerEndpoint), err
	}

	desired := pctx.Desired.ConsumerEndpoint(sa.URI)
	return (&EnsureOperation[cloud.ConsumerEndpoint]{
		Kind:    cloud.KindConsumerEndpoint,
		Ref:     desired.Ref(),
		Desired: desired,
		Labels:  desired.Labels,
		Get:     client.GetConsumerEndpoint,
		Insert:  client.InsertConsumerEndpoint,
		Ignore:  cmpopts.IgnoreFields(cloud.ConsumerEndpoint{}, "SelfLink", "Labels", "IPAddress"),
		Observe: func(ep *cloud.ConsumerEndpoint) (string, string) { return ep.SelfLink, ep.IPAddress },
	}).Execute(pctx, client)
}
