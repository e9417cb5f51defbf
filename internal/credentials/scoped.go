package credentials

import (
	"context"
	"fmt"

	"github.com/imamik/psclink/internal/platform/cloud"
)

// scopedClient rejects calls that target any project other than its own.
type scopedClient struct {
	inner   cloud.Client
	project string
}

func (c *scopedClient) check(project string) error {
	if project != c.project {
		return &cloud.APIError{
			Code:    403,
			Reason:  "forbidden",
			Message: fmt.Sprintf("client for project %q cannot act on project %q", c.project, project),
		}
	}
	return nil
}

func (c *scopedClient) GetHealthCheck(ctx context.Context, ref cloud.Ref) (*cloud.HealthCheck, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetHealthCheck(ctx, ref)
}

func (c *scopedClient) InsertHealthCheck(ctx context.Context, hc *cloud.HealthCheck) (*cloud.Operation, error) {
	if err := c.check(hc.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertHealthCheck(ctx, hc)
}

func (c *scopedClient) DeleteHealthCheck(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteHealthCheck(ctx, ref)
}

func (c *scopedClient) GetBackendService(ctx context.Context, ref cloud.Ref) (*cloud.BackendService, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetBackendService(ctx, ref)
}

func (c *scopedClient) InsertBackendService(ctx context.Context, bs *cloud.BackendService) (*cloud.Operation, error) {
	if err := c.check(bs.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertBackendService(ctx, bs)
}

func (c *scopedClient) DeleteBackendService(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteBackendService(ctx, ref)
}

func (c *scopedClient) GetBackendHealth(ctx context.Context, ref cloud.Ref) (*cloud.BackendHealth, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetBackendHealth(ctx, ref)
}

func (c *scopedClient) GetForwardingRule(ctx context.Context, ref cloud.Ref) (*cloud.ForwardingRule, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetForwardingRule(ctx, ref)
}

func (c *scopedClient) InsertForwardingRule(ctx context.Context, fr *cloud.ForwardingRule) (*cloud.Operation, error) {
	if err := c.check(fr.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertForwardingRule(ctx, fr)
}

func (c *scopedClient) DeleteForwardingRule(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteForwardingRule(ctx, ref)
}

func (c *scopedClient) GetServiceAttachment(ctx context.Context, ref cloud.Ref) (*cloud.ServiceAttachment, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetServiceAttachment(ctx, ref)
}

func (c *scopedClient) InsertServiceAttachment(ctx context.Context, sa *cloud.ServiceAttachment) (*cloud.Operation, error) {
	if err := c.check(sa.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertServiceAttachment(ctx, sa)
}

func (c *scopedClient) DeleteServiceAttachment(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteServiceAttachment(ctx, ref)
}

func (c *scopedClient) GetConsumerEndpoint(ctx context.Context, ref cloud.Ref) (*cloud.ConsumerEndpoint, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetConsumerEndpoint(ctx, ref)
}

func (c *scopedClient) InsertConsumerEndpoint(ctx context.Context, ep *cloud.ConsumerEndpoint) (*cloud.Operation, error) {
	if err := c.check(ep.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertConsumerEndpoint(ctx, ep)
}

func (c *scopedClient) DeleteConsumerEndpoint(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteConsumerEndpoint(ctx, ref)
}

func (c *scopedClient) GetDNSRecords(ctx context.Context, ref cloud.Ref) (*cloud.DNSRecords, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetDNSRecords(ctx, ref)
}

func (c *scopedClient) InsertDNSRecords(ctx context.Context, zone *cloud.DNSRecords) (*cloud.Operation, error) {
	if err := c.check(zone.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertDNSRecords(ctx, zone)
}

func (c *scopedClient) DeleteDNSRecords(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteDNSRecords(ctx, ref)
}

func (c *scopedClient) GetFirewallRule(ctx context.Context, ref cloud.Ref) (*cloud.FirewallRule, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.GetFirewallRule(ctx, ref)
}

func (c *scopedClient) InsertFirewallRule(ctx context.Context, fw *cloud.FirewallRule) (*cloud.Operation, error) {
	if err := c.check(fw.Project); err != nil {
		return nil, err
	}
	return c.inner.InsertFirewallRule(ctx, fw)
}

func (c *scopedClient) DeleteFirewallRule(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	if err := c.check(ref.Project); err != nil {
		return nil, err
	}
	return c.inner.DeleteFirewallRule(ctx, ref)
}

func (c *scopedClient) GetOperation(ctx context.Context, project string, scope cloud.Scope, id string) (*cloud.Operation, error) {
	if err := c.check(project); err != nil {
		return nil, err
	}
	return c.inner.GetOperation(ctx, project, scope, id)
}

var _ cloud.Client = (*scopedClient)(nil)
