package memory

import (
	"context"
	"fmt"

	"github.com/imamik/psclink/internal/platform/cloud"
)

type healthCheck struct{ *cloud.HealthCheck }

func (o *healthCheck) ref() cloud.Ref { return o.Ref() }
func (o *healthCheck) references() []string { return nil }
func (o *healthCheck) setSelfLink(l string) { o.SelfLink = l }
func (o *healthCheck) selfLink() string { return o.SelfLink }
func (o *healthCheck) assignIP(string) {}
func (o *healthCheck) clone() object { return &healthCheck{o.DeepCopy()} }

type backendService struct{ *cloud.BackendService }

func (o *backendService) ref() cloud.Ref { return o.Ref() }
func (o *backendService) references() []string { return o.References() }
func (o *backendService) setSelfLink(l string) { o.SelfLink = l }
func (o *backendService) selfLink() string { return o.SelfLink }
func (o *backendService) assignIP(string) {}
func (o *backendService) clone() object { return &backendService{o.DeepCopy()} }

type forwardingRule struct{ *cloud.ForwardingRule }

func (o *forwardingRule) ref() cloud.Ref { return o.Ref() }
func (o *forwardingRule) references() []string { return o.References() }
func (o *forwardingRule) setSelfLink(l string) { o.SelfLink = l }
func (o *forwardingRule) selfLink() string { return o.SelfLink }
func (o *forwardingRule) assignIP(ip string) { o.IPAddress = ip }
func (o *forwardingRule) clone() object { return &forwardingRule{o.DeepCopy()} }

type serviceAttachment struct{ *cloud.ServiceAttachment }

func (o *serviceAttachment) ref() cloud.Ref { return o.Ref() }
func (o *serviceAttachment) references() []string { return o.References() }
func (o *serviceAttachment) setSelfLink(l string) { o.SelfLink = l }
func (o *serviceAttachment) selfLink() string { return o.SelfLink }
func (o *serviceAttachment) assignIP(string) {}
func (o *serviceAttachment) clone() object { return &serviceAttachment{o.DeepCopy()} }

type consumerEndpoint struct{ *cloud.ConsumerEndpoint }

func (o *consumerEndpoint) ref() cloud.Ref { return o.Ref() }
func (o *consumerEndpoint) references() []string { return o.References() }
func (o *consumerEndpoint) setSelfLink(l string) { o.SelfLink = l }
func (o *consumerEndpoint) selfLink() string { return o.SelfLink }
func (o *consumerEndpoint) assignIP(ip string) { o.IPAddress = ip }
func (o *consumerEndpoint) clone() object { return &consumerEndpoint{o.DeepCopy()} }

type dnsRecords struct{ *cloud.DNSRecords }

func (o *dnsRecords) ref() cloud.Ref { return o.Ref() }
func (o *dnsRecords) references() []string { return nil }
func (o *dnsRecords) setSelfLink(l string) { o.SelfLink = l }
func (o *dnsRecords) selfLink() string { return o.SelfLink }
func (o *dnsRecords) assignIP(string) {}
func (o *dnsRecords) clone() object { return &dnsRecords{o.DeepCopy()} }

type firewallRule struct{ *cloud.FirewallRule }

func (o *firewallRule) ref() cloud.Ref { return o.Ref() }
func (o *firewallRule) references() []string { return nil }
func (o *firewallRule) setSelfLink(l string) { o.SelfLink = l }
func (o *firewallRule) selfLink() string { return o.SelfLink }
func (o *firewallRule) assignIP(string) {}
func (o *firewallRule) clone() object { return &firewallRule{o.DeepCopy()} }

func wrap(res any) object {
	switch r := res.(type) {
	case *cloud.HealthCheck:
		return &healthCheck{r.DeepCopy()}
	case *cloud.BackendService:
		return &backendService{r.DeepCopy()}
	case *cloud.ForwardingRule:
		return &forwardingRule{r.DeepCopy()}
	case *cloud.ServiceAttachment:
		return &serviceAttachment{r.DeepCopy()}
	case *cloud.ConsumerEndpoint:
		return &consumerEndpoint{r.DeepCopy()}
	case *cloud.DNSRecords:
		return &dnsRecords{r.DeepCopy()}
	case *cloud.FirewallRule:
		return &firewallRule{r.DeepCopy()}
	default:
		panic(fmt.Sprintf("memory: unsupported resource type %T", res))
	}
}

func (p *Provider) GetHealthCheck(_ context.Context, ref cloud.Ref) (*cloud.HealthCheck, error) {
	obj, err := p.get(cloud.KindHealthCheck, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*healthCheck).HealthCheck, nil
}

func (p *Provider) InsertHealthCheck(_ context.Context, hc *cloud.HealthCheck) (*cloud.Operation, error) {
	return p.insert(cloud.KindHealthCheck, wrap(hc))
}

func (p *Provider) DeleteHealthCheck(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindHealthCheck, ref)
}

func (p *Provider) GetBackendService(_ context.Context, ref cloud.Ref) (*cloud.BackendService, error) {
	obj, err := p.get(cloud.KindBackendService, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*backendService).BackendService, nil
}

func (p *Provider) InsertBackendService(_ context.Context, bs *cloud.BackendService) (*cloud.Operation, error) {
	return p.insert(cloud.KindBackendService, wrap(bs))
}

func (p *Provider) DeleteBackendService(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindBackendService, ref)
}

// GetBackendHealth reports every backend healthy unless overridden by SetBackendHealth.
func (p *Provider) GetBackendHealth(_ context.Context, ref cloud.Ref) (*cloud.BackendHealth, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault("GetBackendHealth"); err != nil {
		return nil, err
	}
	key := ref.String()
	if _, ok := p.objects[cloud.KindBackendService][key]; !ok {
		return nil, cloud.NewNotFound(ref)
	}
	if h, ok := p.health[key]; ok {
		return &h, nil
	}
	return &cloud.BackendHealth{Healthy: p.defaultBackends, Total: p.defaultBackends}, nil
}

func (p *Provider) GetForwardingRule(_ context.Context, ref cloud.Ref) (*cloud.ForwardingRule, error) {
	obj, err := p.get(cloud.KindForwardingRule, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*forwardingRule).ForwardingRule, nil
}

func (p *Provider) InsertForwardingRule(_ context.Context, fr *cloud.ForwardingRule) (*cloud.Operation, error) {
	return p.insert(cloud.KindForwardingRule, wrap(fr))
}

func (p *Provider) DeleteForwardingRule(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindForwardingRule, ref)
}

func (p *Provider) GetServiceAttachment(_ context.Context, ref cloud.Ref) (*cloud.ServiceAttachment, error) {
	obj, err := p.get(cloud.KindServiceAttachment, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*serviceAttachment).ServiceAttachment, nil
}

func (p *Provider) InsertServiceAttachment(_ context.Context, sa *cloud.ServiceAttachment) (*cloud.Operation, error) {
	return p.insert(cloud.KindServiceAttachment, wrap(sa))
}

func (p *Provider) DeleteServiceAttachment(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindServiceAttachment, ref)
}

func (p *Provider) GetConsumerEndpoint(_ context.Context, ref cloud.Ref) (*cloud.ConsumerEndpoint, error) {
	obj, err := p.get(cloud.KindConsumerEndpoint, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*consumerEndpoint).ConsumerEndpoint, nil
}

func (p *Provider) InsertConsumerEndpoint(_ context.Context, ep *cloud.ConsumerEndpoint) (*cloud.Operation, error) {
	return p.insert(cloud.KindConsumerEndpoint, wrap(ep))
}

func (p *Provider) DeleteConsumerEndpoint(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindConsumerEndpoint, ref)
}

func (p *Provider) GetDNSRecords(_ context.Context, ref cloud.Ref) (*cloud.DNSRecords, error) {
	obj, err := p.get(cloud.KindDNSRecords, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*dnsRecords).DNSRecords, nil
}

func (p *Provider) InsertDNSRecords(_ context.Context, zone *cloud.DNSRecords) (*cloud.Operation, error) {
	return p.insert(cloud.KindDNSRecords, wrap(zone))
}

func (p *Provider) DeleteDNSRecords(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindDNSRecords, ref)
}

func (p *Provider) GetFirewallRule(_ context.Context, ref cloud.Ref) (*cloud.FirewallRule, error) {
	obj, err := p.get(cloud.KindFirewallRule, ref)
	if err != nil {
		return nil, err
	}
	return obj.(*firewallRule).FirewallRule, nil
}

func (p *Provider) InsertFirewallRule(_ context.Context, fw *cloud.FirewallRule) (*cloud.Operation, error) {
	return p.insert(cloud.KindFirewallRule, wrap(fw))
}

func (p *Provider) DeleteFirewallRule(_ context.Context, ref cloud.Ref) (*cloud.Operation, error) {
	return p.remove(cloud.KindFirewallRule, ref)
}
