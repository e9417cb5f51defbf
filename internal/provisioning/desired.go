package provisioning

import (
	"sort"
	"strconv"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/util/labels"
	"github.com/imamik/psclink/internal/util/naming"
)

// Resource defaults applied to every chain.
const (
	healthCheckProtocol           = "TCP"
	healthCheckIntervalSec        = 10
	healthCheckTimeoutSec         = 5
	healthCheckHealthyThreshold   = 2
	healthCheckUnhealthyThreshold = 3

	schemeInternal = "INTERNAL"
	protocolTCP    = "TCP"

	AcceptAutomatic = "ACCEPT_AUTOMATIC"
	AcceptManual    = "ACCEPT_MANUAL"
)

// DesiredState is the immutable desired value of every chain node for one
// request generation. It is computed at the start of each pass and never
// derived from previously stored labels or selectors. Accessors return
// fresh copies, so callers cannot mutate it.
type DesiredState struct {
	clusterID  string
	generation int64
	region     string

	healthCheck       cloud.HealthCheck
	backendService    cloud.BackendService
	forwardingRule    cloud.ForwardingRule
	serviceAttachment cloud.ServiceAttachment
	consumerEndpoint  cloud.ConsumerEndpoint
	dnsRecords        cloud.DNSRecords
	firewallRule      cloud.FirewallRule
	templateLabels    map[string]string
}

// ComputeDesired builds the desired state from a request. The request is
// expected to be defaulted and validated.
func ComputeDesired(req Request) DesiredState {
	id, gen := req.ClusterID, req.Generation
	resourceLabels := func(kind cloud.Kind) map[string]string {
		return labels.NewLabelBuilder(id).WithKind(kind.Label()).WithGeneration(gen).Build()
	}

	ports := portStrings(req.ForwardingRulePorts)

	connection := AcceptAutomatic
	if len(req.ConsumerAcceptList) > 0 {
		connection = AcceptManual
	}

	firewallPorts := portStrings(append(append([]int(nil), req.ForwardingRulePorts...), req.HealthCheckPort))
	sourceRanges := append(append([]string(nil), req.HealthCheckSourceRanges...), req.AllowedSourceRanges...)

	template := templateLabels(req)

	return DesiredState{
		clusterID:  id,
		generation: gen,
		region:     req.Region,
		healthCheck: cloud.HealthCheck{
			Name:               naming.HealthCheck(id),
			Project:            req.ManagementProject,
			Protocol:           healthCheckProtocol,
			Port:               int32(req.HealthCheckPort),
			CheckIntervalSec:   healthCheckIntervalSec,
			TimeoutSec:         healthCheckTimeoutSec,
			HealthyThreshold:   healthCheckHealthyThreshold,
			UnhealthyThreshold: healthCheckUnhealthyThreshold,
			Labels:             resourceLabels(cloud.KindHealthCheck),
		},
		backendService: cloud.BackendService{
			Name:                naming.BackendService(id),
			Project:             req.ManagementProject,
			Region:              req.Region,
			LoadBalancingScheme: schemeInternal,
			Protocol:            protocolTCP,
			Network:             req.Network,
			Selector:            labels.Copy(template),
			Labels:              resourceLabels(cloud.KindBackendService),
		},
		forwardingRule: cloud.ForwardingRule{
			Name:                naming.ForwardingRule(id),
			Project:             req.ManagementProject,
			Region:              req.Region,
			LoadBalancingScheme: schemeInternal,
			Network:             req.Network,
			Subnetwork:          req.Subnet,
			Ports:               ports,
			Labels:              resourceLabels(cloud.KindForwardingRule),
		},
		serviceAttachment: cloud.ServiceAttachment{
			Name:                 naming.ServiceAttachment(id),
			Project:              req.ManagementProject,
			Region:               req.Region,
			ConnectionPreference: connection,
			NATSubnets:           []string{req.NATSubnet},
			ConsumerAcceptList:   append([]string(nil), req.ConsumerAcceptList...),
			Labels:               resourceLabels(cloud.KindServiceAttachment),
		},
		consumerEndpoint: cloud.ConsumerEndpoint{
			Name:       naming.ConsumerEndpoint(id),
			Project:    req.CustomerProject,
			Network:    req.ConsumerNetwork,
			Subnetwork: req.ConsumerSubnet,
			Labels:     resourceLabels(cloud.KindConsumerEndpoint),
		},
		dnsRecords: cloud.DNSRecords{
			Name:    naming.DNSZone(id),
			Project: req.CustomerProject,
			DNSName: req.DNSDomain,
			Network: req.ConsumerNetwork,
			Labels:  resourceLabels(cloud.KindDNSRecords),
		},
		firewallRule: cloud.FirewallRule{
			Name:         naming.Firewall(id),
			Project:      req.CustomerProject,
			Network:      req.ConsumerNetwork,
			Direction:    "INGRESS",
			Protocol:     "tcp",
			Ports:        firewallPorts,
			SourceRanges: sourceRanges,
			Labels:       resourceLabels(cloud.KindFirewallRule),
		},
		templateLabels: template,
	}
}

// templateLabels is the label set stamped on backend instance templates.
// The backend service selector is computed from the same inputs.
func templateLabels(req Request) map[string]string {
	return labels.NewLabelBuilder(req.ClusterID).Merge(req.BackendLabels).Build()
}

func portStrings(ports []int) []string {
	seen := make(map[int]bool, len(ports))
	uniq := make([]int, 0, len(ports))
	for _, p := range ports {
		if !seen[p] {
			seen[p] = true
			uniq = append(uniq, p)
		}
	}
	sort.Ints(uniq)
	out := make([]string, len(uniq))
	for i, p := range uniq {
		out[i] = strconv.Itoa(p)
	}
	return out
}

// ClusterID returns the cluster id the state was computed for.
func (d DesiredState) ClusterID() string { return d.clusterID }

// Generation returns the request generation the state was computed for.
func (d DesiredState) Generation() int64 { return d.generation }

// Region returns the region of regional resources.
func (d DesiredState) Region() string { return d.region }

// TemplateLabels returns the backend instance template labels.
func (d DesiredState) TemplateLabels() map[string]string {
	return labels.Copy(d.templateLabels)
}

// Selector returns the backend service selector.
func (d DesiredState) Selector() map[string]string {
	return labels.Copy(d.backendService.Selector)
}

// Labels returns the resource labels for kind.
func (d DesiredState) Labels(kind cloud.Kind) map[string]string {
	return labels.NewLabelBuilder(d.clusterID).WithKind(kind.Label()).WithGeneration(d.generation).Build()
}

// Name returns the deterministic name of kind.
func (d DesiredState) Name(kind cloud.Kind) string {
	switch kind {
	case cloud.KindHealthCheck:
		return d.healthCheck.Name
	case cloud.KindBackendService:
		return d.backendService.Name
	case cloud.KindForwardingRule:
		return d.forwardingRule.Name
	case cloud.KindServiceAttachment:
		return d.serviceAttachment.Name
	case cloud.KindConsumerEndpoint:
		return d.consumerEndpoint.Name
	case cloud.KindDNSRecords:
		return d.dnsRecords.Name
	case cloud.KindFirewallRule:
		return d.firewallRule.Name
	default:
		return ""
	}
}

// Ref returns the provider identity of kind.
func (d DesiredState) Ref(kind cloud.Kind) cloud.Ref {
	switch kind {
	case cloud.KindHealthCheck:
		return d.healthCheck.Ref()
	case cloud.KindBackendService:
		return d.backendService.Ref()
	case cloud.KindForwardingRule:
		return d.forwardingRule.Ref()
	case cloud.KindServiceAttachment:
		return d.serviceAttachment.Ref()
	case cloud.KindConsumerEndpoint:
		return d.consumerEndpoint.Ref()
	case cloud.KindDNSRecords:
		return d.dnsRecords.Ref()
	default:
		return d.firewallRule.Ref()
	}
}

// HealthCheck returns the desired health check.
func (d DesiredState) HealthCheck() *cloud.HealthCheck {
	return d.healthCheck.DeepCopy()
}

// BackendService returns the desired backend service bound to a health check link.
func (d DesiredState) BackendService(healthCheck string) *cloud.BackendService {
	bs := d.backendService.DeepCopy()
	bs.HealthCheck = healthCheck
	return bs
}

// ForwardingRule returns the desired forwarding rule bound to a backend service link.
func (d DesiredState) ForwardingRule(backendService string) *cloud.ForwardingRule {
	fr := d.forwardingRule.DeepCopy()
	fr.BackendService = backendService
	return fr
}

// ServiceAttachment returns the desired attachment bound to a forwarding rule link.
func (d DesiredState) ServiceAttachment(forwardingRule string) *cloud.ServiceAttachment {
	sa := d.serviceAttachment.DeepCopy()
	sa.TargetService = forwardingRule
	return sa
}

// ConsumerEndpoint returns the desired endpoint bound to a service attachment link.
func (d DesiredState) ConsumerEndpoint(attachment string) *cloud.ConsumerEndpoint {
	ep := d.consumerEndpoint.DeepCopy()
	ep.Target = attachment
	return ep
}

// DNSRecords returns the desired zone with records resolving to the endpoint address.
func (d DesiredState) DNSRecords(endpointIP string) *cloud.DNSRecords {
	zone := d.dnsRecords.DeepCopy()
	zone.Records = []cloud.DNSRecord{
		{Name: "api." + zone.DNSName, Type: "A", TTL: DefaultDNSTTL, Data: []string{endpointIP}},
		{Name: "*.apps." + zone.DNSName, Type: "A", TTL: DefaultDNSTTL, Data: []string{endpointIP}},
	}
	return zone
}

// FirewallRule returns the desired firewall rule.
func (d DesiredState) FirewallRule() *cloud.FirewallRule {
	return d.firewallRule.DeepCopy()
}
