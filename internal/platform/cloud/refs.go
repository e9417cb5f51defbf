package cloud

// Ref returns the identity of the health check.
func (in *HealthCheck) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindHealthCheck, ""), Name: in.Name}
}

// Ref returns the identity of the backend service.
func (in *BackendService) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindBackendService, in.Region), Name: in.Name}
}

// References lists the self-links this resource depends on.
func (in *BackendService) References() []string {
	return []string{in.HealthCheck}
}

// Ref returns the identity of the forwarding rule.
func (in *ForwardingRule) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindForwardingRule, in.Region), Name: in.Name}
}

// References lists the self-links this resource depends on.
func (in *ForwardingRule) References() []string {
	return []string{in.BackendService}
}

// Ref returns the identity of the service attachment.
func (in *ServiceAttachment) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindServiceAttachment, in.Region), Name: in.Name}
}

// References lists the self-links this resource depends on.
func (in *ServiceAttachment) References() []string {
	return []string{in.TargetService}
}

// Ref returns the identity of the consumer endpoint, a global address.
func (in *ConsumerEndpoint) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindConsumerEndpoint, ""), Name: in.Name}
}

// References lists the self-links this resource depends on.
func (in *ConsumerEndpoint) References() []string {
	return []string{in.Target}
}

// Ref returns the identity of the private zone.
func (in *DNSRecords) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindDNSRecords, ""), Name: in.Name}
}

// Ref returns the identity of the firewall rule.
func (in *FirewallRule) Ref() Ref {
	return Ref{Project: in.Project, Scope: ScopeOf(KindFirewallRule, ""), Name: in.Name}
}

// ScopeOf returns the operation scope used for a kind in region.
func ScopeOf(kind Kind, region string) Scope {
	switch kind {
	case KindBackendService, KindForwardingRule, KindServiceAttachment:
		return Regional(region)
	case KindDNSRecords:
		return ProjectScope()
	default:
		return Global()
	}
}
