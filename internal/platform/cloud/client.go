package cloud

import "context"

// HealthCheckManager manages health checks.
type HealthCheckManager interface {
	GetHealthCheck(ctx context.Context, ref Ref) (*HealthCheck, error)
	InsertHealthCheck(ctx context.Context, hc *HealthCheck) (*Operation, error)
	DeleteHealthCheck(ctx context.Context, ref Ref) (*Operation, error)
}

// BackendServiceManager manages regional backend services.
type BackendServiceManager interface {
	GetBackendService(ctx context.Context, ref Ref) (*BackendService, error)
	InsertBackendService(ctx context.Context, bs *BackendService) (*Operation, error)
	DeleteBackendService(ctx context.Context, ref Ref) (*Operation, error)
	// GetBackendHealth is read-only and used by health monitoring.
	GetBackendHealth(ctx context.Context, ref Ref) (*BackendHealth, error)
}

// ForwardingRuleManager manages internal forwarding rules.
type ForwardingRuleManager interface {
	GetForwardingRule(ctx context.Context, ref Ref) (*ForwardingRule, error)
	InsertForwardingRule(ctx context.Context, fr *ForwardingRule) (*Operation, error)
	DeleteForwardingRule(ctx context.Context, ref Ref) (*Operation, error)
}

// ServiceAttachmentManager manages service attachments.
type ServiceAttachmentManager interface {
	GetServiceAttachment(ctx context.Context, ref Ref) (*ServiceAttachment, error)
	InsertServiceAttachment(ctx context.Context, sa *ServiceAttachment) (*Operation, error)
	DeleteServiceAttachment(ctx context.Context, ref Ref) (*Operation, error)
}

// ConsumerEndpointManager manages consumer endpoints.
type ConsumerEndpointManager interface {
	GetConsumerEndpoint(ctx context.Context, ref Ref) (*ConsumerEndpoint, error)
	InsertConsumerEndpoint(ctx context.Context, ep *ConsumerEndpoint) (*Operation, error)
	DeleteConsumerEndpoint(ctx context.Context, ref Ref) (*Operation, error)
}

// DNSManager manages private zones and their record sets.
type DNSManager interface {
	GetDNSRecords(ctx context.Context, ref Ref) (*DNSRecords, error)
	InsertDNSRecords(ctx context.Context, zone *DNSRecords) (*Operation, error)
	DeleteDNSRecords(ctx context.Context, ref Ref) (*Operation, error)
}

// FirewallManager manages firewall rules.
type FirewallManager interface {
	GetFirewallRule(ctx context.Context, ref Ref) (*FirewallRule, error)
	InsertFirewallRule(ctx context.Context, fw *FirewallRule) (*Operation, error)
	DeleteFirewallRule(ctx context.Context, ref Ref) (*Operation, error)
}

// OperationGetter reads the state of asynchronous operations.
type OperationGetter interface {
	GetOperation(ctx context.Context, project string, scope Scope, id string) (*Operation, error)
}

// Client is the full provider surface used by the engine.
//
// Get calls return an error that classifies as NotFound when the resource
// is absent. Insert and Delete return an operation handle that must be
// waited on before the change is visible.
type Client interface {
	HealthCheckManager
	BackendServiceManager
	ForwardingRuleManager
	ServiceAttachmentManager
	ConsumerEndpointManager
	DNSManager
	FirewallManager
	OperationGetter
}
