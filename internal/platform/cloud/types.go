package cloud

import (
	"fmt"
	"time"
)

// Kind names one node of the chain.
type Kind string

// Chain node kinds.
const (
	KindHealthCheck       Kind = "HealthCheck"
	KindBackendService    Kind = "BackendService"
	KindForwardingRule    Kind = "ForwardingRule"
	KindServiceAttachment Kind = "ServiceAttachment"
	KindConsumerEndpoint  Kind = "ConsumerEndpoint"
	KindDNSRecords        Kind = "DNSRecords"
	KindFirewallRule      Kind = "FirewallRule"
)

// Label returns the kebab-case form used in labels and metrics.
func (k Kind) Label() string {
	switch k {
	case KindHealthCheck:
		return "health-check"
	case KindBackendService:
		return "backend-service"
	case KindForwardingRule:
		return "forwarding-rule"
	case KindServiceAttachment:
		return "service-attachment"
	case KindConsumerEndpoint:
		return "consumer-endpoint"
	case KindDNSRecords:
		return "dns-records"
	case KindFirewallRule:
		return "firewall-rule"
	default:
		return string(k)
	}
}

// ScopeKind is the level at which an operation is tracked by the provider.
type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeRegional ScopeKind = "regional"
	ScopeProject  ScopeKind = "project"
)

// Scope locates an operation.
type Scope struct {
	Kind   ScopeKind `json:"kind"`
	Region string    `json:"region,omitempty"`
}

// Global returns the global scope.
func Global() Scope { return Scope{Kind: ScopeGlobal} }

// Regional returns the scope of a region.
func Regional(region string) Scope { return Scope{Kind: ScopeRegional, Region: region} }

// ProjectScope returns the project-level scope used by zone-less services such as DNS.
func ProjectScope() Scope { return Scope{Kind: ScopeProject} }

func (s Scope) String() string {
	if s.Kind == ScopeRegional {
		return fmt.Sprintf("regions/%s", s.Region)
	}
	return string(s.Kind)
}

// Ref identifies a resource by project, scope and name.
type Ref struct {
	Project string
	Scope   Scope
	Name    string
}

func (r Ref) String() string {
	return fmt.Sprintf("projects/%s/%s/%s", r.Project, r.Scope, r.Name)
}

// OperationStatus is the lifecycle of an asynchronous provider operation.
type OperationStatus string

const (
	OperationPending OperationStatus = "PENDING"
	OperationRunning OperationStatus = "RUNNING"
	OperationDone    OperationStatus = "DONE"
)

// Operation is a handle to an in-flight asynchronous provider operation.
// It is discarded once a terminal state has been observed.
type Operation struct {
	ID         string
	Project    string
	Scope      Scope
	Kind       Kind
	TargetLink string
	Status     OperationStatus
	Error      *APIError
	InsertTime time.Time
}

// Done reports whether the operation reached a terminal state.
func (o *Operation) Done() bool {
	return o != nil && o.Status == OperationDone
}

// HealthCheck probes backends of the backend service.
type HealthCheck struct {
	Name               string
	Project            string
	Protocol           string
	Port               int32
	CheckIntervalSec   int32
	TimeoutSec         int32
	HealthyThreshold   int32
	UnhealthyThreshold int32
	Labels             map[string]string

	SelfLink string
}

// BackendService groups the backends selected by Selector behind the load balancer.
type BackendService struct {
	Name                string
	Project             string
	Region              string
	LoadBalancingScheme string
	Protocol            string
	Network             string
	HealthCheck         string
	Selector            map[string]string
	Labels              map[string]string

	SelfLink string
}

// ForwardingRule is the internal load balancer frontend.
type ForwardingRule struct {
	Name                string
	Project             string
	Region              string
	LoadBalancingScheme string
	BackendService      string
	Network             string
	Subnetwork          string
	Ports               []string
	Labels              map[string]string

	SelfLink  string
	IPAddress string
}

// ServiceAttachment publishes the forwarding rule for private consumption.
type ServiceAttachment struct {
	Name                 string
	Project              string
	Region               string
	TargetService        string
	ConnectionPreference string
	NATSubnets           []string
	ConsumerAcceptList   []string
	Labels               map[string]string

	SelfLink string
}

// ConsumerEndpoint is the customer-side address connected to a service attachment.
type ConsumerEndpoint struct {
	Name       string
	Project    string
	Network    string
	Subnetwork string
	Target     string
	Labels     map[string]string

	SelfLink  string
	IPAddress string
}

// DNSRecord is one record set inside a private zone.
type DNSRecord struct {
	Name string
	Type string
	TTL  int32
	Data []string
}

// DNSRecords is a private zone together with its record sets.
type DNSRecords struct {
	Name    string
	Project string
	DNSName string
	Network string
	Records []DNSRecord
	Labels  map[string]string

	SelfLink string
}

// FirewallRule admits health-check probes and PSC NAT traffic.
type FirewallRule struct {
	Name         string
	Project      string
	Network      string
	Direction    string
	Protocol     string
	Ports        []string
	SourceRanges []string
	Labels       map[string]string

	SelfLink string
}

// BackendHealth is the provider's view of a backend service's backends.
type BackendHealth struct {
	Healthy int
	Total   int
}
