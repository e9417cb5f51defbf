package provisioning

import (
	"errors"
	"fmt"
	"net"

	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/util/labels"
	"github.com/imamik/psclink/internal/util/naming"
)

// maxClusterIDLength keeps psc-{id}-{suffix} within the 63 character name limit.
const maxClusterIDLength = 40

// Default request values.
const (
	DefaultForwardingRulePort = 8080
	DefaultDNSTTL             = 300
)

// DefaultHealthCheckSourceRanges are the provider's health-check prober ranges.
func DefaultHealthCheckSourceRanges() []string {
	return []string{"130.211.0.0/22", "35.191.0.0/16"}
}

// Request is the desired state for one logical cluster. It is immutable once
// accepted for a generation; a higher generation replaces it wholesale.
type Request struct {
	ClusterID         string `yaml:"clusterId" json:"clusterId"`
	Generation        int64  `yaml:"generation" json:"generation"`
	ManagementProject string `yaml:"managementProject" json:"managementProject"`
	CustomerProject   string `yaml:"customerProject" json:"customerProject"`
	Region            string `yaml:"region" json:"region"`

	// Producer side network of the internal load balancer.
	Network   string `yaml:"network" json:"network"`
	Subnet    string `yaml:"subnet" json:"subnet"`
	NATSubnet string `yaml:"natSubnet,omitempty" json:"natSubnet,omitempty"`

	// Customer side network of the consumer endpoint. Defaults to Network/Subnet.
	ConsumerNetwork string `yaml:"consumerNetwork,omitempty" json:"consumerNetwork,omitempty"`
	ConsumerSubnet  string `yaml:"consumerSubnet,omitempty" json:"consumerSubnet,omitempty"`

	ConsumerAcceptList      []string          `yaml:"consumerAcceptList,omitempty" json:"consumerAcceptList,omitempty"`
	ForwardingRulePorts     []int             `yaml:"forwardingRulePorts,omitempty" json:"forwardingRulePorts,omitempty"`
	HealthCheckPort         int               `yaml:"healthCheckPort,omitempty" json:"healthCheckPort,omitempty"`
	HealthCheckSourceRanges []string          `yaml:"healthCheckSourceRanges,omitempty" json:"healthCheckSourceRanges,omitempty"`
	AllowedSourceRanges     []string          `yaml:"allowedSourceRanges,omitempty" json:"allowedSourceRanges,omitempty"`
	DNSDomain               string            `yaml:"dnsDomain,omitempty" json:"dnsDomain,omitempty"`
	BackendLabels           map[string]string `yaml:"backendLabels,omitempty" json:"backendLabels,omitempty"`

	// Identities handed to the credential source for each side.
	ManagementIdentity string `yaml:"managementIdentity,omitempty" json:"managementIdentity,omitempty"`
	CustomerIdentity   string `yaml:"customerIdentity,omitempty" json:"customerIdentity,omitempty"`
}

// WithDefaults returns a copy of the request with optional fields filled in.
// Slices and maps of the result never alias the receiver.
func (r Request) WithDefaults() Request {
	out := r
	out.ConsumerAcceptList = append([]string(nil), r.ConsumerAcceptList...)
	out.ForwardingRulePorts = append([]int(nil), r.ForwardingRulePorts...)
	out.HealthCheckSourceRanges = append([]string(nil), r.HealthCheckSourceRanges...)
	out.AllowedSourceRanges = append([]string(nil), r.AllowedSourceRanges...)
	out.BackendLabels = labels.Copy(r.BackendLabels)

	if out.NATSubnet == "" {
		out.NATSubnet = out.Subnet
	}
	if out.ConsumerNetwork == "" {
		out.ConsumerNetwork = out.Network
	}
	if out.ConsumerSubnet == "" {
		out.ConsumerSubnet = out.Subnet
	}
	if len(out.ForwardingRulePorts) == 0 {
		out.ForwardingRulePorts = []int{DefaultForwardingRulePort}
	}
	if out.HealthCheckPort == 0 {
		out.HealthCheckPort = out.ForwardingRulePorts[0]
	}
	if len(out.HealthCheckSourceRanges) == 0 {
		out.HealthCheckSourceRanges = DefaultHealthCheckSourceRanges()
	}
	if out.DNSDomain == "" && out.ClusterID != "" {
		out.DNSDomain = naming.DNSDomain(out.ClusterID)
	}
	return out
}

// Validate checks the request after defaults are applied. The returned
// error classifies as Validation.
func (r Request) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if r.ClusterID == "" {
		add("clusterId is required")
	} else {
		for _, msg := range validation.IsDNS1035Label(r.ClusterID) {
			add("clusterId %q: %s", r.ClusterID, msg)
		}
		if len(r.ClusterID) > maxClusterIDLength {
			add("clusterId %q must be at most %d characters", r.ClusterID, maxClusterIDLength)
		}
	}
	if r.Generation < 0 {
		add("generation must not be negative")
	}

	required := []struct{ name, value string }{
		{"managementProject", r.ManagementProject},
		{"customerProject", r.CustomerProject},
		{"region", r.Region},
		{"network", r.Network},
		{"subnet", r.Subnet},
	}
	for _, f := range required {
		if f.value == "" {
			add("%s is required", f.name)
		}
	}

	if len(r.ForwardingRulePorts) == 0 {
		add("at least one forwarding rule port is required")
	}
	for _, p := range r.ForwardingRulePorts {
		if p < 1 || p > 65535 {
			add("forwarding rule port %d out of range", p)
		}
	}
	if r.HealthCheckPort < 1 || r.HealthCheckPort > 65535 {
		add("health check port %d out of range", r.HealthCheckPort)
	}

	for _, cidr := range append(append([]string(nil), r.HealthCheckSourceRanges...), r.AllowedSourceRanges...) {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			add("invalid source range %q", cidr)
		}
	}
	if r.DNSDomain != "" && r.DNSDomain[len(r.DNSDomain)-1] != '.' {
		add("dnsDomain %q must be fully qualified (end with a dot)", r.DNSDomain)
	}
	for k, v := range r.BackendLabels {
		if labels.IsReserved(k) {
			add("backend label key %q: the %s prefix is reserved", k, labels.Prefix)
		}
		for _, msg := range validation.IsQualifiedName(k) {
			add("backend label key %q: %s", k, msg)
		}
		for _, msg := range validation.IsValidLabelValue(v) {
			add("backend label %q value %q: %s", k, v, msg)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return cloud.NewClassifiedError(cloud.ErrorValidation, "validate", r.ClusterID, errors.Join(errs...))
}
