package testing

import (
	"maps"

	"github.com/imamik/psclink/internal/provisioning"
)

// RequestBuilder provides a fluent interface for constructing test requests.
// Each method returns a new builder (immutable) for chaining.
type RequestBuilder struct {
	req provisioning.Request
}

// NewRequestBuilder creates a RequestBuilder with sensible defaults.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		req: provisioning.Request{
			ClusterID:         "c1",
			Generation:        1,
			ManagementProject: "mgmt-project",
			CustomerProject:   "customer-project",
			Region:            "europe-west1",
			Network:           "producer-net",
			Subnet:            "producer-subnet",
			ConsumerNetwork:   "consumer-net",
			ConsumerSubnet:    "consumer-subnet",
			BackendLabels:     map[string]string{"role": "control-plane"},
		},
	}
}

// WithClusterID sets the cluster id.
func (b *RequestBuilder) WithClusterID(id string) *RequestBuilder {
	nb := b.clone()
	nb.req.ClusterID = id
	return nb
}

// WithGeneration sets the request generation.
func (b *RequestBuilder) WithGeneration(gen int64) *RequestBuilder {
	nb := b.clone()
	nb.req.Generation = gen
	return nb
}

// WithProjects sets the management and customer projects.
func (b *RequestBuilder) WithProjects(management, customer string) *RequestBuilder {
	nb := b.clone()
	nb.req.ManagementProject = management
	nb.req.CustomerProject = customer
	return nb
}

// WithPorts sets the forwarding rule ports.
func (b *RequestBuilder) WithPorts(ports ...int) *RequestBuilder {
	nb := b.clone()
	nb.req.ForwardingRulePorts = append([]int(nil), ports...)
	return nb
}

// WithConsumerAcceptList restricts the attachment to the given projects.
func (b *RequestBuilder) WithConsumerAcceptList(projects ...string) *RequestBuilder {
	nb := b.clone()
	nb.req.ConsumerAcceptList = append([]string(nil), projects...)
	return nb
}

// WithBackendLabels replaces the backend template labels.
func (b *RequestBuilder) WithBackendLabels(l map[string]string) *RequestBuilder {
	nb := b.clone()
	nb.req.BackendLabels = maps.Clone(l)
	return nb
}

// Build returns the defaulted request.
func (b *RequestBuilder) Build() provisioning.Request {
	return b.req.WithDefaults()
}

func (b *RequestBuilder) clone() *RequestBuilder {
	nb := &RequestBuilder{req: b.req}
	nb.req.BackendLabels = maps.Clone(b.req.BackendLabels)
	nb.req.ForwardingRulePorts = append([]int(nil), b.req.ForwardingRulePorts...)
	nb.req.ConsumerAcceptList = append([]string(nil), b.req.ConsumerAcceptList...)
	return nb
}
