package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/psclink/internal/platform/cloud"
)

func validRequest() Request {
	return Request{
		ClusterID:         "c1",
		Generation:        1,
		ManagementProject: "mgmt-project",
		CustomerProject:   "customer-project",
		Region:            "europe-west1",
		Network:           "producer-net",
		Subnet:            "producer-subnet",
		BackendLabels:     map[string]string{"role": "control-plane"},
	}
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()
	req := validRequest().WithDefaults()

	assert.Equal(t, "producer-subnet", req.NATSubnet)
	assert.Equal(t, "producer-net", req.ConsumerNetwork)
	assert.Equal(t, "producer-subnet", req.ConsumerSubnet)
	assert.Equal(t, []int{DefaultForwardingRulePort}, req.ForwardingRulePorts)
	assert.Equal(t, DefaultForwardingRulePort, req.HealthCheckPort)
	assert.Equal(t, DefaultHealthCheckSourceRanges(), req.HealthCheckSourceRanges)
	assert.Equal(t, "c1.psclink.internal.", req.DNSDomain)
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()
	in := validRequest()
	in.ForwardingRulePorts = []int{6443, 443}
	in.HealthCheckPort = 10256
	in.ConsumerNetwork = "customer-net"
	in.DNSDomain = "example.internal."

	req := in.WithDefaults()
	assert.Equal(t, []int{6443, 443}, req.ForwardingRulePorts)
	assert.Equal(t, 10256, req.HealthCheckPort)
	assert.Equal(t, "customer-net", req.ConsumerNetwork)
	assert.Equal(t, "example.internal.", req.DNSDomain)
}

func TestWithDefaultsDoesNotAlias(t *testing.T) {
	t.Parallel()
	in := validRequest()
	in.ForwardingRulePorts = []int{6443}
	out := in.WithDefaults()

	out.BackendLabels["injected"] = "x"
	out.ForwardingRulePorts[0] = 1

	assert.NotContains(t, in.BackendLabels, "injected")
	assert.Equal(t, 6443, in.ForwardingRulePorts[0])
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr string
	}{
		{"valid", func(*Request) {}, ""},
		{"missing cluster id", func(r *Request) { r.ClusterID = "" }, "clusterId is required"},
		{"cluster id not dns label", func(r *Request) { r.ClusterID = "C_1" }, "clusterId"},
		{"cluster id too long", func(r *Request) { r.ClusterID = "c123456789012345678901234567890123456789012" }, "at most"},
		{"missing management project", func(r *Request) { r.ManagementProject = "" }, "managementProject is required"},
		{"missing customer project", func(r *Request) { r.CustomerProject = "" }, "customerProject is required"},
		{"missing region", func(r *Request) { r.Region = "" }, "region is required"},
		{"port out of range", func(r *Request) { r.ForwardingRulePorts = []int{70000} }, "out of range"},
		{"bad cidr", func(r *Request) { r.AllowedSourceRanges = []string{"10.0.0.0/33"} }, "invalid source range"},
		{"dns not fqdn", func(r *Request) { r.DNSDomain = "example.internal" }, "fully qualified"},
		{"bad label key", func(r *Request) { r.BackendLabels = map[string]string{"bad key": "v"} }, "backend label key"},
		{"reserved label key", func(r *Request) { r.BackendLabels = map[string]string{"psclink.io/cluster": "c2"} }, "prefix is reserved"},
		{"negative generation", func(r *Request) { r.Generation = -1 }, "generation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validRequest()
			tt.mutate(&req)
			err := req.WithDefaults().Validate()

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, cloud.ErrorValidation, cloud.Classify(err))
		})
	}
}
