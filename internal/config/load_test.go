package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/psclink/internal/platform/cloud"
)

const validConfig = `
platform: simulated
workers: 8
healthInterval: 30s
operationDeadlines:
  ServiceAttachment: 20m
retry:
  quota: 5m
store:
  backend: s3
  bucket: psclink-records
  endpoint: http://localhost:9000
  region: us-east-1
  pathStyle: true
simulated:
  operationPolls: 2
  backends: 3
requests:
  - clusterId: c1
    generation: 1
    managementProject: mgmt-project
    customerProject: customer-project
    region: europe-west1
    network: producer-net
    subnet: producer-subnet
    forwardingRulePorts: [6443, 8080]
`

func TestParse_Valid(t *testing.T) {
	clearTimeoutEnvVars(t)

	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, PlatformSimulated, cfg.Platform)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.HealthInterval)
	assert.Equal(t, DefaultResyncInterval, cfg.ResyncInterval)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 20*time.Minute, cfg.OperationDeadlines[cloud.KindServiceAttachment])

	assert.Equal(t, 5*time.Minute, cfg.Retry.Quota)
	assert.Equal(t, 30*time.Second, cfg.Retry.Transient)
	assert.Equal(t, time.Minute, cfg.Retry.PermissionDenied)
	assert.Equal(t, DefaultEscalateAfter, cfg.Retry.EscalateAfter)

	assert.Equal(t, StoreConfig{
		Backend:   StoreS3,
		Bucket:    "psclink-records",
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		PathStyle: true,
	}, cfg.Store)
	assert.Equal(t, SimulatedConfig{OperationPolls: 2, Backends: 3}, cfg.Simulated)

	require.Len(t, cfg.Requests, 1)
	req, ok := cfg.Request("c1")
	require.True(t, ok)
	assert.Equal(t, []int{6443, 8080}, req.ForwardingRulePorts)
	assert.Equal(t, 6443, req.HealthCheckPort, "defaults are applied to requests")
	assert.Equal(t, "producer-subnet", req.NATSubnet)

	_, ok = cfg.Request("missing")
	assert.False(t, ok)
}

func TestParse_Defaults(t *testing.T) {
	clearTimeoutEnvVars(t)

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, PlatformSimulated, cfg.Platform)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultHealthInterval, cfg.HealthInterval)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, DefaultRetryPolicy(), cfg.Retry)
	assert.NotNil(t, cfg.Timeouts)
	assert.Empty(t, cfg.Requests)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown platform",
			yaml:    "platform: mainframe",
			wantErr: `invalid platform "mainframe"`,
		},
		{
			name:    "negative workers",
			yaml:    "workers: -1",
			wantErr: "workers must be at least 1",
		},
		{
			name:    "s3 without bucket",
			yaml:    "store:\n  backend: s3",
			wantErr: "bucket is required",
		},
		{
			name:    "unknown store",
			yaml:    "store:\n  backend: etcd",
			wantErr: `invalid backend "etcd"`,
		},
		{
			name:    "unknown kind deadline",
			yaml:    "operationDeadlines:\n  Router: 1m",
			wantErr: `unknown resource kind "Router"`,
		},
		{
			name:    "unknown field",
			yaml:    "wokers: 2",
			wantErr: "failed to unmarshal yaml",
		},
		{
			name:    "duplicate request",
			yaml:    "requests:\n" + requestYAML("c1") + requestYAML("c1"),
			wantErr: `duplicate request for cluster "c1"`,
		},
		{
			name: "invalid request",
			yaml: `requests:
  - clusterId: Not_Valid
    managementProject: m
    customerProject: c
    region: r
    network: n
    subnet: s`,
			wantErr: "request validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTimeoutEnvVars(t)
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_InvalidRequestClassifiesAsValidation(t *testing.T) {
	clearTimeoutEnvVars(t)

	_, err := Parse([]byte("requests:\n  - clusterId: c1\n"))
	require.Error(t, err)
	assert.Equal(t, cloud.ErrorValidation, cloud.Classify(err))
}

func TestLoadFile(t *testing.T) {
	clearTimeoutEnvVars(t)
	path := filepath.Join(t.TempDir(), "psclink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Requests, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestRetryPolicyDelay(t *testing.T) {
	p := DefaultRetryPolicy()

	tests := []struct {
		kind      cloud.ErrorKind
		wantDelay time.Duration
		wantRetry bool
	}{
		{cloud.ErrorTransient, 30 * time.Second, true},
		{cloud.ErrorQuota, 15 * time.Minute, true},
		{cloud.ErrorPermissionDenied, time.Minute, true},
		{cloud.ErrorConflict, 0, false},
		{cloud.ErrorValidation, 0, false},
		{cloud.ErrorUnknown, 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			d, ok := p.Delay(tt.kind)
			assert.Equal(t, tt.wantRetry, ok)
			assert.Equal(t, tt.wantDelay, d)
		})
	}
}

func TestNewWaiterDeadlines(t *testing.T) {
	cfg := &Config{
		Timeouts: &Timeouts{
			RegionalOperation: 3 * time.Minute,
			GlobalOperation:   4 * time.Minute,
			PollInterval:      time.Second,
		},
		OperationDeadlines: map[cloud.Kind]time.Duration{
			cloud.KindServiceAttachment: 20 * time.Minute,
		},
	}

	w := cfg.NewWaiter()

	assert.Equal(t, 3*time.Minute, w.Deadline(&cloud.Operation{Kind: cloud.KindBackendService, Scope: cloud.Regional("r")}))
	assert.Equal(t, 4*time.Minute, w.Deadline(&cloud.Operation{Kind: cloud.KindHealthCheck, Scope: cloud.Global()}))
	assert.Equal(t, 4*time.Minute, w.Deadline(&cloud.Operation{Kind: cloud.KindDNSRecords, Scope: cloud.ProjectScope()}))
	assert.Equal(t, 20*time.Minute, w.Deadline(&cloud.Operation{Kind: cloud.KindServiceAttachment, Scope: cloud.Regional("r")}))
}

func requestYAML(id string) string {
	return `  - clusterId: ` + id + `
    managementProject: m
    customerProject: c
    region: r
    network: n
    subnet: s
`
}
