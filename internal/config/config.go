package config

import (
	"time"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// Platform variants.
const (
	PlatformSimulated = "simulated"
	PlatformExternal  = "external"
)

// Record store backends.
const (
	StoreMemory = "memory"
	StoreS3     = "s3"
)

// Defaults applied by LoadFile when a field is left empty.
const (
	DefaultWorkers        = 4
	DefaultHealthInterval = 45 * time.Second
	DefaultResyncInterval = 10 * time.Minute
	DefaultEscalateAfter  = 3
)

// Config is the engine configuration file.
type Config struct {
	Platform       string        `yaml:"platform"`
	Workers        int           `yaml:"workers"`
	PollInterval   time.Duration `yaml:"pollInterval"`
	HealthInterval time.Duration `yaml:"healthInterval"`
	ResyncInterval time.Duration `yaml:"resyncInterval"`

	// OperationDeadlines overrides the scope deadline for one resource kind.
	OperationDeadlines map[cloud.Kind]time.Duration `yaml:"operationDeadlines,omitempty"`

	Retry     RetryPolicy     `yaml:"retry"`
	Store     StoreConfig     `yaml:"store"`
	Simulated SimulatedConfig `yaml:"simulated"`

	Requests []provisioning.Request `yaml:"requests"`

	// Timeouts come from the environment, never from the file.
	Timeouts *Timeouts `yaml:"-"`
}

// RetryPolicy is the requeue delay per retryable error kind.
type RetryPolicy struct {
	Transient        time.Duration `yaml:"transient"`
	Quota            time.Duration `yaml:"quota"`
	PermissionDenied time.Duration `yaml:"permissionDenied"`
	// EscalateAfter is the number of consecutive PermissionDenied
	// failures after which the engine raises an alert.
	EscalateAfter int `yaml:"escalateAfter"`
}

// DefaultRetryPolicy returns 30s for transient failures, 15m for quota and
// 1m for permission failures, escalating after three in a row.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Transient:        30 * time.Second,
		Quota:            15 * time.Minute,
		PermissionDenied: time.Minute,
		EscalateAfter:    DefaultEscalateAfter,
	}
}

// Delay returns the requeue delay for kind. Fatal kinds are not requeued
// and report false.
func (p RetryPolicy) Delay(kind cloud.ErrorKind) (time.Duration, bool) {
	switch kind {
	case cloud.ErrorTransient:
		return p.Transient, true
	case cloud.ErrorQuota:
		return p.Quota, true
	case cloud.ErrorPermissionDenied:
		return p.PermissionDenied, true
	default:
		return 0, false
	}
}

// StoreConfig selects where resource records are persisted.
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Bucket    string `yaml:"bucket,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	PathStyle bool   `yaml:"pathStyle,omitempty"`
}

// SimulatedConfig tunes the in-process provider of the simulated platform.
type SimulatedConfig struct {
	// OperationPolls is how many status reads an operation stays RUNNING.
	OperationPolls int `yaml:"operationPolls"`
	// Backends is the backend count reported for every backend service.
	Backends int `yaml:"backends"`
}

// NewWaiter builds the operation waiter from the poll interval, the
// scope deadlines and the per-kind overrides.
func (c *Config) NewWaiter() *cloud.Waiter {
	t := c.Timeouts
	if t == nil {
		t = LoadTimeouts()
	}
	poll := c.PollInterval
	if poll <= 0 {
		poll = t.PollInterval
	}

	opts := []cloud.WaiterOption{
		cloud.WithPollInterval(poll),
		cloud.WithScopeDeadline(cloud.ScopeRegional, t.RegionalOperation),
		cloud.WithScopeDeadline(cloud.ScopeGlobal, t.GlobalOperation),
		cloud.WithScopeDeadline(cloud.ScopeProject, t.GlobalOperation),
	}
	for kind, d := range c.OperationDeadlines {
		opts = append(opts, cloud.WithKindDeadline(kind, d))
	}
	return cloud.NewWaiter(opts...)
}

// Request returns the configured request for a cluster id.
func (c *Config) Request(clusterID string) (provisioning.Request, bool) {
	for _, r := range c.Requests {
		if r.ClusterID == clusterID {
			return r, true
		}
	}
	return provisioning.Request{}, false
}
