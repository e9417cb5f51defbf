package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/imamik/psclink/internal/provisioning"
)

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document, fills in defaults and validates it.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timeouts == nil {
		c.Timeouts = LoadTimeouts()
	}
	if c.Platform == "" {
		c.Platform = PlatformSimulated
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.PollInterval == 0 {
		c.PollInterval = c.Timeouts.PollInterval
	}
	if c.HealthInterval == 0 {
		c.HealthInterval = DefaultHealthInterval
	}
	if c.ResyncInterval == 0 {
		c.ResyncInterval = DefaultResyncInterval
	}

	defaults := DefaultRetryPolicy()
	if c.Retry.Transient == 0 {
		c.Retry.Transient = defaults.Transient
	}
	if c.Retry.Quota == 0 {
		c.Retry.Quota = defaults.Quota
	}
	if c.Retry.PermissionDenied == 0 {
		c.Retry.PermissionDenied = defaults.PermissionDenied
	}
	if c.Retry.EscalateAfter == 0 {
		c.Retry.EscalateAfter = defaults.EscalateAfter
	}

	if c.Store.Backend == "" {
		c.Store.Backend = StoreMemory
	}

	for i := range c.Requests {
		c.Requests[i] = c.Requests[i].WithDefaults()
	}
}

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformSimulated, PlatformExternal:
	default:
		return fmt.Errorf("invalid platform %q: must be one of [%s %s]", c.Platform, PlatformSimulated, PlatformExternal)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PollInterval < 0 || c.HealthInterval < 0 || c.ResyncInterval < 0 {
		return fmt.Errorf("intervals must not be negative")
	}

	if err := c.validateRetry(); err != nil {
		return fmt.Errorf("retry validation failed: %w", err)
	}
	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	if err := c.validateDeadlines(); err != nil {
		return fmt.Errorf("deadline validation failed: %w", err)
	}
	if err := c.validateRequests(); err != nil {
		return fmt.Errorf("request validation failed: %w", err)
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.Transient < 0 || c.Retry.Quota < 0 || c.Retry.PermissionDenied < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	if c.Retry.EscalateAfter < 1 {
		return fmt.Errorf("escalateAfter must be at least 1, got %d", c.Retry.EscalateAfter)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreMemory:
		return nil
	case StoreS3:
		if c.Store.Bucket == "" {
			return fmt.Errorf("bucket is required for the %s backend", StoreS3)
		}
		return nil
	default:
		return fmt.Errorf("invalid backend %q: must be one of [%s %s]", c.Store.Backend, StoreMemory, StoreS3)
	}
}

func (c *Config) validateDeadlines() error {
	known := make(map[string]bool, len(provisioning.AllKinds))
	for _, k := range provisioning.AllKinds {
		known[string(k)] = true
	}
	for kind, d := range c.OperationDeadlines {
		if !known[string(kind)] {
			return fmt.Errorf("unknown resource kind %q", kind)
		}
		if d <= 0 {
			return fmt.Errorf("deadline for %s must be positive", kind)
		}
	}
	return nil
}

func (c *Config) validateRequests() error {
	seen := make(map[string]bool, len(c.Requests))
	for _, r := range c.Requests {
		if seen[r.ClusterID] {
			return fmt.Errorf("duplicate request for cluster %q", r.ClusterID)
		}
		seen[r.ClusterID] = true
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
