package config

import (
	"os"
	"strconv"
	"time"

	"github.com/imamik/psclink/internal/provisioning"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	RegionalOperation time.Duration // Deadline for regional provider operations
	GlobalOperation   time.Duration // Deadline for global and project operations
	PollInterval      time.Duration // Interval between operation status reads
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
	Delete            time.Duration // Timeout for deleting one resource
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PSCLINK_TIMEOUT_REGIONAL_OP (default: 10m)
//   - PSCLINK_TIMEOUT_GLOBAL_OP (default: 10m)
//   - PSCLINK_POLL_INTERVAL (default: 5s)
//   - PSCLINK_RETRY_MAX_ATTEMPTS (default: 5)
//   - PSCLINK_RETRY_INITIAL_DELAY (default: 1s)
//   - PSCLINK_TIMEOUT_DELETE (default: 5m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		RegionalOperation: parseDuration("PSCLINK_TIMEOUT_REGIONAL_OP", 10*time.Minute),
		GlobalOperation:   parseDuration("PSCLINK_TIMEOUT_GLOBAL_OP", 10*time.Minute),
		PollInterval:      parseDuration("PSCLINK_POLL_INTERVAL", 5*time.Second),
		RetryMaxAttempts:  parseInt("PSCLINK_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("PSCLINK_RETRY_INITIAL_DELAY", 1*time.Second),
		Delete:            parseDuration("PSCLINK_TIMEOUT_DELETE", 5*time.Minute),
	}
}

// Provisioning converts the timeouts into the bounds of one pass.
func (t *Timeouts) Provisioning() provisioning.Timeouts {
	return provisioning.Timeouts{
		Delete:            t.Delete,
		RetryMaxAttempts:  t.RetryMaxAttempts,
		RetryInitialDelay: t.RetryInitialDelay,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
