package cloud

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorNone},
		{"404", &APIError{Code: 404, Reason: "notFound"}, ErrorNotFound},
		{"not found helper", NewNotFound(Ref{Project: "p", Scope: Global(), Name: "hc"}), ErrorNotFound},
		{"409 already exists", &APIError{Code: 409, Reason: "alreadyExists"}, ErrorTransient},
		{"409 other", &APIError{Code: 409, Reason: "conflict"}, ErrorConflict},
		{"412 precondition", &APIError{Code: 412, Reason: "conditionNotMet"}, ErrorConflict},
		{"403 quota", &APIError{Code: 403, Reason: "quotaExceeded"}, ErrorQuota},
		{"403 rate limit", &APIError{Code: 403, Reason: "rateLimitExceeded"}, ErrorTransient},
		{"403 user rate limit", &APIError{Code: 403, Reason: "userRateLimitExceeded"}, ErrorTransient},
		{"403 forbidden", &APIError{Code: 403, Reason: "forbidden"}, ErrorPermissionDenied},
		{"401", &APIError{Code: 401}, ErrorPermissionDenied},
		{"429 rate limit", &APIError{Code: 429, Reason: "rateLimitExceeded"}, ErrorTransient},
		{"429 quota", &APIError{Code: 429, Reason: "quotaExceeded"}, ErrorQuota},
		{"400 invalid", &APIError{Code: 400, Reason: "invalid"}, ErrorValidation},
		{"400 not ready", &APIError{Code: 400, Reason: "resourceNotReady"}, ErrorTransient},
		{"400 in use", &APIError{Code: 400, Reason: "resourceInUseByAnotherResource"}, ErrorConflict},
		{"400 quota", &APIError{Code: 400, Reason: "QUOTA_EXCEEDED"}, ErrorQuota},
		{"500", &APIError{Code: 500}, ErrorTransient},
		{"503", &APIError{Code: 503, Reason: "backendError"}, ErrorTransient},
		{"418 falls back to message", &APIError{Code: 418, Message: "teapot"}, ErrorUnknown},
		{"wrapped api error", fmt.Errorf("get: %w", &APIError{Code: 404}), ErrorNotFound},
		{"deadline", context.DeadlineExceeded, ErrorTransient},
		{"canceled", fmt.Errorf("x: %w", context.Canceled), ErrorTransient},
		{"message not found", errors.New("resource notFound"), ErrorNotFound},
		{"message quota", errors.New("Quota 'CPUS' exceeded"), ErrorQuota},
		{"message permission", errors.New("Required 'compute.healthChecks.create' permission"), ErrorPermissionDenied},
		{"message reset", errors.New("read tcp: connection reset by peer"), ErrorTransient},
		{"message invalid", errors.New("invalid value for field 'port'"), ErrorValidation},
		{"unclassified", errors.New("something odd"), ErrorUnknown},
		{"already classified", NewClassifiedError(ErrorQuota, "insert", "hc", errors.New("x")), ErrorQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	t.Parallel()
	err := &APIError{Code: 403, Reason: "forbidden", Message: "denied"}
	first := Classify(err)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(err))
	}
}

func TestErrorKindPolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind      ErrorKind
		retryable bool
		fatal     bool
	}{
		{ErrorNotFound, false, false},
		{ErrorConflict, false, true},
		{ErrorQuota, true, false},
		{ErrorPermissionDenied, true, false},
		{ErrorTransient, true, false},
		{ErrorValidation, false, true},
		{ErrorUnknown, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
			assert.Equal(t, tt.fatal, tt.kind.Fatal())
		})
	}
}

func TestClassified(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Classified("get", "hc", nil))

	raw := &APIError{Code: 503, Message: "backend unavailable"}
	ce := Classified("get", "psc-c1-hc", raw)
	require.NotNil(t, ce)
	assert.Equal(t, ErrorTransient, ce.Kind)
	assert.ErrorIs(t, ce, raw)
	assert.Equal(t, "Transient: get psc-c1-hc: 503: backend unavailable", ce.Error())

	again := Classified("insert", "other", fmt.Errorf("wrap: %w", ce))
	assert.Same(t, ce, again, "classification is preserved through wrapping")
}

func TestHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNotFound(&APIError{Code: 404}))
	assert.False(t, IsNotFound(&APIError{Code: 500}))
	assert.True(t, IsConflict(&APIError{Code: 409}))
	assert.True(t, IsTransient(&APIError{Code: 502}))
}
