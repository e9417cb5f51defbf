package cloud

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOperations struct {
	GetOperationFunc func(ctx context.Context, project string, scope Scope, id string) (*Operation, error)
}

func (f *fakeOperations) GetOperation(ctx context.Context, project string, scope Scope, id string) (*Operation, error) {
	return f.GetOperationFunc(ctx, project, scope, id)
}

func runningOp(kind Kind) *Operation {
	return &Operation{ID: "op-1", Project: "mgmt", Scope: Global(), Kind: kind, TargetLink: "hc", Status: OperationRunning}
}

func TestWaiter_CompletesAfterPolls(t *testing.T) {
	t.Parallel()
	var polls atomic.Int32
	ops := &fakeOperations{GetOperationFunc: func(_ context.Context, _ string, _ Scope, id string) (*Operation, error) {
		assert.Equal(t, "op-1", id)
		if polls.Add(1) < 3 {
			return runningOp(KindHealthCheck), nil
		}
		done := runningOp(KindHealthCheck)
		done.Status = OperationDone
		return done, nil
	}}

	w := NewWaiter(WithPollInterval(time.Millisecond))
	op, err := w.Wait(context.Background(), ops, runningOp(KindHealthCheck), time.Second)

	require.NoError(t, err)
	assert.True(t, op.Done())
	assert.Equal(t, int32(3), polls.Load())
}

func TestWaiter_AlreadyDone(t *testing.T) {
	t.Parallel()
	ops := &fakeOperations{GetOperationFunc: func(context.Context, string, Scope, string) (*Operation, error) {
		t.Fatal("GetOperation must not be called for a finished operation")
		return nil, nil
	}}
	op := runningOp(KindHealthCheck)
	op.Status = OperationDone

	got, err := NewWaiter().Wait(context.Background(), ops, op, 0)
	require.NoError(t, err)
	assert.Same(t, op, got)
}

func TestWaiter_OperationError(t *testing.T) {
	t.Parallel()
	ops := &fakeOperations{GetOperationFunc: func(context.Context, string, Scope, string) (*Operation, error) {
		op := runningOp(KindForwardingRule)
		op.Status = OperationDone
		op.Error = &APIError{Code: 403, Reason: "quotaExceeded", Message: "FORWARDING_RULES quota exceeded"}
		return op, nil
	}}

	_, err := NewWaiter(WithPollInterval(time.Millisecond)).Wait(context.Background(), ops, runningOp(KindForwardingRule), time.Second)

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrorQuota, ce.Kind)
}

func TestWaiter_Deadline(t *testing.T) {
	t.Parallel()
	ops := &fakeOperations{GetOperationFunc: func(context.Context, string, Scope, string) (*Operation, error) {
		return runningOp(KindServiceAttachment), nil
	}}

	_, err := NewWaiter(WithPollInterval(time.Millisecond)).Wait(context.Background(), ops, runningOp(KindServiceAttachment), 20*time.Millisecond)

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrorTransient, ce.Kind)
	assert.Contains(t, ce.Error(), "did not complete within")
}

func TestWaiter_CancellationReturnsImmediately(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	var polls atomic.Int32
	ops := &fakeOperations{GetOperationFunc: func(context.Context, string, Scope, string) (*Operation, error) {
		if polls.Add(1) == 2 {
			cancel()
		}
		return runningOp(KindHealthCheck), nil
	}}

	start := time.Now()
	_, err := NewWaiter(WithPollInterval(5*time.Millisecond)).Wait(ctx, ops, runningOp(KindHealthCheck), time.Hour)

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaiter_TransientReadErrorsKeepPolling(t *testing.T) {
	t.Parallel()
	var polls atomic.Int32
	ops := &fakeOperations{GetOperationFunc: func(context.Context, string, Scope, string) (*Operation, error) {
		if polls.Add(1) == 1 {
			return nil, &APIError{Code: 503, Message: "backend unavailable"}
		}
		op := runningOp(KindHealthCheck)
		op.Status = OperationDone
		return op, nil
	}}

	_, err := NewWaiter(WithPollInterval(time.Millisecond)).Wait(context.Background(), ops, runningOp(KindHealthCheck), time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(2), polls.Load())
}

func TestWaiter_FatalReadErrorStops(t *testing.T) {
	t.Parallel()
	ops := &fakeOperations{GetOperationFunc: func(context.Context, string, Scope, string) (*Operation, error) {
		return nil, &APIError{Code: 403, Reason: "forbidden"}
	}}

	_, err := NewWaiter(WithPollInterval(time.Millisecond)).Wait(context.Background(), ops, runningOp(KindHealthCheck), time.Second)
	assert.Equal(t, ErrorPermissionDenied, Classify(err))
}

func TestWaiter_NilOperation(t *testing.T) {
	t.Parallel()
	_, err := NewWaiter().Wait(context.Background(), &fakeOperations{}, nil, 0)
	assert.Equal(t, ErrorUnknown, Classify(err))
	assert.True(t, errors.As(err, new(*ClassifiedError)))
}

func TestWaiter_Deadlines(t *testing.T) {
	t.Parallel()
	w := NewWaiter(
		WithScopeDeadline(ScopeRegional, 3*time.Minute),
		WithKindDeadline(KindServiceAttachment, 15*time.Minute),
	)

	assert.Equal(t, 3*time.Minute, w.Deadline(&Operation{Kind: KindForwardingRule, Scope: Regional("europe-west1")}))
	assert.Equal(t, 15*time.Minute, w.Deadline(&Operation{Kind: KindServiceAttachment, Scope: Regional("europe-west1")}))
	assert.Equal(t, DefaultGlobalDeadline, w.Deadline(&Operation{Kind: KindHealthCheck, Scope: Global()}))
}
