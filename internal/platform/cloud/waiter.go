package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Default waiter settings.
const (
	DefaultPollInterval     = 5 * time.Second
	DefaultRegionalDeadline = 10 * time.Minute
	DefaultGlobalDeadline   = 10 * time.Minute
)

// Waiter blocks the calling task until an operation reaches a terminal
// state, the deadline elapses or the caller's context is cancelled.
// It never cancels the provider-side operation.
type Waiter struct {
	interval  time.Duration
	deadlines map[ScopeKind]time.Duration
	perKind   map[Kind]time.Duration
}

// WaiterOption configures a Waiter.
type WaiterOption func(*Waiter)

// NewWaiter creates a Waiter with a 5s poll interval and 10m deadlines.
func NewWaiter(opts ...WaiterOption) *Waiter {
	w := &Waiter{
		interval: DefaultPollInterval,
		deadlines: map[ScopeKind]time.Duration{
			ScopeRegional: DefaultRegionalDeadline,
			ScopeGlobal:   DefaultGlobalDeadline,
			ScopeProject:  DefaultGlobalDeadline,
		},
		perKind: map[Kind]time.Duration{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WithPollInterval sets how often operation status is read.
func WithPollInterval(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithScopeDeadline sets the default deadline for operations of a scope.
func WithScopeDeadline(scope ScopeKind, d time.Duration) WaiterOption {
	return func(w *Waiter) {
		if d > 0 {
			w.deadlines[scope] = d
		}
	}
}

// WithKindDeadline overrides the deadline for operations on one resource kind.
func WithKindDeadline(kind Kind, d time.Duration) WaiterOption {
	return func(w *Waiter) {
		if d > 0 {
			w.perKind[kind] = d
		}
	}
}

// Deadline returns the deadline applied to op when the caller passes none.
func (w *Waiter) Deadline(op *Operation) time.Duration {
	if d, ok := w.perKind[op.Kind]; ok {
		return d
	}
	if d, ok := w.deadlines[op.Scope.Kind]; ok {
		return d
	}
	return DefaultGlobalDeadline
}

// Wait polls op until DONE. A zero deadline uses [Waiter.Deadline].
//
// The returned error is always a *ClassifiedError: the operation's own
// error when it finished unsuccessfully, Transient when the deadline
// elapsed or the context was cancelled, or the classification of a
// non-transient read failure.
func (w *Waiter) Wait(ctx context.Context, ops OperationGetter, op *Operation, deadline time.Duration) (*Operation, error) {
	if op == nil {
		return nil, NewClassifiedError(ErrorUnknown, "wait", "", errors.New("nil operation handle"))
	}
	if deadline <= 0 {
		deadline = w.Deadline(op)
	}
	if op.Done() {
		return terminal(op)
	}

	resource := op.TargetLink
	current := op
	err := wait.PollUntilContextTimeout(ctx, w.interval, deadline, true, func(pollCtx context.Context) (bool, error) {
		latest, err := ops.GetOperation(pollCtx, op.Project, op.Scope, op.ID)
		if err != nil {
			if IsTransient(err) && pollCtx.Err() == nil {
				return false, nil
			}
			return false, Classified("wait", resource, err)
		}
		current = latest
		return latest.Done(), nil
	})
	if err == nil {
		return terminal(current)
	}

	if ctx.Err() != nil {
		return current, NewClassifiedError(ErrorTransient, "wait", resource,
			fmt.Errorf("operation %s abandoned: %w", op.ID, ctx.Err()))
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return current, ce
	}
	if wait.Interrupted(err) {
		return current, NewClassifiedError(ErrorTransient, "wait", resource,
			fmt.Errorf("operation %s did not complete within %s", op.ID, deadline))
	}
	return current, Classified("wait", resource, err)
}

func terminal(op *Operation) (*Operation, error) {
	if op.Error != nil {
		return op, Classified("operation", op.TargetLink, op.Error)
	}
	return op, nil
}
