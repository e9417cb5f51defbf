package destroy

import (
	"context"
	"fmt"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/util/retry"
)

// DeleteOperation encapsulates deletion logic for one resource kind.
// It is idempotent: a resource that no longer exists is recorded as
// Deleted without any provider mutation.
//
// Usage example:
//
//	return (&DeleteOperation{
//	    Kind:   cloud.KindFirewallRule,
//	    Ref:    pctx.Desired.Ref(cloud.KindFirewallRule),
//	    Get:    probe(client.GetFirewallRule),
//	    Delete: client.DeleteFirewallRule,
//	}).Execute(pctx, client)
type DeleteOperation struct {
	Kind cloud.Kind
	Ref  cloud.Ref

	// Get checks that the resource exists.
	Get func(ctx context.Context, ref cloud.Ref) error

	// Delete submits the delete operation.
	Delete func(ctx context.Context, ref cloud.Ref) (*cloud.Operation, error)
}

// Execute deletes the resource and waits for the operation. Transient
// failures are retried until Timeouts.Delete elapses; anything else is
// returned as a *cloud.ClassifiedError with the record left in Deleting.
func (op *DeleteOperation) Execute(pctx *provisioning.Context, ops cloud.OperationGetter) (provisioning.ResourceRecord, error) {
	ctx, cancel := context.WithTimeout(pctx, pctx.Timeouts.Delete)
	defer cancel()

	rec := op.startRecord(pctx)

	err := op.retry(ctx, pctx, func(ctx context.Context) error {
		return op.Get(ctx, op.Ref)
	})
	if cloud.IsNotFound(err) {
		return op.deleted(pctx, rec, provisioning.EventResourceAbsent)
	}
	if err != nil {
		return op.fail(pctx, rec, cloud.Classified("get", op.Ref.Name, err))
	}

	if rec.State != provisioning.StateDeleting {
		if err := rec.Transition(provisioning.StateDeleting, pctx.Now()); err != nil {
			return rec, cloud.NewClassifiedError(cloud.ErrorUnknown, "record", op.Ref.Name, err)
		}
	}
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     provisioning.EventResourceDeleting,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
		Message:  fmt.Sprintf("deleting %s", op.Ref),
	})

	var handle *cloud.Operation
	err = op.retry(ctx, pctx, func(ctx context.Context) error {
		h, err := op.Delete(ctx, op.Ref)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if cloud.IsNotFound(err) {
		return op.deleted(pctx, rec, provisioning.EventResourceDeleted)
	}
	if err != nil {
		return op.fail(pctx, rec, cloud.Classified("delete", op.Ref.Name, err))
	}

	if _, err := pctx.Waiter.Wait(ctx, ops, handle, 0); err != nil {
		return op.fail(pctx, rec, cloud.Classified("wait", op.Ref.Name, err))
	}
	return op.deleted(pctx, rec, provisioning.EventResourceDeleted)
}

// startRecord continues the current record; a Deleted one restarts from
// Pending since the resource evidently came back.
func (op *DeleteOperation) startRecord(pctx *provisioning.Context) provisioning.ResourceRecord {
	rec, ok := pctx.Records.Get(op.Kind)
	if !ok || rec.State == provisioning.StateDeleted {
		rec = provisioning.NewRecord(op.Kind, op.Ref.Name, op.Ref.Project, pctx.Desired.Generation())
	}
	return rec
}

func (op *DeleteOperation) retry(ctx context.Context, pctx *provisioning.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, fn,
		retry.WithMaxRetries(pctx.Timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(pctx.Timeouts.RetryInitialDelay),
		retry.WithRetryIf(cloud.IsTransient))
}

func (op *DeleteOperation) deleted(pctx *provisioning.Context, rec provisioning.ResourceRecord, event provisioning.EventType) (provisioning.ResourceRecord, error) {
	if rec.State != provisioning.StateDeleted {
		now := pctx.Now()
		if !rec.State.CanTransition(provisioning.StateDeleted) {
			if err := rec.Transition(provisioning.StateDeleting, now); err != nil {
				return rec, cloud.NewClassifiedError(cloud.ErrorUnknown, "record", op.Ref.Name, err)
			}
		}
		if err := rec.Transition(provisioning.StateDeleted, now); err != nil {
			return rec, cloud.NewClassifiedError(cloud.ErrorUnknown, "record", op.Ref.Name, err)
		}
	}
	rec.URI = ""
	rec.IPAddress = ""
	rec.SetError(nil)
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     event,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
	})
	return rec, nil
}

// fail keeps the record's state and stores the error. A cancelled pass
// leaves the record as last persisted.
func (op *DeleteOperation) fail(pctx *provisioning.Context, rec provisioning.ResourceRecord, ce *cloud.ClassifiedError) (provisioning.ResourceRecord, error) {
	if pctx.Err() != nil {
		return rec, ce
	}
	rec.SetError(ce)
	rec.UpdatedAt = pctx.Now()
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     provisioning.EventResourceFailed,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
		Err:      ce,
	})
	return rec, ce
}

// probe adapts a typed getter to an existence check.
func probe[T any](get func(context.Context, cloud.Ref) (*T, error)) func(context.Context, cloud.Ref) error {
	return func(ctx context.Context, ref cloud.Ref) error {
		_, err := get(ctx, ref)
		return err
	}
}
