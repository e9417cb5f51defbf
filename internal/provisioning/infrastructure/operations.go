package infrastructure

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/util/labels"
	"github.com/imamik/psclink/internal/util/retry"
)

// EnsureOperation encapsulates get-or-create logic for one resource kind.
//
// Usage example:
//
//	desired := pctx.Desired.HealthCheck()
//	return (&EnsureOperation[cloud.HealthCheck]{
//	    Kind:    cloud.KindHealthCheck,
//	    Desired: desired,
//	    Get:     client.GetHealthCheck,
//	    Insert:  client.InsertHealthCheck,
//	    Ignore:  cmpopts.IgnoreFields(cloud.HealthCheck{}, "SelfLink", "Labels"),
//	    Observe: func(hc *cloud.HealthCheck) (string, string) { return hc.SelfLink, "" },
//	}).Execute(pctx, client)
type EnsureOperation[T any] struct {
	Kind    cloud.Kind
	Ref     cloud.Ref
	Desired *T

	// Labels are recorded on the record; Selector only for backend services.
	Labels   map[string]string
	Selector map[string]string

	// Get reads the resource by identity.
	Get func(ctx context.Context, ref cloud.Ref) (*T, error)

	// Insert submits the create operation.
	Insert func(ctx context.Context, desired *T) (*cloud.Operation, error)

	// Ignore excludes provider-assigned and mutable fields from the
	// immutable-field comparison.
	Ignore cmp.Option

	// Observe extracts the provider-assigned URI and IP address.
	Observe func(observed *T) (uri, ip string)
}

// Execute reconciles the resource and returns its record.
//
// The returned error is always a *cloud.ClassifiedError. On success the
// record is Ready and carries the provider-assigned URI (and IP address
// where the kind has one).
func (op *EnsureOperation[T]) Execute(pctx *provisioning.Context, ops cloud.OperationGetter) (provisioning.ResourceRecord, error) {
	prev, found := pctx.Records.Get(op.Kind)
	rec := op.startRecord(pctx, prev, found)

	observed, err := op.read(pctx)
	switch {
	case err == nil:
		if diff := cmp.Diff(op.Desired, observed, op.Ignore, cmpopts.EquateEmpty()); diff != "" {
			ce := cloud.NewClassifiedError(cloud.ErrorConflict, "compare", op.Ref.Name,
				fmt.Errorf("existing %s differs in immutable fields (-desired +observed):\n%s", op.Kind, diff))
			return op.fail(pctx, rec, ce, provisioning.EventResourceConflict)
		}
		if found && prev.Ready() && prev.ObservedGeneration == rec.ObservedGeneration {
			return op.readopt(pctx, prev, observed)
		}
		return op.ready(pctx, rec, observed, provisioning.EventResourceExists)
	case cloud.IsNotFound(err):
	default:
		return op.fail(pctx, rec, cloud.Classified("get", op.Ref.Name, err), provisioning.EventResourceFailed)
	}

	if err := op.advance(pctx, &rec, provisioning.StateCreating); err != nil {
		return rec, err
	}
	rec.SetError(nil)
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     provisioning.EventResourceCreating,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
		Message:  fmt.Sprintf("creating %s", op.Ref),
	})

	handle, err := op.Insert(pctx, op.Desired)
	if err != nil {
		return op.fail(pctx, rec, cloud.Classified("insert", op.Ref.Name, err), provisioning.EventResourceFailed)
	}

	if _, err := pctx.Waiter.Wait(pctx, ops, handle, 0); err != nil {
		return op.fail(pctx, rec, cloud.Classified("wait", op.Ref.Name, err), provisioning.EventResourceFailed)
	}

	observed, err = op.read(pctx)
	if err != nil {
		ce := cloud.Classified("get", op.Ref.Name, err)
		if ce.Kind == cloud.ErrorNotFound {
			ce = cloud.NewClassifiedError(cloud.ErrorTransient, "get", op.Ref.Name,
				fmt.Errorf("not visible after operation %s completed: %w", handle.ID, err))
		}
		return op.fail(pctx, rec, ce, provisioning.EventResourceFailed)
	}
	return op.ready(pctx, rec, observed, provisioning.EventResourceCreated)
}

// startRecord returns the record this pass works on. A record from a
// finished lifecycle (Ready, Deleting or Deleted) is superseded by a fresh
// Pending one; Pending, Creating and Failed records continue.
func (op *EnsureOperation[T]) startRecord(pctx *provisioning.Context, prev provisioning.ResourceRecord, found bool) provisioning.ResourceRecord {
	generation := pctx.Desired.Generation()

	rec := prev
	if !found || prev.State == provisioning.StateReady || prev.State == provisioning.StateDeleting || prev.State == provisioning.StateDeleted {
		rec = provisioning.NewRecord(op.Kind, op.Ref.Name, op.Ref.Project, generation)
	}
	rec.Name = op.Ref.Name
	rec.Project = op.Ref.Project
	rec.ObservedGeneration = generation
	rec.Labels = labels.Copy(op.Labels)
	rec.Selector = nil
	if op.Selector != nil {
		rec.Selector = labels.Copy(op.Selector)
	}
	return rec
}

func (op *EnsureOperation[T]) read(pctx *provisioning.Context) (*T, error) {
	var observed *T
	err := retry.Do(pctx, func(ctx context.Context) error {
		res, err := op.Get(ctx, op.Ref)
		if err != nil {
			return err
		}
		observed = res
		return nil
	},
		retry.WithMaxRetries(pctx.Timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(pctx.Timeouts.RetryInitialDelay),
		retry.WithRetryIf(cloud.IsTransient))
	return observed, err
}

// readopt refreshes a record that is already Ready for this generation.
// Nothing is written to the provider and the state is kept as is.
func (op *EnsureOperation[T]) readopt(pctx *provisioning.Context, prev provisioning.ResourceRecord, observed *T) (provisioning.ResourceRecord, error) {
	rec := prev
	rec.URI, rec.IPAddress = op.Observe(observed)
	rec.Labels = labels.Copy(op.Labels)
	rec.Selector = nil
	if op.Selector != nil {
		rec.Selector = labels.Copy(op.Selector)
	}
	rec.SetError(nil)
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     provisioning.EventResourceExists,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
		Message:  "unchanged",
	})
	return rec, nil
}

func (op *EnsureOperation[T]) ready(pctx *provisioning.Context, rec provisioning.ResourceRecord, observed *T, event provisioning.EventType) (provisioning.ResourceRecord, error) {
	if err := op.advance(pctx, &rec, provisioning.StateCreating, provisioning.StateReady); err != nil {
		return rec, err
	}
	rec.URI, rec.IPAddress = op.Observe(observed)
	rec.SetError(nil)
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     event,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
		Message:  rec.URI,
	})
	return rec, nil
}

// fail records a classified failure. A pass abandoned by its caller leaves
// the record as last persisted.
func (op *EnsureOperation[T]) fail(pctx *provisioning.Context, rec provisioning.ResourceRecord, ce *cloud.ClassifiedError, event provisioning.EventType) (provisioning.ResourceRecord, error) {
	if pctx.Err() != nil {
		if current, ok := pctx.Records.Get(op.Kind); ok {
			rec = current
		}
		return rec, ce
	}
	if err := op.advance(pctx, &rec, provisioning.StateCreating, provisioning.StateFailed); err != nil {
		return rec, err
	}
	rec.SetError(ce)
	pctx.Records.Put(rec)
	pctx.Emit(provisioning.Event{
		Type:     event,
		Kind:     op.Kind,
		Resource: op.Ref.Name,
		Err:      ce,
	})
	return rec, ce
}

// advance walks rec through states, skipping the one it is already in.
func (op *EnsureOperation[T]) advance(pctx *provisioning.Context, rec *provisioning.ResourceRecord, states ...provisioning.State) error {
	now := pctx.Now()
	for _, s := range states {
		if rec.State == s {
			continue
		}
		if err := rec.Transition(s, now); err != nil {
			return cloud.NewClassifiedError(cloud.ErrorUnknown, "record", op.Ref.Name, err)
		}
	}
	return nil
}
