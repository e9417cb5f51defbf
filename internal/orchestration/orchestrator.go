package orchestration

import (
	"context"
	"fmt"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/provisioning/destroy"
	"github.com/imamik/psclink/internal/util/async"
)

// NodeReconciler reconciles one chain node.
type NodeReconciler interface {
	Reconcile(pctx *provisioning.Context, kind cloud.Kind) (provisioning.ResourceRecord, error)
}

// NodeDestroyer deletes one chain node.
type NodeDestroyer interface {
	Delete(pctx *provisioning.Context, kind cloud.Kind) (provisioning.ResourceRecord, error)
}

// Outcome is the result of one pass.
type Outcome struct {
	// Records is the record snapshot after the pass, in chain order.
	Records []provisioning.ResourceRecord
	// Err joins the chain failure and the firewall failure, chain first.
	Err error
}

// ErrorKind classifies the first failure of the pass.
func (o Outcome) ErrorKind() cloud.ErrorKind {
	return cloud.Classify(o.Err)
}

// Ready reports whether every record of the pass is Ready.
func (o Outcome) Ready() bool {
	if o.Err != nil || len(o.Records) != len(provisioning.AllKinds) {
		return false
	}
	for _, rec := range o.Records {
		if !rec.Ready() {
			return false
		}
	}
	return true
}

// Orchestrator sequences the nodes of one pass.
type Orchestrator struct {
	reconciler NodeReconciler
	destroyer  NodeDestroyer
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(r NodeReconciler, d NodeDestroyer) *Orchestrator {
	return &Orchestrator{reconciler: r, destroyer: d}
}

// Reconcile runs the chain in order alongside the firewall rule.
func (o *Orchestrator) Reconcile(pctx *provisioning.Context) Outcome {
	pctx.Emit(provisioning.Event{Type: provisioning.EventPassStarted, Message: "reconcile"})

	err := async.RunParallel(pctx, []async.Task{
		{Name: "chain", Func: func(context.Context) error { return o.reconcileChain(pctx) }},
		{Name: "firewall", Func: func(context.Context) error { return o.reconcileNode(pctx, cloud.KindFirewallRule) }},
	}, 0)

	return o.finish(pctx, "reconcile", err)
}

func (o *Orchestrator) reconcileChain(pctx *provisioning.Context) error {
	for _, kind := range provisioning.ChainOrder {
		if err := o.reconcileNode(pctx, kind); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) reconcileNode(pctx *provisioning.Context, kind cloud.Kind) error {
	if err := pctx.Err(); err != nil {
		return cloud.NewClassifiedError(cloud.ErrorTransient, "reconcile", pctx.Desired.Name(kind),
			fmt.Errorf("pass abandoned before %s: %w", kind, err))
	}
	rec, err := o.reconciler.Reconcile(pctx, kind)
	if err != nil {
		return err
	}
	if !rec.Ready() {
		return cloud.NewClassifiedError(cloud.ErrorUnknown, "reconcile", rec.Name,
			fmt.Errorf("%s ended in state %s", kind, rec.State))
	}
	return nil
}

// Teardown deletes the chain in reverse order and then the firewall rule.
// Every node is attempted; failures are collected in a *destroy.TeardownError.
func (o *Orchestrator) Teardown(pctx *provisioning.Context) Outcome {
	pctx.Emit(provisioning.Event{Type: provisioning.EventPassStarted, Message: "teardown"})

	order := make([]cloud.Kind, 0, len(provisioning.AllKinds))
	for i := len(provisioning.ChainOrder) - 1; i >= 0; i-- {
		order = append(order, provisioning.ChainOrder[i])
	}
	order = append(order, cloud.KindFirewallRule)

	te := &destroy.TeardownError{}
	for _, kind := range order {
		if err := pctx.Err(); err != nil {
			te.Add(cloud.NewClassifiedError(cloud.ErrorTransient, "delete", pctx.Desired.Name(kind),
				fmt.Errorf("teardown abandoned before %s: %w", kind, err)))
			break
		}
		if _, err := o.destroyer.Delete(pctx, kind); err != nil {
			te.Add(fmt.Errorf("%s: %w", kind, err))
		}
	}

	return o.finish(pctx, "teardown", te.ErrOrNil())
}

func (o *Orchestrator) finish(pctx *provisioning.Context, pass string, err error) Outcome {
	if err != nil {
		pctx.Emit(provisioning.Event{Type: provisioning.EventPassFailed, Message: pass, Err: err})
	} else {
		pctx.Emit(provisioning.Event{Type: provisioning.EventPassCompleted, Message: pass})
	}
	return Outcome{Records: pctx.Records.Snapshot(), Err: err}
}
