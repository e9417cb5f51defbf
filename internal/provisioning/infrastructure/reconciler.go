package infrastructure

import (
	"fmt"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// Reconciler drives one chain node toward its desired state.
type Reconciler struct{}

// NewReconciler creates a resource reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile ensures the resource of kind exists and matches the desired
// state, and returns its record. It never touches other kinds; upstream
// records must already be Ready.
func (r *Reconciler) Reconcile(pctx *provisioning.Context, kind cloud.Kind) (provisioning.ResourceRecord, error) {
	client, err := pctx.Clients.For(provisioning.SideOf(kind))
	if err != nil {
		return r.failNode(pctx, kind, cloud.Classified("credentials", pctx.Desired.Name(kind), err))
	}

	switch kind {
	case cloud.KindHealthCheck:
		return r.reconcileHealthCheck(pctx, client)
	case cloud.KindBackendService:
		return r.reconcileBackendService(pctx, client)
	case cloud.KindForwardingRule:
		return r.reconcileForwardingRule(pctx, client)
	case cloud.KindServiceAttachment:
		return r.reconcileServiceAttachment(pctx, client)
	case cloud.KindConsumerEndpoint:
		return r.reconcileConsumerEndpoint(pctx, client)
	case cloud.KindDNSRecords:
		return r.reconcileDNSRecords(pctx, client)
	case cloud.KindFirewallRule:
		return r.reconcileFirewallRule(pctx, client)
	default:
		return provisioning.ResourceRecord{}, cloud.NewClassifiedError(cloud.ErrorValidation, "reconcile", string(kind),
			fmt.Errorf("unknown resource kind %q", kind))
	}
}

// failNode marks kind Failed without calling the provider.
func (r *Reconciler) failNode(pctx *provisioning.Context, kind cloud.Kind, ce *cloud.ClassifiedError) (provisioning.ResourceRecord, error) {
	op := &EnsureOperation[struct{}]{
		Kind:   kind,
		Ref:    pctx.Desired.Ref(kind),
		Labels: pctx.Desired.Labels(kind),
	}
	prev, found := pctx.Records.Get(kind)
	return op.fail(pctx, op.startRecord(pctx, prev, found), ce, provisioning.EventResourceFailed)
}

// upstream returns the Ready record of kind. A missing or non-Ready
// upstream leaves the dependent node untouched.
func upstream(pctx *provisioning.Context, dependent, kind cloud.Kind) (provisioning.ResourceRecord, error) {
	rec, ok := pctx.Records.Get(kind)
	if !ok || !rec.Ready() || rec.URI == "" {
		return rec, cloud.NewClassifiedError(cloud.ErrorTransient, "reconcile", pctx.Desired.Name(dependent),
			fmt.Errorf("upstream %s is not Ready", kind))
	}
	return rec, nil
}

// current returns the record of kind as it stands, or a Pending one.
func current(pctx *provisioning.Context, kind cloud.Kind) provisioning.ResourceRecord {
	if rec, ok := pctx.Records.Get(kind); ok {
		return rec
	}
	ref := pctx.Desired.Ref(kind)
	return provisioning.NewRecord(kind, ref.Name, ref.Project, pctx.Desired.Generation())
}
