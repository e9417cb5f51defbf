package platform

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/psclink/internal/config"
	"github.com/imamik/psclink/internal/credentials"
	"github.com/imamik/psclink/internal/orchestration"
	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/platform/cloud/memory"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/provisioning/destroy"
	"github.com/imamik/psclink/internal/provisioning/infrastructure"
)

// Platform is the capability shared by every variant.
type Platform interface {
	// Name returns the variant name as it appears in the configuration.
	Name() string
	// ReconcileCredentials obtains the clients of both sides. A side that
	// could not be obtained carries its classified error instead.
	ReconcileCredentials(ctx context.Context, req provisioning.Request) provisioning.Clients
	// ReconcileInfra runs one create pass over the chain of req.
	ReconcileInfra(ctx context.Context, req provisioning.Request, records *provisioning.RecordSet, opts ...provisioning.ContextOption) orchestration.Outcome
	// Teardown runs one delete pass over the chain of req.
	Teardown(ctx context.Context, req provisioning.Request, records *provisioning.RecordSet, opts ...provisioning.ContextOption) orchestration.Outcome

	sealed()
}

// Option configures a platform.
type Option func(*options)

type options struct {
	tokens   credentials.TokenSource
	connect  credentials.Connector
	provider *memory.Provider
	waiter   *cloud.Waiter
	timeouts *provisioning.Timeouts
}

// WithCredentials supplies the token source and connector of the external
// platform. Credential issuance is not part of this module.
func WithCredentials(tokens credentials.TokenSource, connect credentials.Connector) Option {
	return func(o *options) {
		o.tokens = tokens
		o.connect = connect
	}
}

// WithProvider replaces the in-process provider of the simulated platform.
func WithProvider(p *memory.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithWaiter replaces the waiter built from the configuration.
func WithWaiter(w *cloud.Waiter) Option {
	return func(o *options) {
		o.waiter = w
	}
}

// WithTimeouts replaces the timeouts read from the environment.
func WithTimeouts(t provisioning.Timeouts) Option {
	return func(o *options) {
		o.timeouts = &t
	}
}

// New selects the variant named by cfg.Platform. It is the only place
// where variants are distinguished.
func New(cfg *config.Config, opts ...Option) (Platform, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.waiter == nil {
		o.waiter = cfg.NewWaiter()
	}
	if o.timeouts == nil {
		t := cfg.Timeouts
		if t == nil {
			t = config.LoadTimeouts()
		}
		pt := t.Provisioning()
		o.timeouts = &pt
	}

	switch cfg.Platform {
	case config.PlatformSimulated, "":
		return newSimulated(cfg.Simulated, o), nil
	case config.PlatformExternal:
		return newExternal(o)
	default:
		return nil, fmt.Errorf("unknown platform %q", cfg.Platform)
	}
}

// base carries what every variant shares: one credential factory and one
// orchestrator over the stateless node reconciler and destroyer.
type base struct {
	factory      *credentials.Factory
	orchestrator *orchestration.Orchestrator
	waiter       *cloud.Waiter
	timeouts     provisioning.Timeouts
}

func newBase(tokens credentials.TokenSource, connect credentials.Connector, o *options) base {
	return base{
		factory:      credentials.NewFactory(tokens, connect),
		orchestrator: orchestration.NewOrchestrator(infrastructure.NewReconciler(), destroy.NewDestroyer()),
		waiter:       o.waiter,
		timeouts:     *o.timeouts,
	}
}

func (b *base) sealed() {}

func identities(req provisioning.Request) (mgmt, customer credentials.Identity) {
	return credentials.Identity{Side: credentials.Management, Principal: req.ManagementIdentity},
		credentials.Identity{Side: credentials.Customer, Principal: req.CustomerIdentity}
}

func (b *base) ReconcileCredentials(ctx context.Context, req provisioning.Request) provisioning.Clients {
	mgmt, customer := identities(req)
	var clients provisioning.Clients
	clients.Management, clients.ManagementErr = b.factory.ClientFor(ctx, req.ManagementProject, mgmt)
	clients.Customer, clients.CustomerErr = b.factory.ClientFor(ctx, req.CustomerProject, customer)
	return clients
}

func (b *base) ReconcileInfra(ctx context.Context, req provisioning.Request, records *provisioning.RecordSet, opts ...provisioning.ContextOption) orchestration.Outcome {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return orchestration.Outcome{Records: snapshot(records), Err: err}
	}
	pctx := b.passContext(ctx, req, records, opts)
	out := b.orchestrator.Reconcile(pctx)
	b.forgetDenied(ctx, req, out)
	return out
}

func (b *base) Teardown(ctx context.Context, req provisioning.Request, records *provisioning.RecordSet, opts ...provisioning.ContextOption) orchestration.Outcome {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return orchestration.Outcome{Records: snapshot(records), Err: err}
	}
	pctx := b.passContext(ctx, req, records, opts)
	out := b.orchestrator.Teardown(pctx)
	b.forgetDenied(ctx, req, out)
	return out
}

func (b *base) passContext(ctx context.Context, req provisioning.Request, records *provisioning.RecordSet, opts []provisioning.ContextOption) *provisioning.Context {
	clients := b.ReconcileCredentials(ctx, req)
	all := append([]provisioning.ContextOption{provisioning.WithTimeouts(b.timeouts)}, opts...)
	return provisioning.NewContext(ctx, req, clients, records, b.waiter, all...)
}

// forgetDenied drops cached clients after a permission failure so the next
// pass exchanges fresh tokens.
func (b *base) forgetDenied(ctx context.Context, req provisioning.Request, out orchestration.Outcome) {
	if !deniedIn(out) {
		return
	}
	mgmt, customer := identities(req)
	b.factory.Invalidate(req.ManagementProject, mgmt)
	b.factory.Invalidate(req.CustomerProject, customer)
	log.FromContext(ctx).V(1).Info("dropped cached clients after permission failure", "clusterId", req.ClusterID)
}

func deniedIn(out orchestration.Outcome) bool {
	if cloud.Classify(out.Err) == cloud.ErrorPermissionDenied {
		return true
	}
	for _, rec := range out.Records {
		if rec.LastError != nil && rec.LastError.Kind == cloud.ErrorPermissionDenied {
			return true
		}
	}
	return false
}

func snapshot(records *provisioning.RecordSet) []provisioning.ResourceRecord {
	if records == nil {
		return nil
	}
	return records.Snapshot()
}
