package testing

import (
	"context"
	"time"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/platform/cloud/memory"
	"github.com/imamik/psclink/internal/provisioning"
)

// ChainFixture wires an in-memory provider into pass contexts. Both sides
// share the provider unless Clients is replaced.
type ChainFixture struct {
	Provider *memory.Provider
	Records  *provisioning.RecordSet
	Events   *EventRecorder
	Clients  provisioning.Clients
	Waiter   *cloud.Waiter
	Timeouts provisioning.Timeouts
}

// NewChainFixture creates a fixture with an empty provider and record set.
func NewChainFixture(opts ...memory.Option) *ChainFixture {
	p := memory.New(append([]memory.Option{memory.WithOperationIDs(memory.SequentialIDs())}, opts...)...)
	return &ChainFixture{
		Provider: p,
		Records:  provisioning.NewRecordSet(nil, nil),
		Events:   &EventRecorder{},
		Clients:  provisioning.Clients{Management: p, Customer: p},
		Waiter:   FastWaiter(),
		Timeouts: FastTimeouts(),
	}
}

// PassContext creates the context of one pass over req.
func (f *ChainFixture) PassContext(ctx context.Context, req provisioning.Request, opts ...provisioning.ContextOption) *provisioning.Context {
	base := []provisioning.ContextOption{
		provisioning.WithObserver(f.Events),
		provisioning.WithTimeouts(f.Timeouts),
	}
	return provisioning.NewContext(ctx, req, f.Clients, f.Records, f.Waiter, append(base, opts...)...)
}

// FastWaiter polls every millisecond and gives up after two seconds.
func FastWaiter() *cloud.Waiter {
	return cloud.NewWaiter(
		cloud.WithPollInterval(time.Millisecond),
		cloud.WithScopeDeadline(cloud.ScopeGlobal, 2*time.Second),
		cloud.WithScopeDeadline(cloud.ScopeRegional, 2*time.Second),
		cloud.WithScopeDeadline(cloud.ScopeProject, 2*time.Second),
	)
}

// FastTimeouts keeps retries short.
func FastTimeouts() provisioning.Timeouts {
	return provisioning.Timeouts{
		Delete:            2 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: time.Millisecond,
	}
}
