package provisioning

import (
	"context"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/psclink/internal/credentials"
	"github.com/imamik/psclink/internal/platform/cloud"
)

// Clients holds the provider clients of both sides. A side whose client
// could not be obtained carries the error instead, so work that needs
// only the other side can still proceed.
type Clients struct {
	Management    cloud.Client
	ManagementErr error
	Customer      cloud.Client
	CustomerErr   error
}

// For returns the client of a side or the error that prevented obtaining it.
func (c Clients) For(side credentials.Side) (cloud.Client, error) {
	switch side {
	case credentials.Management:
		if c.Management == nil && c.ManagementErr == nil {
			return nil, fmt.Errorf("no %s client configured", side)
		}
		return c.Management, c.ManagementErr
	case credentials.Customer:
		if c.Customer == nil && c.CustomerErr == nil {
			return nil, fmt.Errorf("no %s client configured", side)
		}
		return c.Customer, c.CustomerErr
	default:
		return nil, fmt.Errorf("unknown side %q", side)
	}
}

// Timeouts bound the provider calls of one pass.
type Timeouts struct {
	Delete            time.Duration // Upper bound for deleting one resource
	RetryMaxAttempts  int           // Retries of transient read failures
	RetryInitialDelay time.Duration // Initial delay between read retries
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Delete:            5 * time.Minute,
		RetryMaxAttempts:  5,
		RetryInitialDelay: time.Second,
	}
}

// Context carries everything one reconciliation pass for one cluster id
// needs. It is created per pass and never shared between keys.
type Context struct {
	context.Context
	Request  Request
	Desired  DesiredState
	Clients  Clients
	Records  *RecordSet
	Waiter   *cloud.Waiter
	Observer Observer
	Timeouts Timeouts
	Now      func() time.Time
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithObserver replaces the log-backed observer.
func WithObserver(o Observer) ContextOption {
	return func(c *Context) {
		c.Observer = o
	}
}

// WithTimeouts sets the pass timeouts.
func WithTimeouts(t Timeouts) ContextOption {
	return func(c *Context) {
		c.Timeouts = t
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ContextOption {
	return func(c *Context) {
		c.Now = now
	}
}

// NewContext creates the context of one pass. The desired state is
// computed here, from the request alone.
func NewContext(
	ctx context.Context,
	req Request,
	clients Clients,
	records *RecordSet,
	waiter *cloud.Waiter,
	opts ...ContextOption,
) *Context {
	logger := log.FromContext(ctx).WithValues("clusterId", req.ClusterID, "generation", req.Generation)
	ctx = log.IntoContext(ctx, logger)

	if records == nil {
		records = NewRecordSet(nil, nil)
	}
	if waiter == nil {
		waiter = cloud.NewWaiter()
	}

	c := &Context{
		Context:  ctx,
		Request:  req,
		Desired:  ComputeDesired(req),
		Clients:  clients,
		Records:  records,
		Waiter:   waiter,
		Observer: NewLogObserver(logger),
		Timeouts: DefaultTimeouts(),
		Now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithContext returns a shallow copy bound to ctx.
func (c *Context) WithContext(ctx context.Context) *Context {
	out := *c
	out.Context = ctx
	return &out
}
