package retry

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Policy bounds one retry loop.
type Policy struct {
	// Retries is the number of calls allowed after the first one.
	Retries int
	// Backoff shapes the waits between calls. Steps is managed by Do.
	Backoff wait.Backoff
	// RetryIf reports whether an error may be retried. Nil retries everything.
	RetryIf func(error) bool
}

// Option adjusts a Policy.
type Option func(*Policy)

func defaultPolicy() *Policy {
	return &Policy{
		Retries: 5,
		Backoff: wait.Backoff{
			Duration: time.Second,
			Factor:   2.0,
			Jitter:   0.1,
			Cap:      30 * time.Second,
		},
	}
}

// Do calls operation until it succeeds, the policy gives up, or ctx is
// done. The error of the last call is wrapped in the returned error.
func Do(ctx context.Context, operation func(context.Context) error, opts ...Option) error {
	p := defaultPolicy()
	for _, opt := range opts {
		opt(p)
	}
	backoff := p.schedule()

	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		if p.RetryIf != nil && !p.RetryIf(err) {
			return err
		}
		if attempt > p.Retries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(backoff.Step())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}
}

func (p *Policy) schedule() wait.Backoff {
	b := p.Backoff
	b.Steps = p.Retries
	if b.Factor < 1 {
		b.Factor = 1
	}
	return b
}

// WithMaxRetries sets the number of calls allowed after the first one.
func WithMaxRetries(n int) Option {
	return func(p *Policy) {
		p.Retries = n
	}
}

// WithInitialDelay sets the wait before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.Backoff.Duration = d
	}
}

// WithMaxDelay caps every wait.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) {
		p.Backoff.Cap = d
	}
}

// WithRetryIf restricts retries to errors accepted by pred.
func WithRetryIf(pred func(error) bool) Option {
	return func(p *Policy) {
		p.RetryIf = pred
	}
}
