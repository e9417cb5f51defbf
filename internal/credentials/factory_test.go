package credentials

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/platform/cloud/memory"
)

func connectTo(p *memory.Provider, calls *atomic.Int32) Connector {
	return func(context.Context, string, Identity, Token) (cloud.Client, error) {
		if calls != nil {
			calls.Add(1)
		}
		return p, nil
	}
}

func TestClientForScopesToProject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider := memory.New()
	f := NewFactory(StaticTokenSource("t"), connectTo(provider, nil))

	client, err := f.ClientFor(ctx, "mgmt", Identity{Side: Management})
	require.NoError(t, err)

	_, err = client.GetHealthCheck(ctx, cloud.Ref{Project: "mgmt", Scope: cloud.Global(), Name: "x"})
	assert.True(t, cloud.IsNotFound(err), "own project reaches the provider")

	_, err = client.GetHealthCheck(ctx, cloud.Ref{Project: "customer", Scope: cloud.Global(), Name: "x"})
	assert.Equal(t, cloud.ErrorPermissionDenied, cloud.Classify(err))

	_, err = client.InsertFirewallRule(ctx, &cloud.FirewallRule{Name: "fw", Project: "customer"})
	assert.Equal(t, cloud.ErrorPermissionDenied, cloud.Classify(err))
	assert.Zero(t, provider.TotalMutations())
}

func TestClientForCachesPerProjectAndIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var connects atomic.Int32
	f := NewFactory(StaticTokenSource("t"), connectTo(memory.New(), &connects))

	a, err := f.ClientFor(ctx, "mgmt", Identity{Side: Management})
	require.NoError(t, err)
	b, err := f.ClientFor(ctx, "mgmt", Identity{Side: Management})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, int32(1), connects.Load())

	c, err := f.ClientFor(ctx, "customer", Identity{Side: Customer})
	require.NoError(t, err)
	assert.NotSame(t, a, c, "sides never share a client")
	assert.Equal(t, int32(2), connects.Load())

	f.Invalidate("mgmt", Identity{Side: Management})
	_, err = f.ClientFor(ctx, "mgmt", Identity{Side: Management})
	require.NoError(t, err)
	assert.Equal(t, int32(3), connects.Load())
}

func TestClientForRefreshesExpiredTokens(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var issued atomic.Int32
	tokens := TokenSourceFunc(func(context.Context, string, Identity) (Token, error) {
		issued.Add(1)
		return Token{Value: "t", Expiry: now.Add(10 * time.Minute)}, nil
	})
	clock := now
	f := NewFactory(tokens, connectTo(memory.New(), nil), WithClock(func() time.Time { return clock }))

	_, err := f.ClientFor(context.Background(), "mgmt", Identity{Side: Management})
	require.NoError(t, err)
	_, err = f.ClientFor(context.Background(), "mgmt", Identity{Side: Management})
	require.NoError(t, err)
	assert.Equal(t, int32(1), issued.Load())

	clock = now.Add(11 * time.Minute)
	_, err = f.ClientFor(context.Background(), "mgmt", Identity{Side: Management})
	require.NoError(t, err)
	assert.Equal(t, int32(2), issued.Load())
}

func TestClientForSideFailureIsIsolated(t *testing.T) {
	t.Parallel()
	tokens := TokenSourceFunc(func(_ context.Context, _ string, id Identity) (Token, error) {
		if id.Side == Management {
			return Token{}, errors.New("workload identity pool rejected the assertion")
		}
		return Token{Value: "t"}, nil
	})
	f := NewFactory(tokens, connectTo(memory.New(), nil))

	_, err := f.ClientFor(context.Background(), "mgmt", Identity{Side: Management, Principal: "sa@mgmt"})
	require.Error(t, err)
	assert.Equal(t, cloud.ErrorPermissionDenied, cloud.Classify(err))

	client, err := f.ClientFor(context.Background(), "customer", Identity{Side: Customer})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClientForKeepsTransientClassification(t *testing.T) {
	t.Parallel()
	tokens := TokenSourceFunc(func(context.Context, string, Identity) (Token, error) {
		return Token{}, &cloud.APIError{Code: 503, Message: "sts unavailable"}
	})
	f := NewFactory(tokens, connectTo(memory.New(), nil))

	_, err := f.ClientFor(context.Background(), "mgmt", Identity{Side: Management})
	assert.Equal(t, cloud.ErrorTransient, cloud.Classify(err))
}

func TestClientForValidation(t *testing.T) {
	t.Parallel()
	f := NewFactory(StaticTokenSource("t"), connectTo(memory.New(), nil))

	_, err := f.ClientFor(context.Background(), "", Identity{Side: Management})
	assert.Equal(t, cloud.ErrorValidation, cloud.Classify(err))

	_, err = f.ClientFor(context.Background(), "mgmt", Identity{Side: "other"})
	assert.Equal(t, cloud.ErrorValidation, cloud.Classify(err))
}

func TestClientForSingleFlight(t *testing.T) {
	t.Parallel()
	var connects atomic.Int32
	release := make(chan struct{})
	f := NewFactory(StaticTokenSource("t"), func(context.Context, string, Identity, Token) (cloud.Client, error) {
		connects.Add(1)
		<-release
		return memory.New(), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ClientFor(context.Background(), "mgmt", Identity{Side: Management})
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), connects.Load())
}

func TestTokenValid(t *testing.T) {
	t.Parallel()
	now := time.Now()
	assert.False(t, Token{}.Valid(now))
	assert.True(t, Token{Value: "x"}.Valid(now))
	assert.True(t, Token{Value: "x", Expiry: now.Add(time.Hour)}.Valid(now))
	assert.False(t, Token{Value: "x", Expiry: now.Add(10 * time.Second)}.Valid(now))
}
