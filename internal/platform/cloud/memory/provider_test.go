package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/psclink/internal/platform/cloud"
)

func healthCheckFixture() *cloud.HealthCheck {
	return &cloud.HealthCheck{Name: "psc-c1-hc", Project: "mgmt", Protocol: "TCP", Port: 8080}
}

func TestInsertVisibleOnlyAfterOperationDone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(WithOperationPolls(2), WithOperationIDs(SequentialIDs()))
	hc := healthCheckFixture()

	op, err := p.InsertHealthCheck(ctx, hc)
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.ID)
	assert.Equal(t, cloud.OperationRunning, op.Status)

	_, err = p.GetHealthCheck(ctx, hc.Ref())
	assert.True(t, cloud.IsNotFound(err), "resource must not be visible before DONE")

	op, err = p.GetOperation(ctx, "mgmt", cloud.Global(), "op-1")
	require.NoError(t, err)
	assert.False(t, op.Done())

	op, err = p.GetOperation(ctx, "mgmt", cloud.Global(), "op-1")
	require.NoError(t, err)
	assert.True(t, op.Done())

	got, err := p.GetHealthCheck(ctx, hc.Ref())
	require.NoError(t, err)
	assert.Equal(t, BaseURL+"/projects/mgmt/global/healthChecks/psc-c1-hc", got.SelfLink)
	assert.Equal(t, 1, p.Mutations(cloud.KindHealthCheck))
	assert.Equal(t, []string{"Insert HealthCheck psc-c1-hc"}, p.Calls())
}

func TestInsertDuplicateWhileInFlight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(WithOperationPolls(3))

	_, err := p.InsertHealthCheck(ctx, healthCheckFixture())
	require.NoError(t, err)

	_, err = p.InsertHealthCheck(ctx, healthCheckFixture())
	assert.Equal(t, cloud.ErrorTransient, cloud.Classify(err))
	assert.Equal(t, 1, p.Mutations(cloud.KindHealthCheck))
}

func TestInsertRequiresReferencedResource(t *testing.T) {
	t.Parallel()
	p := New(WithOperationPolls(0))

	_, err := p.InsertBackendService(context.Background(), &cloud.BackendService{
		Name: "psc-c1-bs", Project: "mgmt", Region: "r1", HealthCheck: "missing",
	})
	assert.Equal(t, cloud.ErrorValidation, cloud.Classify(err))
	assert.Zero(t, p.TotalMutations())
}

func TestDeleteReferencedResourceIsRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(WithOperationPolls(0))
	link := p.Seed(cloud.KindHealthCheck, healthCheckFixture())
	p.Seed(cloud.KindBackendService, &cloud.BackendService{Name: "psc-c1-bs", Project: "mgmt", Region: "r1", HealthCheck: link})

	_, err := p.DeleteHealthCheck(ctx, healthCheckFixture().Ref())
	assert.Equal(t, cloud.ErrorConflict, cloud.Classify(err))

	_, err = p.DeleteBackendService(ctx, cloud.Ref{Project: "mgmt", Scope: cloud.Regional("r1"), Name: "psc-c1-bs"})
	require.NoError(t, err)
	_, err = p.DeleteHealthCheck(ctx, healthCheckFixture().Ref())
	require.NoError(t, err)
	assert.False(t, p.Exists(cloud.KindHealthCheck, healthCheckFixture().Ref()))
}

func TestFaultInjection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(WithOperationPolls(0))
	boom := &cloud.APIError{Code: 503, Message: "unavailable"}

	p.FailNext(Verb("Get", cloud.KindHealthCheck), boom)
	_, err := p.GetHealthCheck(ctx, healthCheckFixture().Ref())
	assert.True(t, errors.Is(err, boom))

	_, err = p.GetHealthCheck(ctx, healthCheckFixture().Ref())
	assert.True(t, cloud.IsNotFound(err), "FailNext is one-shot")

	p.FailAlways("GetOperation", boom)
	_, err = p.GetOperation(ctx, "mgmt", cloud.Global(), "x")
	assert.ErrorIs(t, err, boom)
	p.ClearFaults()
	_, err = p.GetOperation(ctx, "mgmt", cloud.Global(), "x")
	assert.True(t, cloud.IsNotFound(err))
}

func TestFailOperation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(WithOperationPolls(1))
	p.FailOperation(cloud.KindHealthCheck, &cloud.APIError{Code: 403, Reason: "quotaExceeded"})

	op, err := p.InsertHealthCheck(ctx, healthCheckFixture())
	require.NoError(t, err)

	op, err = p.GetOperation(ctx, op.Project, op.Scope, op.ID)
	require.NoError(t, err)
	require.True(t, op.Done())
	require.NotNil(t, op.Error)
	assert.False(t, p.Exists(cloud.KindHealthCheck, healthCheckFixture().Ref()))

	// a failed insert does not block a later attempt
	_, err = p.InsertHealthCheck(ctx, healthCheckFixture())
	require.NoError(t, err)
}

func TestBackendHealth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(WithOperationPolls(0), WithDefaultBackends(3))
	ref := cloud.Ref{Project: "mgmt", Scope: cloud.Regional("r1"), Name: "psc-c1-bs"}

	_, err := p.GetBackendHealth(ctx, ref)
	assert.True(t, cloud.IsNotFound(err))

	link := p.Seed(cloud.KindHealthCheck, healthCheckFixture())
	p.Seed(cloud.KindBackendService, &cloud.BackendService{Name: "psc-c1-bs", Project: "mgmt", Region: "r1", HealthCheck: link})

	h, err := p.GetBackendHealth(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, cloud.BackendHealth{Healthy: 3, Total: 3}, *h)

	p.SetBackendHealth(ref, 1, 3)
	h, err = p.GetBackendHealth(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, cloud.BackendHealth{Healthy: 1, Total: 3}, *h)
}

func TestGetReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New()
	hc := healthCheckFixture()
	hc.Labels = map[string]string{"a": "1"}
	p.Seed(cloud.KindHealthCheck, hc)

	got, err := p.GetHealthCheck(ctx, hc.Ref())
	require.NoError(t, err)
	got.Labels["a"] = "mutated"

	again, err := p.GetHealthCheck(ctx, hc.Ref())
	require.NoError(t, err)
	assert.Equal(t, "1", again.Labels["a"])
}

func TestAssignsAddresses(t *testing.T) {
	t.Parallel()
	p := New()
	p.Seed(cloud.KindForwardingRule, &cloud.ForwardingRule{Name: "a", Project: "mgmt", Region: "r1"})
	p.Seed(cloud.KindForwardingRule, &cloud.ForwardingRule{Name: "b", Project: "mgmt", Region: "r1"})

	a, err := p.GetForwardingRule(context.Background(), cloud.Ref{Project: "mgmt", Scope: cloud.Regional("r1"), Name: "a"})
	require.NoError(t, err)
	b, err := p.GetForwardingRule(context.Background(), cloud.Ref{Project: "mgmt", Scope: cloud.Regional("r1"), Name: "b"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.IPAddress)
	assert.NotEqual(t, a.IPAddress, b.IPAddress)
}
