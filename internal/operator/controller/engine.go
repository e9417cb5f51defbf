package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/workqueue"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/psclink/internal/config"
	"github.com/imamik/psclink/internal/orchestration"
	"github.com/imamik/psclink/internal/platform"
	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/provisioning/status"
	"github.com/imamik/psclink/internal/store"
)

const (
	resultSuccess = "success"
	resultError   = "error"

	// storeTimeout bounds one record store write.
	storeTimeout = 30 * time.Second
)

// cluster is the engine's view of one cluster id. Fields are guarded by
// Engine.mu; the record set carries its own lock.
type cluster struct {
	request    provisioning.Request
	records    *provisioning.RecordSet
	conditions []metav1.Condition
	teardown   bool
	denied     int
}

// Engine reconciles many cluster ids on a bounded pool of workers. The
// work queue never hands the same key to two workers at once, so passes
// for one cluster id are serialized while different ids run in parallel.
type Engine struct {
	platform platform.Platform
	store    store.Store
	policy   config.RetryPolicy
	workers  int
	resync   time.Duration
	health   *HealthMonitor
	queue    workqueue.TypedRateLimitingInterface[string]
	log      logr.Logger

	mu       sync.RWMutex
	clusters map[string]*cluster
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHealthMonitor runs m alongside the workers and adds its snapshots
// to status reports.
func WithHealthMonitor(m *HealthMonitor) EngineOption {
	return func(e *Engine) {
		e.health = m
	}
}

// WithLogger replaces the logger used outside of passes.
func WithLogger(l logr.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine creates an engine. Worker count, retry policy and resync
// interval come from cfg.
func NewEngine(p platform.Platform, s store.Store, cfg *config.Config, opts ...EngineOption) *Engine {
	workers := cfg.Workers
	if workers < 1 {
		workers = config.DefaultWorkers
	}
	resync := cfg.ResyncInterval
	if resync <= 0 {
		resync = config.DefaultResyncInterval
	}
	policy := cfg.Retry
	if policy == (config.RetryPolicy{}) {
		policy = config.DefaultRetryPolicy()
	}
	if policy.EscalateAfter < 1 {
		policy.EscalateAfter = config.DefaultEscalateAfter
	}

	e := &Engine{
		platform: p,
		store:    s,
		policy:   policy,
		workers:  workers,
		resync:   resync,
		queue: workqueue.NewTypedRateLimitingQueueWithConfig(
			workqueue.DefaultTypedControllerRateLimiter[string](),
			workqueue.TypedRateLimitingQueueConfig[string]{Name: "psclink"},
		),
		log:      log.Log.WithName("engine"),
		clusters: make(map[string]*cluster),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit accepts a request and schedules a pass for it. A request for an
// older generation than the one already accepted or stored is rejected,
// as is a changed request that reuses the accepted generation. Both
// errors classify as Validation.
func (e *Engine) Submit(ctx context.Context, req provisioning.Request) error {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return err
	}
	id := req.ClusterID

	e.mu.RLock()
	_, known := e.clusters[id]
	e.mu.RUnlock()

	var stored []provisioning.ResourceRecord
	if !known {
		var err error
		if stored, err = e.store.Load(ctx, id); err != nil {
			return cloud.NewClassifiedError(cloud.ErrorTransient, "submit", id, fmt.Errorf("loading records: %w", err))
		}
	}

	e.mu.Lock()
	c, ok := e.clusters[id]
	if !ok {
		if g := maxGeneration(stored); req.Generation < g {
			e.mu.Unlock()
			return staleGeneration(id, req.Generation, g)
		}
		c = &cluster{records: e.newRecordSet(id, stored)}
		e.clusters[id] = c
	} else {
		switch {
		case req.Generation < c.request.Generation:
			e.mu.Unlock()
			return staleGeneration(id, req.Generation, c.request.Generation)
		case req.Generation == c.request.Generation && !c.teardown && !cmp.Equal(req, c.request):
			e.mu.Unlock()
			return cloud.NewClassifiedError(cloud.ErrorValidation, "submit", id,
				fmt.Errorf("generation %d was already accepted with different parameters", req.Generation))
		}
	}
	c.request = req
	c.teardown = false
	e.mu.Unlock()

	e.log.V(1).Info("request accepted", "clusterId", id, "generation", req.Generation)
	e.queue.Add(id)
	return nil
}

// Teardown schedules deletion of every resource of a cluster id. The
// request is forgotten once all records reach Deleted.
func (e *Engine) Teardown(clusterID string) error {
	e.mu.Lock()
	c, ok := e.clusters[clusterID]
	if ok {
		c.teardown = true
	}
	e.mu.Unlock()

	if !ok {
		return cloud.NewClassifiedError(cloud.ErrorNotFound, "teardown", clusterID, fmt.Errorf("cluster %q is not known", clusterID))
	}
	e.log.V(1).Info("teardown requested", "clusterId", clusterID)
	e.queue.Add(clusterID)
	return nil
}

// Status returns the report of a cluster id.
func (e *Engine) Status(clusterID string) (status.Report, bool) {
	e.mu.RLock()
	c, ok := e.clusters[clusterID]
	if !ok {
		e.mu.RUnlock()
		return status.Report{}, false
	}
	report := status.Report{
		ClusterID:  clusterID,
		Generation: c.request.Generation,
		Conditions: append([]metav1.Condition(nil), c.conditions...),
	}
	records := c.records
	e.mu.RUnlock()

	report.Records = records.Snapshot()
	if e.health != nil {
		if snap, ok := e.health.Snapshot(clusterID); ok {
			report.Health = &snap
		}
	}
	return report, true
}

// Requests returns the accepted requests that are not being torn down,
// ordered by cluster id.
func (e *Engine) Requests() []provisioning.Request {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]provisioning.Request, 0, len(e.clusters))
	for _, c := range e.clusters {
		if !c.teardown {
			out = append(out, c.request)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClusterID < out[j].ClusterID })
	return out
}

// Start runs the workers and the health monitor until ctx is cancelled.
// Passes in flight observe the cancellation and leave their records as
// last persisted.
func (e *Engine) Start(ctx context.Context) error {
	defer e.queue.ShutDown()

	e.log.Info("starting engine", "workers", e.workers, "platform", e.platform.Name())

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wait.UntilWithContext(ctx, e.runWorker, time.Second)
		}()
	}
	if e.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.health.Run(ctx, e.Requests)
		}()
	}

	<-ctx.Done()
	e.log.Info("stopping engine")
	e.queue.ShutDown()
	wg.Wait()
	return nil
}

func (e *Engine) runWorker(ctx context.Context) {
	for e.processNext(ctx) {
	}
}

func (e *Engine) processNext(ctx context.Context) bool {
	key, shutdown := e.queue.Get()
	if shutdown {
		return false
	}
	defer e.queue.Done(key)

	e.reconcileKey(ctx, key)
	return true
}

func (e *Engine) reconcileKey(ctx context.Context, key string) {
	e.mu.RLock()
	c, ok := e.clusters[key]
	var (
		req      provisioning.Request
		records  *provisioning.RecordSet
		teardown bool
	)
	if ok {
		req, records, teardown = c.request, c.records, c.teardown
	}
	e.mu.RUnlock()
	if !ok {
		e.queue.Forget(key)
		return
	}

	logger := e.log.WithValues("clusterId", key, "generation", req.Generation)
	ctx = log.IntoContext(ctx, logger)
	observer := provisioning.WithObserver(newPassObserver(provisioning.NewLogObserver(logger)))

	start := time.Now()
	var out orchestration.Outcome
	if teardown {
		out = e.platform.Teardown(ctx, req, records, observer)
	} else {
		out = e.platform.ReconcileInfra(ctx, req, records, observer)
	}

	result := resultSuccess
	if out.Err != nil {
		result = resultError
	}
	recordReconcileMetric(key, result, time.Since(start).Seconds())

	if ctx.Err() != nil {
		return
	}
	if teardown && out.Err == nil {
		e.forget(ctx, key)
		return
	}
	e.settle(ctx, key, teardown, out)
}

// settle publishes the outcome and schedules the next pass.
func (e *Engine) settle(ctx context.Context, key string, teardown bool, out orchestration.Outcome) {
	logger := log.FromContext(ctx)
	kind := out.ErrorKind()

	e.mu.Lock()
	c, ok := e.clusters[key]
	var denied int
	if ok {
		status.SetCondition(&c.conditions, status.Publish(out.Records, c.request.Generation))
		if kind == cloud.ErrorPermissionDenied {
			c.denied++
		} else {
			c.denied = 0
		}
		denied = c.denied
	}
	e.mu.Unlock()
	if !ok {
		e.queue.Forget(key)
		return
	}

	if out.Err == nil {
		e.queue.Forget(key)
		if !teardown {
			logger.V(1).Info("pass converged", "resync", e.resync)
			e.queue.AddAfter(key, e.resync)
		}
		return
	}

	if kind == cloud.ErrorPermissionDenied && denied%e.policy.EscalateAfter == 0 {
		logger.Error(out.Err, "permission failures are not clearing", "consecutive", denied)
		recordPermissionEscalationMetric(key)
	}

	delay, retry := e.policy.Delay(kind)
	if !retry {
		logger.Error(out.Err, "pass failed; not retrying until a new generation is submitted", "errorKind", kind)
		e.queue.Forget(key)
		return
	}
	logger.Info("pass failed; requeueing", "errorKind", kind, "after", delay, "error", out.Err.Error())
	e.queue.AddAfter(key, delay)
}

// forget drops a cluster id after a complete teardown.
func (e *Engine) forget(ctx context.Context, key string) {
	logger := log.FromContext(ctx)
	if err := e.store.Delete(ctx, key); err != nil {
		logger.Error(err, "failed to delete stored records; retrying")
		e.queue.AddRateLimited(key)
		return
	}

	e.mu.Lock()
	if c, ok := e.clusters[key]; ok && c.teardown {
		delete(e.clusters, key)
	}
	e.mu.Unlock()

	if e.health != nil {
		e.health.Forget(key)
	}
	e.queue.Forget(key)
	logger.Info("teardown complete")
}

// newRecordSet persists every record change of one cluster id.
func (e *Engine) newRecordSet(id string, stored []provisioning.ResourceRecord) *provisioning.RecordSet {
	return provisioning.NewRecordSet(stored, func(snapshot []provisioning.ResourceRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := e.store.Save(ctx, id, snapshot); err != nil {
			e.log.Error(err, "failed to persist records", "clusterId", id)
		}
	})
}

func maxGeneration(records []provisioning.ResourceRecord) int64 {
	var g int64
	for _, rec := range records {
		if rec.ObservedGeneration > g {
			g = rec.ObservedGeneration
		}
	}
	return g
}

func staleGeneration(id string, got, accepted int64) error {
	return cloud.NewClassifiedError(cloud.ErrorValidation, "submit", id,
		fmt.Errorf("generation %d is older than accepted generation %d", got, accepted))
}
