package controller

import (
	"context"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/psclink/internal/config"
	"github.com/imamik/psclink/internal/platform"
	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/util/async"
)

// probeConcurrency bounds the clusters probed at once.
const probeConcurrency = 8

// HealthMonitor periodically reads backend health of provisioned chains.
// It only reads: it never writes records and never triggers a pass.
type HealthMonitor struct {
	platform platform.Platform
	interval time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	snapshots map[string]provisioning.HealthSnapshot
	// forgets counts Forget calls per cluster id. A probe that started
	// before the latest Forget drops its result.
	forgets map[string]uint64
}

// NewHealthMonitor creates a monitor probing every interval.
func NewHealthMonitor(p platform.Platform, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = config.DefaultHealthInterval
	}
	return &HealthMonitor{
		platform:  p,
		interval:  interval,
		now:       time.Now,
		snapshots: make(map[string]provisioning.HealthSnapshot),
		forgets:   make(map[string]uint64),
	}
}

// Run probes the requests returned by targets until ctx is cancelled.
func (m *HealthMonitor) Run(ctx context.Context, targets func() []provisioning.Request) {
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		m.ProbeAll(ctx, targets())
	}, m.interval)
}

// ProbeAll probes every request. A failed probe is recorded in its
// snapshot and never stops the others.
func (m *HealthMonitor) ProbeAll(ctx context.Context, reqs []provisioning.Request) {
	tasks := make([]async.Task, 0, len(reqs))
	for _, req := range reqs {
		tasks = append(tasks, async.Task{
			Name: req.ClusterID,
			Func: func(ctx context.Context) error {
				m.Probe(ctx, req)
				return nil
			},
		})
	}
	_ = async.RunParallel(ctx, tasks, probeConcurrency)
}

// Probe reads the backend health of one chain and stores the snapshot.
func (m *HealthMonitor) Probe(ctx context.Context, req provisioning.Request) provisioning.HealthSnapshot {
	req = req.WithDefaults()
	ref := provisioning.ComputeDesired(req).Ref(cloud.KindBackendService)
	logger := log.FromContext(ctx).WithValues("clusterId", req.ClusterID, "resource", ref.Name)

	m.mu.RLock()
	epoch := m.forgets[req.ClusterID]
	m.mu.RUnlock()

	snap := provisioning.HealthSnapshot{
		ClusterID:      req.ClusterID,
		Resource:       ref.Name,
		Timestamp:      m.now(),
		Classification: provisioning.HealthCritical,
	}

	clients := m.platform.ReconcileCredentials(ctx, req)
	if clients.ManagementErr != nil {
		snap.Error = clients.ManagementErr.Error()
	} else if health, err := clients.Management.GetBackendHealth(ctx, ref); err != nil {
		snap.Error = cloud.Classified("health", ref.Name, err).Error()
	} else {
		snap.Healthy = health.Healthy
		snap.Total = health.Total
		snap.Classification = provisioning.ClassifyHealth(health.Healthy, health.Total)
	}

	if snap.Error != "" {
		logger.V(1).Info("health probe failed", "error", snap.Error)
	} else {
		logger.V(1).Info("health probed", "healthy", snap.Healthy, "total", snap.Total, "classification", snap.Classification)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forgets[req.ClusterID] != epoch {
		logger.V(1).Info("cluster forgotten during probe; dropping snapshot")
		return snap
	}
	m.snapshots[req.ClusterID] = snap
	recordHealthMetric(snap)
	return snap
}

// Snapshot returns the latest snapshot of a cluster id.
func (m *HealthMonitor) Snapshot(clusterID string) (provisioning.HealthSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[clusterID]
	return snap, ok
}

// Forget drops the snapshot and gauges of a cluster id. Probes of the id
// still in flight do not bring them back.
func (m *HealthMonitor) Forget(clusterID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, clusterID)
	m.forgets[clusterID]++
	forgetHealthMetric(clusterID)
}
