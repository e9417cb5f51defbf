package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

var (
	// Reconciliation metrics
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "psclink",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of passes by result",
		},
		[]string{"cluster", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "psclink",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of a pass in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~27min
		},
		[]string{"cluster"},
	)

	permissionEscalations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "psclink",
			Subsystem: "controller",
			Name:      "permission_escalations_total",
			Help:      "Number of times repeated permission failures were escalated",
		},
		[]string{"cluster"},
	)

	// Provider metrics
	providerMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "psclink",
			Subsystem: "provider",
			Name:      "mutations_total",
			Help:      "Total number of mutating provider calls by resource kind",
		},
		[]string{"kind"},
	)

	resourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "psclink",
			Subsystem: "resource",
			Name:      "errors_total",
			Help:      "Total number of classified resource failures",
		},
		[]string{"kind", "error_kind"},
	)

	// Health metrics
	healthBackends = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "psclink",
			Subsystem: "health",
			Name:      "backends",
			Help:      "Backends of the backend service by state (healthy, total)",
		},
		[]string{"cluster", "state"},
	)

	healthClassification = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "psclink",
			Subsystem: "health",
			Name:      "classification",
			Help:      "Health classification: 0 healthy, 1 degraded, 2 critical",
		},
		[]string{"cluster"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		permissionEscalations,
		providerMutations,
		resourceErrors,
		healthBackends,
		healthClassification,
	)
}

// recordReconcileMetric records a pass result.
func recordReconcileMetric(cluster, result string, duration float64) {
	reconcileTotal.WithLabelValues(cluster, result).Inc()
	reconcileDuration.WithLabelValues(cluster).Observe(duration)
}

func recordPermissionEscalationMetric(cluster string) {
	permissionEscalations.WithLabelValues(cluster).Inc()
}

func recordMutationMetric(kind cloud.Kind) {
	providerMutations.WithLabelValues(string(kind)).Inc()
}

func recordResourceErrorMetric(kind cloud.Kind, errKind cloud.ErrorKind) {
	resourceErrors.WithLabelValues(string(kind), string(errKind)).Inc()
}

// recordHealthMetric records the latest health snapshot of a cluster.
func recordHealthMetric(snap provisioning.HealthSnapshot) {
	healthBackends.WithLabelValues(snap.ClusterID, "healthy").Set(float64(snap.Healthy))
	healthBackends.WithLabelValues(snap.ClusterID, "total").Set(float64(snap.Total))
	healthClassification.WithLabelValues(snap.ClusterID).Set(healthValue(snap.Classification))
}

// forgetHealthMetric drops the gauges of a cluster that no longer exists.
func forgetHealthMetric(cluster string) {
	healthBackends.DeleteLabelValues(cluster, "healthy")
	healthBackends.DeleteLabelValues(cluster, "total")
	healthClassification.DeleteLabelValues(cluster)
}

func healthValue(c provisioning.HealthClass) float64 {
	switch c {
	case provisioning.HealthHealthy:
		return 0
	case provisioning.HealthDegraded:
		return 1
	default:
		return 2
	}
}
