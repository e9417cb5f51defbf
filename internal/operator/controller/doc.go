// Package controller runs the reconciliation engine.
//
// An [Engine] keeps one entry per cluster id and feeds the ids through a
// rate-limiting work queue served by a bounded pool of workers. The queue
// hands a key to one worker at a time, so passes for a cluster id never
// overlap while different ids proceed in parallel. After each pass the
// engine publishes the Available condition and schedules the next pass
// according to the retry policy of the failure kind.
//
// A [HealthMonitor] probes backend health of the provisioned chains on its
// own cadence. It is read-only and independent of the passes.
//
// Prometheus collectors are registered on controller-runtime's metrics
// registry.
package controller
