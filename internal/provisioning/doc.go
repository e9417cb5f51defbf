// Package provisioning provides the shared types threaded through a
// reconciliation pass.
//
// # Subpackages
//
//   - infrastructure/: per-kind create-or-adopt-or-conflict reconciliation
//   - destroy/: per-kind deletion and the aggregated teardown error
//   - status/: folding resource records into one availability condition
//
// # Core Types
//
// Request is the desired state for one cluster id at one generation.
// DesiredState is the immutable value computed from a Request at the start
// of every pass. ResourceRecord tracks one chain node through its lifecycle
// and RecordSet holds the records of one key. Context carries all of the
// above plus the per-side provider clients, the operation waiter and the
// observer into every call of a pass.
package provisioning
