// Package infrastructure reconciles the individual resources of a private
// service connection: the producer-side health check, backend service,
// forwarding rule and service attachment, and the consumer-side endpoint,
// DNS zone and firewall rule.
//
// Every kind follows the same get-compare-create sequence implemented by
// [EnsureOperation]. An existing resource whose immutable fields match the
// desired state is adopted without any mutation; one that differs is a
// Conflict and is never overwritten.
package infrastructure
