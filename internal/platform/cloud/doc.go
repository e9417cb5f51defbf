// Package cloud defines the provider-neutral API surface consumed by the
// reconciliation engine.
//
// It holds the typed resources of a Private Service Connect chain (health
// check, backend service, forwarding rule, service attachment, consumer
// endpoint, DNS records, firewall rule), the per-kind manager interfaces
// composed into [Client], asynchronous [Operation] handles, the error
// taxonomy produced by [Classify], and the [Waiter] that polls operations
// to a terminal state.
//
// Concrete provider adapters translate their wire errors into [*APIError]
// at the adapter boundary so that classification stays a pure function of
// status code, reason and message.
package cloud
