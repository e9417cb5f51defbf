// Package destroy tears down the resources of a private service
// connection. Each resource is deleted only after confirming it still
// exists; a resource that is already gone counts as deleted. Failures are
// collected in a [TeardownError] so callers can continue with the
// remaining resources.
package destroy
