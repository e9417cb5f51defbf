// Package config loads the engine configuration.
//
// A [Config] is read from YAML with [LoadFile]. It selects the platform
// variant and the record store backend, sizes the worker pool, sets the
// requeue delay per retryable error kind and lists the requests to
// reconcile. Operation deadlines and retry bounds are read from PSCLINK_*
// environment variables by [LoadTimeouts].
package config
