// Package retry retries provider calls that fail with transient errors.
//
// [Do] backs off exponentially using wait.Backoff from apimachinery. Errors
// rejected by the predicate given to [WithRetryIf] end the loop at once,
// so a conflict or a validation failure is never retried.
package retry
