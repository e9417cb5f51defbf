// Package s3 provides a small client for S3-compatible object storage,
// used to persist reconciliation records outside the process.
package s3
