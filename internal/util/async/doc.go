// Package async runs independent tasks concurrently and collects every
// error. Tasks are never cancelled because a sibling failed.
package async
