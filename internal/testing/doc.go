// Package testing provides builders, fixtures and helpers shared by the
// reconciliation tests.
//
//   - RequestBuilder: fluent builder for cluster requests
//   - ChainFixture: in-memory provider, record set and event recorder
//     wired into a pass context
//   - EventRecorder: captures the events of a pass
//
// Usage:
//
//	req := testutil.NewRequestBuilder().WithClusterID("c1").Build()
//	f := testutil.NewChainFixture()
//	pctx := f.PassContext(testutil.TestContext(t), req)
package testing
