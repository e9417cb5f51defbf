// Package orchestration sequences one reconciliation pass over the
// private service connection chain.
//
// The dependent chain is reconciled strictly in order:
//
//	HealthCheck → BackendService → ForwardingRule → ServiceAttachment → ConsumerEndpoint → DNSRecords
//
// and a pass halts at the first node that does not become Ready; nothing
// already created is rolled back. The firewall rule depends on nothing and
// is reconciled concurrently with the chain.
//
// Teardown walks the chain in reverse and then removes the firewall rule,
// attempting every node and reporting all failures together.
//
// # Usage
//
//	o := orchestration.NewOrchestrator(infrastructure.NewReconciler(), destroy.NewDestroyer())
//	outcome := o.Reconcile(pctx)
//	if outcome.Err != nil {
//	    kind := cloud.Classify(outcome.Err)
//	}
package orchestration
