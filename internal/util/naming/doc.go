// Package naming provides deterministic names for PSC chain resources.
//
// Every name is a pure function of the cluster id and the resource kind and
// follows the pattern psc-{cluster}-{suffix}. Because the name is the only
// identity a resource has before the provider assigns a self-link, two passes
// for the same cluster always converge on the same resource.
package naming
