// Package platform selects how the engine reaches a provider.
//
// The variants form a closed set: [Simulated] drives the in-process
// provider and [External] drives whatever client a caller-supplied
// connector returns. Both expose the same three capabilities and are only
// told apart by [New].
package platform
