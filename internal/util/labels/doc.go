// Package labels provides consistent labeling for PSC chain resources.
//
// All labels use the psclink.io domain prefix. Label sets are always built
// fresh from a [LabelBuilder]; callers never receive a map that is shared
// with another resource or a previous reconciliation pass.
package labels
