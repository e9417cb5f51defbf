package labels

import (
	"sort"
	"strconv"
	"strings"
)

// Standard label keys for chain resources. Every key under Prefix is
// owned by the engine.
const (
	Prefix = "psclink.io/"

	// KeyCluster identifies which cluster a resource belongs to
	KeyCluster = "psclink.io/cluster"

	// KeyKind identifies the chain node (health-check, backend-service, ...)
	KeyKind = "psclink.io/kind"

	// KeyGeneration records the request generation that produced the resource
	KeyGeneration = "psclink.io/generation"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "psclink.io/managed-by"
)

// ManagedBy values
const (
	ManagedByPsclink = "psclink"
)

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster id pre-set.
func NewLabelBuilder(clusterID string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   clusterID,
			KeyManagedBy: ManagedByPsclink,
		},
	}
}

// WithKind adds the chain node label.
func (lb *LabelBuilder) WithKind(kind string) *LabelBuilder {
	lb.labels[KeyKind] = kind
	return lb
}

// WithGeneration adds the request generation label.
func (lb *LabelBuilder) WithGeneration(gen int64) *LabelBuilder {
	lb.labels[KeyGeneration] = strconv.FormatInt(gen, 10)
	return lb
}

// Merge adds all labels from the provided map. Reserved keys are skipped
// so extra labels never change ownership of a resource.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		if IsReserved(k) {
			continue
		}
		lb.labels[k] = v
	}
	return lb
}

// IsReserved reports whether key is owned by the engine.
func IsReserved(key string) bool {
	return strings.HasPrefix(key, Prefix)
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	return Copy(lb.labels)
}

// Copy returns a new map with the same entries. A nil input yields an empty map.
func Copy(in map[string]string) map[string]string {
	result := make(map[string]string, len(in))
	for k, v := range in {
		result[k] = v
	}
	return result
}

// Selector renders a label set as a sorted "k=v,k=v" selector string.
func Selector(set map[string]string) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+set[k])
	}
	return strings.Join(parts, ",")
}

// SelectorForCluster returns a label selector string for all resources in a cluster.
func SelectorForCluster(clusterID string) string {
	return KeyCluster + "=" + clusterID
}
