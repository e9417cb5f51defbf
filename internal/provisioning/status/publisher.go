package status

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// ConditionAvailable is the aggregate condition type.
const ConditionAvailable = "Available"

// Condition reasons. A failed node uses its ErrorKind as the reason.
const (
	ReasonAllResourcesReady = "AllResourcesReady"
	ReasonResourceNotReady  = "ResourceNotReady"
)

// Publish aggregates records into the Available condition for generation.
// The condition is True only when every node has a Ready record observed
// at generation. Otherwise the message names the first node, in chain
// order, that is not, along with its last error.
func Publish(records []provisioning.ResourceRecord, generation int64) metav1.Condition {
	byKind := make(map[cloud.Kind]provisioning.ResourceRecord, len(records))
	for _, rec := range records {
		byKind[rec.Kind] = rec
	}

	for _, kind := range provisioning.AllKinds {
		rec, ok := byKind[kind]
		switch {
		case !ok:
			return notAvailable(generation, ReasonResourceNotReady, fmt.Sprintf("%s has not been reconciled", kind))
		case !rec.Ready():
			reason, msg := ReasonResourceNotReady, fmt.Sprintf("%s %s is %s", kind, rec.Name, rec.State)
			if rec.LastError != nil {
				reason = string(rec.LastError.Kind)
				msg = fmt.Sprintf("%s: %s", msg, rec.LastError.Message)
			}
			return notAvailable(generation, reason, msg)
		case rec.ObservedGeneration != generation:
			return notAvailable(generation, ReasonResourceNotReady,
				fmt.Sprintf("%s %s observed generation %d, want %d", kind, rec.Name, rec.ObservedGeneration, generation))
		}
	}

	return metav1.Condition{
		Type:               ConditionAvailable,
		Status:             metav1.ConditionTrue,
		ObservedGeneration: generation,
		Reason:             ReasonAllResourcesReady,
		Message:            fmt.Sprintf("All %d resources are Ready", len(provisioning.AllKinds)),
	}
}

func notAvailable(generation int64, reason, message string) metav1.Condition {
	return metav1.Condition{
		Type:               ConditionAvailable,
		Status:             metav1.ConditionFalse,
		ObservedGeneration: generation,
		Reason:             reason,
		Message:            message,
	}
}

// SetCondition stores c in conditions, keeping LastTransitionTime when the
// status did not change.
func SetCondition(conditions *[]metav1.Condition, c metav1.Condition) bool {
	return meta.SetStatusCondition(conditions, c)
}

// IsAvailable reports whether conditions hold a true Available condition.
func IsAvailable(conditions []metav1.Condition) bool {
	return meta.IsStatusConditionTrue(conditions, ConditionAvailable)
}
