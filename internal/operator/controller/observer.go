package controller

import (
	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/provisioning"
)

// passObserver counts mutating calls and classified failures of a pass and
// forwards every event to the pass logger.
type passObserver struct {
	next provisioning.Observer
}

func newPassObserver(next provisioning.Observer) *passObserver {
	return &passObserver{next: next}
}

// Event implements provisioning.Observer.
func (o *passObserver) Event(e provisioning.Event) {
	switch e.Type {
	case provisioning.EventResourceCreating, provisioning.EventResourceDeleting:
		recordMutationMetric(e.Kind)
	case provisioning.EventResourceFailed, provisioning.EventResourceConflict:
		recordResourceErrorMetric(e.Kind, cloud.Classify(e.Err))
	}
	if o.next != nil {
		o.next.Event(e)
	}
}
