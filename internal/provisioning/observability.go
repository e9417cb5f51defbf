package provisioning

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/psclink/internal/platform/cloud"
)

// Observer receives structured events emitted during a pass.
type Observer interface {
	Event(event Event)
}

// Event represents a structured reconciliation event.
type Event struct {
	Type      EventType
	ClusterID string
	Kind      cloud.Kind
	Resource  string
	Message   string
	Err       error
	Timestamp time.Time
}

// EventType represents the type of reconciliation event.
type EventType string

const (
	EventPassStarted   EventType = "pass.started"
	EventPassCompleted EventType = "pass.completed"
	EventPassFailed    EventType = "pass.failed"

	EventResourceCreating EventType = "resource.creating"
	EventResourceCreated  EventType = "resource.created"
	EventResourceExists   EventType = "resource.exists"
	EventResourceConflict EventType = "resource.conflict"
	EventResourceFailed   EventType = "resource.failed"
	EventResourceDeleting EventType = "resource.deleting"
	EventResourceDeleted  EventType = "resource.deleted"
	EventResourceAbsent   EventType = "resource.absent"
)

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Event implements Observer.
func (f ObserverFunc) Event(e Event) { f(e) }

// LogObserver writes events to a logr sink.
type LogObserver struct {
	log logr.Logger
}

// NewLogObserver creates an observer that logs through l.
func NewLogObserver(l logr.Logger) *LogObserver {
	return &LogObserver{log: l}
}

// Event implements Observer.
func (o *LogObserver) Event(e Event) {
	kv := []any{"event", string(e.Type)}
	if e.Kind != "" {
		kv = append(kv, "kind", string(e.Kind))
	}
	if e.Resource != "" {
		kv = append(kv, "resource", e.Resource)
	}

	switch e.Type {
	case EventResourceFailed, EventResourceConflict, EventPassFailed:
		o.log.Error(e.Err, e.Message, kv...)
	case EventResourceCreating, EventResourceDeleting, EventResourceExists, EventPassStarted:
		o.log.V(1).Info(e.Message, kv...)
	default:
		o.log.Info(e.Message, kv...)
	}
}

// Emit fills in defaults and sends e to the context's observer.
func (c *Context) Emit(e Event) {
	if c.Observer == nil {
		return
	}
	if e.ClusterID == "" {
		e.ClusterID = c.Request.ClusterID
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.Now()
	}
	c.Observer.Event(e)
}
