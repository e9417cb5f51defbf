package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/imamik/psclink/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// EventRecorder is an Observer that keeps every event.
type EventRecorder struct {
	mu     sync.Mutex
	events []provisioning.Event
}

// Event implements provisioning.Observer.
func (r *EventRecorder) Event(e provisioning.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns the recorded events in order.
func (r *EventRecorder) Events() []provisioning.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]provisioning.Event(nil), r.events...)
}

// OfType returns the resources of events with type t, in order.
func (r *EventRecorder) OfType(t provisioning.EventType) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e.Resource)
		}
	}
	return out
}

// Reset drops recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
