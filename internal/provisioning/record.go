package provisioning

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/imamik/psclink/internal/credentials"
	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/util/labels"
)

// ChainOrder is the fixed creation order of the dependent chain.
var ChainOrder = []cloud.Kind{
	cloud.KindHealthCheck,
	cloud.KindBackendService,
	cloud.KindForwardingRule,
	cloud.KindServiceAttachment,
	cloud.KindConsumerEndpoint,
	cloud.KindDNSRecords,
}

// AllKinds is ChainOrder followed by the independent firewall rule.
var AllKinds = []cloud.Kind{
	cloud.KindHealthCheck,
	cloud.KindBackendService,
	cloud.KindForwardingRule,
	cloud.KindServiceAttachment,
	cloud.KindConsumerEndpoint,
	cloud.KindDNSRecords,
	cloud.KindFirewallRule,
}

// SideOf returns the administrative side owning a kind.
func SideOf(kind cloud.Kind) credentials.Side {
	switch kind {
	case cloud.KindConsumerEndpoint, cloud.KindDNSRecords, cloud.KindFirewallRule:
		return credentials.Customer
	default:
		return credentials.Management
	}
}

// State is the lifecycle state of a ResourceRecord.
type State string

const (
	StatePending  State = "Pending"
	StateCreating State = "Creating"
	StateReady    State = "Ready"
	StateFailed   State = "Failed"
	StateDeleting State = "Deleting"
	StateDeleted  State = "Deleted"
)

var transitions = map[State][]State{
	StatePending:  {StateCreating, StateDeleting, StateDeleted},
	StateCreating: {StateReady, StateFailed, StateDeleting},
	StateReady:    {StateDeleting},
	StateFailed:   {StateCreating, StateDeleting},
	StateDeleting: {StateDeleted},
	StateDeleted:  nil,
}

// CanTransition reports whether to is reachable from s in one step.
// Staying in the same non-terminal state is always allowed.
func (s State) CanTransition(to State) bool {
	if s == to {
		return s != StateDeleted
	}
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned for transitions outside the state machine.
var ErrInvalidTransition = errors.New("invalid state transition")

// RecordError is the classified last error of a record.
type RecordError struct {
	Kind    cloud.ErrorKind `json:"kind" yaml:"kind"`
	Message string          `json:"message" yaml:"message"`
}

// ResourceRecord tracks one provisioned chain resource.
type ResourceRecord struct {
	Kind               cloud.Kind        `json:"kind"`
	Name               string            `json:"name"`
	Project            string            `json:"project"`
	URI                string            `json:"uri,omitempty"`
	IPAddress          string            `json:"ipAddress,omitempty"`
	State              State             `json:"state"`
	ObservedGeneration int64             `json:"observedGeneration"`
	Labels             map[string]string `json:"labels,omitempty"`
	Selector           map[string]string `json:"selector,omitempty"`
	LastError          *RecordError      `json:"lastError,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// NewRecord returns a Pending record.
func NewRecord(kind cloud.Kind, name, project string, generation int64) ResourceRecord {
	return ResourceRecord{
		Kind:               kind,
		Name:               name,
		Project:            project,
		State:              StatePending,
		ObservedGeneration: generation,
	}
}

// Transition moves the record to a new state.
func (r *ResourceRecord) Transition(to State, now time.Time) error {
	if !r.State.CanTransition(to) {
		return fmt.Errorf("%w: %s %s from %s to %s", ErrInvalidTransition, r.Kind, r.Name, r.State, to)
	}
	r.State = to
	r.UpdatedAt = now
	return nil
}

// SetError stores the classification of err, or clears it when err is nil.
func (r *ResourceRecord) SetError(err *cloud.ClassifiedError) {
	if err == nil {
		r.LastError = nil
		return
	}
	r.LastError = &RecordError{Kind: err.Kind, Message: err.Error()}
}

// Ready reports whether the record is Ready.
func (r ResourceRecord) Ready() bool {
	return r.State == StateReady
}

// DeepCopy returns an independent copy.
func (r ResourceRecord) DeepCopy() ResourceRecord {
	out := r
	if r.Labels != nil {
		out.Labels = labels.Copy(r.Labels)
	}
	if r.Selector != nil {
		out.Selector = labels.Copy(r.Selector)
	}
	if r.LastError != nil {
		e := *r.LastError
		out.LastError = &e
	}
	return out
}

// RecordSet holds the records of one cluster id. It is safe for the
// concurrent branches of a single pass; it is never shared across keys.
type RecordSet struct {
	persistMu sync.Mutex
	mu        sync.Mutex
	records   map[cloud.Kind]ResourceRecord
	onChange  func([]ResourceRecord)
}

// NewRecordSet creates a set seeded with previously observed records.
// onChange, if set, receives a snapshot after every Put, in Put order.
func NewRecordSet(initial []ResourceRecord, onChange func([]ResourceRecord)) *RecordSet {
	rs := &RecordSet{
		records:  make(map[cloud.Kind]ResourceRecord, len(initial)),
		onChange: onChange,
	}
	for _, rec := range initial {
		rs.records[rec.Kind] = rec.DeepCopy()
	}
	return rs
}

// Get returns a copy of the record for kind.
func (rs *RecordSet) Get(kind cloud.Kind) (ResourceRecord, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rec, ok := rs.records[kind]
	if !ok {
		return ResourceRecord{}, false
	}
	return rec.DeepCopy(), true
}

// Put replaces the record of rec.Kind.
func (rs *RecordSet) Put(rec ResourceRecord) {
	rs.persistMu.Lock()
	defer rs.persistMu.Unlock()

	rs.mu.Lock()
	rs.records[rec.Kind] = rec.DeepCopy()
	snapshot := rs.snapshotLocked()
	rs.mu.Unlock()

	if rs.onChange != nil {
		rs.onChange(snapshot)
	}
}

// Snapshot returns copies of all records ordered by AllKinds.
func (rs *RecordSet) Snapshot() []ResourceRecord {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.snapshotLocked()
}

func (rs *RecordSet) snapshotLocked() []ResourceRecord {
	out := make([]ResourceRecord, 0, len(rs.records))
	for _, kind := range AllKinds {
		if rec, ok := rs.records[kind]; ok {
			out = append(out, rec.DeepCopy())
		}
	}
	return out
}

// HealthClass is the classification of a HealthSnapshot.
type HealthClass string

const (
	HealthHealthy  HealthClass = "Healthy"
	HealthDegraded HealthClass = "Degraded"
	HealthCritical HealthClass = "Critical"
)

// ClassifyHealth maps backend counts to a HealthClass. No backends at all is Critical.
func ClassifyHealth(healthy, total int) HealthClass {
	switch {
	case healthy <= 0 || total <= 0:
		return HealthCritical
	case healthy < total:
		return HealthDegraded
	default:
		return HealthHealthy
	}
}

// HealthSnapshot is a point-in-time observation of backend health.
// Only the health monitor produces snapshots.
type HealthSnapshot struct {
	ClusterID      string      `json:"clusterId"`
	Resource       string      `json:"resource"`
	Healthy        int         `json:"healthy"`
	Total          int         `json:"total"`
	Timestamp      time.Time   `json:"timestamp"`
	Classification HealthClass `json:"classification"`
	Error          string      `json:"error,omitempty"`
}
