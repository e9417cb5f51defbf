// Package memory provides an in-process cloud provider.
//
// Operations complete asynchronously: a resource becomes visible only after
// its insert operation has been polled to DONE. The provider enforces the
// same referential rules as a real control plane (a backend service needs an
// existing health check, a referenced resource cannot be deleted) and counts
// every mutating call, which makes it the test double for the engine and the
// backing store of the simulated platform.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imamik/psclink/internal/platform/cloud"
)

// BaseURL prefixes every self-link issued by the provider.
const BaseURL = "https://cloud.local/v1"

type object interface {
	ref() cloud.Ref
	references() []string
	setSelfLink(string)
	selfLink() string
	assignIP(string)
	clone() object
}

type pendingOp struct {
	op        cloud.Operation
	remaining int
	apply     func()
}

// Provider is a concurrency-safe in-memory implementation of cloud.Client.
type Provider struct {
	mu sync.Mutex

	objects    map[cloud.Kind]map[string]object
	inflight   map[string]bool
	ops        map[string]*pendingOp
	health     map[string]cloud.BackendHealth
	faults     map[string][]error
	persistent map[string]error
	opFaults   map[cloud.Kind][]*cloud.APIError
	mutations  map[cloud.Kind]int
	calls      []string
	nextIP     int

	pollsToDone     int
	defaultBackends int
	newID           func() string
	now             func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithOperationPolls sets how many GetOperation calls an operation needs to
// reach DONE. Zero completes operations synchronously.
func WithOperationPolls(n int) Option {
	return func(p *Provider) {
		if n >= 0 {
			p.pollsToDone = n
		}
	}
}

// WithDefaultBackends sets the backend count reported for backend services
// whose health was not set explicitly.
func WithDefaultBackends(n int) Option {
	return func(p *Provider) {
		p.defaultBackends = n
	}
}

// WithOperationIDs replaces the operation id generator.
func WithOperationIDs(gen func() string) Option {
	return func(p *Provider) {
		p.newID = gen
	}
}

// SequentialIDs returns a generator yielding op-1, op-2, ...
func SequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("op-%d", n)
	}
}

// New creates an empty provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		objects:         make(map[cloud.Kind]map[string]object),
		inflight:        make(map[string]bool),
		ops:             make(map[string]*pendingOp),
		health:          make(map[string]cloud.BackendHealth),
		faults:          make(map[string][]error),
		persistent:      make(map[string]error),
		opFaults:        make(map[cloud.Kind][]*cloud.APIError),
		mutations:       make(map[cloud.Kind]int),
		pollsToDone:     1,
		defaultBackends: 3,
		newID:           func() string { return "operation-" + uuid.NewString() },
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Verb names a provider call for fault injection, e.g. Verb("Insert", cloud.KindHealthCheck).
func Verb(action string, kind cloud.Kind) string {
	return action + string(kind)
}

// FailNext queues err to be returned by the next call of verb.
func (p *Provider) FailNext(verb string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[verb] = append(p.faults[verb], err)
}

// FailAlways makes every call of verb return err until ClearFaults.
func (p *Provider) FailAlways(verb string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.persistent[verb] = err
}

// FailOperation makes the next operation on kind finish DONE with apiErr.
func (p *Provider) FailOperation(kind cloud.Kind, apiErr *cloud.APIError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opFaults[kind] = append(p.opFaults[kind], apiErr)
}

// ClearFaults removes all injected failures.
func (p *Provider) ClearFaults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults = make(map[string][]error)
	p.persistent = make(map[string]error)
	p.opFaults = make(map[cloud.Kind][]*cloud.APIError)
}

// SetBackendHealth overrides the health reported for a backend service.
func (p *Provider) SetBackendHealth(ref cloud.Ref, healthy, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health[ref.String()] = cloud.BackendHealth{Healthy: healthy, Total: total}
}

// Mutations returns the number of insert and delete calls accepted for kind.
func (p *Provider) Mutations(kind cloud.Kind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutations[kind]
}

// TotalMutations returns the number of accepted insert and delete calls.
func (p *Provider) TotalMutations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.mutations {
		total += n
	}
	return total
}

// Calls returns the ordered log of accepted mutating calls, e.g. "Insert HealthCheck psc-c1-hc".
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Exists reports whether a resource is currently visible.
func (p *Provider) Exists(kind cloud.Kind, ref cloud.Ref) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.objects[kind][ref.String()]
	return ok
}

// Seed stores a resource directly, bypassing operations and mutation counts.
// It returns the self-link assigned to the resource.
func (p *Provider) Seed(kind cloud.Kind, res any) string {
	obj := wrap(res)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.materialize(kind, obj)
	return obj.selfLink()
}

func (p *Provider) fault(verb string) error {
	if err, ok := p.persistent[verb]; ok {
		return err
	}
	if queued := p.faults[verb]; len(queued) > 0 {
		p.faults[verb] = queued[1:]
		return queued[0]
	}
	return nil
}

func (p *Provider) get(kind cloud.Kind, ref cloud.Ref) (object, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault(Verb("Get", kind)); err != nil {
		return nil, err
	}
	obj, ok := p.objects[kind][ref.String()]
	if !ok {
		return nil, cloud.NewNotFound(ref)
	}
	return obj.clone(), nil
}

func (p *Provider) insert(kind cloud.Kind, obj object) (*cloud.Operation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault(Verb("Insert", kind)); err != nil {
		return nil, err
	}

	ref := obj.ref()
	if ref.Name == "" || ref.Project == "" {
		return nil, &cloud.APIError{Code: 400, Reason: "invalid", Message: "name and project are required"}
	}
	key := ref.String()
	if _, ok := p.objects[kind][key]; ok || p.inflight[key] {
		return nil, &cloud.APIError{Code: 409, Reason: "alreadyExists", Message: fmt.Sprintf("the resource '%s' already exists", ref)}
	}
	for _, link := range obj.references() {
		if !p.linkExists(link) {
			return nil, &cloud.APIError{Code: 400, Reason: "invalid", Message: fmt.Sprintf("referenced resource '%s' is not ready", link)}
		}
	}

	p.mutations[kind]++
	p.calls = append(p.calls, fmt.Sprintf("Insert %s %s", kind, ref.Name))
	p.inflight[key] = true

	stored := obj.clone()
	return p.startOperation(kind, ref, selfLinkFor(kind, ref), func() {
		delete(p.inflight, key)
		p.materialize(kind, stored)
	}, func() {
		delete(p.inflight, key)
	}), nil
}

func (p *Provider) remove(kind cloud.Kind, ref cloud.Ref) (*cloud.Operation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault(Verb("Delete", kind)); err != nil {
		return nil, err
	}

	key := ref.String()
	obj, ok := p.objects[kind][key]
	if !ok {
		return nil, cloud.NewNotFound(ref)
	}
	if user := p.referencedBy(obj.selfLink()); user != "" {
		return nil, &cloud.APIError{
			Code:    400,
			Reason:  "resourceInUseByAnotherResource",
			Message: fmt.Sprintf("the resource '%s' is already being used by '%s'", ref, user),
		}
	}

	p.mutations[kind]++
	p.calls = append(p.calls, fmt.Sprintf("Delete %s %s", kind, ref.Name))

	return p.startOperation(kind, ref, obj.selfLink(), func() {
		delete(p.objects[kind], key)
		delete(p.health, key)
	}, func() {}), nil
}

// startOperation must be called with p.mu held.
func (p *Provider) startOperation(kind cloud.Kind, ref cloud.Ref, target string, apply, abort func()) *cloud.Operation {
	op := &pendingOp{
		op: cloud.Operation{
			ID:         p.newID(),
			Project:    ref.Project,
			Scope:      ref.Scope,
			Kind:       kind,
			TargetLink: target,
			Status:     cloud.OperationRunning,
			InsertTime: p.now(),
		},
		remaining: p.pollsToDone,
		apply:     apply,
	}
	if queued := p.opFaults[kind]; len(queued) > 0 {
		p.opFaults[kind] = queued[1:]
		failure := queued[0]
		op.apply = func() {
			abort()
			op.op.Error = failure
		}
	}
	p.ops[op.op.ID] = op
	if op.remaining <= 0 {
		p.finish(op)
	}
	result := op.op
	return &result
}

func (p *Provider) finish(op *pendingOp) {
	op.op.Status = cloud.OperationDone
	op.apply()
}

// GetOperation advances the operation by one poll and returns its state.
func (p *Provider) GetOperation(_ context.Context, project string, scope cloud.Scope, id string) (*cloud.Operation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault("GetOperation"); err != nil {
		return nil, err
	}
	op, ok := p.ops[id]
	if !ok || op.op.Project != project || op.op.Scope != scope {
		return nil, cloud.NewNotFound(cloud.Ref{Project: project, Scope: scope, Name: "operations/" + id})
	}
	if !op.op.Done() {
		op.remaining--
		if op.remaining <= 0 {
			p.finish(op)
		}
	}
	result := op.op
	return &result, nil
}

// materialize must be called with p.mu held.
func (p *Provider) materialize(kind cloud.Kind, obj object) {
	ref := obj.ref()
	obj.setSelfLink(selfLinkFor(kind, ref))
	if kind == cloud.KindForwardingRule || kind == cloud.KindConsumerEndpoint {
		p.nextIP++
		obj.assignIP(fmt.Sprintf("10.128.0.%d", p.nextIP+1))
	}
	if p.objects[kind] == nil {
		p.objects[kind] = make(map[string]object)
	}
	p.objects[kind][ref.String()] = obj
}

func (p *Provider) linkExists(link string) bool {
	for _, byName := range p.objects {
		for _, obj := range byName {
			if obj.selfLink() == link {
				return true
			}
		}
	}
	return false
}

func (p *Provider) referencedBy(link string) string {
	for _, byName := range p.objects {
		for _, obj := range byName {
			for _, ref := range obj.references() {
				if ref == link {
					return obj.ref().Name
				}
			}
		}
	}
	return ""
}

func selfLinkFor(kind cloud.Kind, ref cloud.Ref) string {
	return fmt.Sprintf("%s/projects/%s/%s/%s/%s", BaseURL, ref.Project, ref.Scope, collection(kind), ref.Name)
}

func collection(kind cloud.Kind) string {
	switch kind {
	case cloud.KindHealthCheck:
		return "healthChecks"
	case cloud.KindBackendService:
		return "backendServices"
	case cloud.KindForwardingRule:
		return "forwardingRules"
	case cloud.KindServiceAttachment:
		return "serviceAttachments"
	case cloud.KindConsumerEndpoint:
		return "addresses"
	case cloud.KindDNSRecords:
		return "managedZones"
	case cloud.KindFirewallRule:
		return "firewalls"
	default:
		return string(kind)
	}
}

var _ cloud.Client = (*Provider)(nil)
