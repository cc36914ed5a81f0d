// Package rules provides a reference, in-memory implementation of the
// Subject / rule-set snapshot contract (spec §3, component G). It plays
// the role the teacher's MemoryPolicyStore plays for policies: a concrete,
// host-owned collaborator the core only ever sees through its narrow
// interface.
package rules

import (
	"sort"
	"sync"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// Subject is a mutable, in-memory availability.Subject. It is safe for
// concurrent reads; SetRules/AddRule should be called before concurrent
// evaluation begins (spec §5: rule mutation is not synchronized with
// evaluation by the core).
type Subject struct {
	mu            sync.RWMutex
	id            string
	class         string
	defaultEffect availability.Effect
	timezone      string
	hasTimezone   bool
	rules         []availability.Rule
	nextSeq       int
}

// NewSubject constructs a Subject with the given default effect. Timezone
// may be empty, meaning "use the process-default zone".
func NewSubject(id, class string, defaultEffect availability.Effect, timezone string) *Subject {
	return &Subject{
		id:            id,
		class:         class,
		defaultEffect: defaultEffect,
		timezone:      timezone,
		hasTimezone:   timezone != "",
	}
}

// ID returns the subject's identifier.
func (s *Subject) ID() string { return s.id }

// Class returns the subject's logical class name. The engine's decision
// cache folds it into its key; the inventory adapter does not use it and
// keys by the concrete Go type of the subject instead.
func (s *Subject) Class() string { return s.class }

// AddRule appends a rule, assigning it the next insertion sequence number.
func (s *Subject) AddRule(r availability.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Seq = s.nextSeq
	s.nextSeq++
	s.rules = append(s.rules, r)
}

// SetRules replaces all rules, assigning sequence numbers by slice order.
func (s *Subject) SetRules(rs []availability.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make([]availability.Rule, len(rs))
	for i, r := range rs {
		r.Seq = i
		s.rules[i] = r
	}
	s.nextSeq = len(rs)
}

// AvailabilityRules implements availability.Subject: enabled rules only,
// priority ascending, stable on insertion order for ties.
func (s *Subject) AvailabilityRules() []availability.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]availability.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// DefaultEffect implements availability.Subject.
func (s *Subject) DefaultEffect() availability.Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultEffect
}

// Timezone implements availability.Subject.
func (s *Subject) Timezone() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timezone, s.hasTimezone
}

var _ availability.Subject = (*Subject)(nil)

// Provider is a reference in-memory implementation of the host-owned
// rule-set snapshot store: it hands out *Subject values by (class, id).
// Subjects are registered with Put; Get never creates one.
// Real deployments back this with a database; this type exists so the CLI
// and tests have something concrete to drive, grounded in the teacher's
// MemoryPolicyStore.
type Provider struct {
	mu       sync.RWMutex
	subjects map[string]*Subject
}

// NewProvider constructs an empty Provider.
func NewProvider() *Provider {
	return &Provider{subjects: make(map[string]*Subject)}
}

// Put registers (or replaces) a subject under (class, id).
func (p *Provider) Put(class, id string, subject *Subject) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects[key(class, id)] = subject
}

// Get returns the subject registered under (class, id), or nil, false.
func (p *Provider) Get(class, id string) (*Subject, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.subjects[key(class, id)]
	return s, ok
}

func key(class, id string) string {
	return class + "/" + id
}
