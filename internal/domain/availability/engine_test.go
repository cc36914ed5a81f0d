package availability

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/romegasoftware/availability/internal/adapter/outbound/cache"
)

// fakeSubject is a minimal, hand-rolled Subject for engine tests, in the
// teacher's mock-struct-per-test-file style (no testify in this lineage).
type fakeSubject struct {
	rules    []Rule
	effect   Effect
	timezone string
	hasZone  bool
}

func (s *fakeSubject) AvailabilityRules() []Rule { return s.rules }
func (s *fakeSubject) DefaultEffect() Effect     { return s.effect }
func (s *fakeSubject) Timezone() (string, bool)  { return s.timezone, s.hasZone }

// fakePredicate matches whenever match is true, regardless of input.
type fakePredicate struct {
	match bool
}

func (p *fakePredicate) Matches(map[string]any, time.Time, Subject) bool { return p.match }

// fakeRegistry resolves rule types from a plain map, never erroring.
type fakeRegistry struct {
	predicates map[string]Predicate
}

func (r *fakeRegistry) Get(ruleType string) (Predicate, error) {
	return r.predicates[ruleType], nil
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_DefaultFallback(t *testing.T) {
	t.Parallel()

	subject := &fakeSubject{effect: Allow}
	reg := &fakeRegistry{predicates: map[string]Predicate{}}
	engine := NewEngine(reg, silentLogger())

	got, err := engine.IsAvailable(context.Background(), subject, time.Now())
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	if !got {
		t.Error("IsAvailable() = false, want true (default allow, zero rules)")
	}
}

func TestEngine_DisabledRulesAreInert(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{predicates: map[string]Predicate{"always": &fakePredicate{match: true}}}
	subject := &fakeSubject{
		effect: Deny,
		rules: []Rule{
			{Type: "always", Effect: Allow, Priority: 10, Enabled: false},
		},
	}
	engine := NewEngine(reg, silentLogger())

	got, err := engine.IsAvailable(context.Background(), subject, time.Now())
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	if got {
		t.Error("IsAvailable() = true, want false (disabled rule must not flip default)")
	}
}

func TestEngine_LastMatchWins(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{predicates: map[string]Predicate{"always": &fakePredicate{match: true}}}
	subject := &fakeSubject{
		effect: Deny,
		rules: []Rule{
			{Type: "always", Effect: Allow, Priority: 10, Enabled: true, Seq: 0},
			{Type: "always", Effect: Deny, Priority: 50, Enabled: true, Seq: 1},
			{Type: "always", Effect: Allow, Priority: 100, Enabled: true, Seq: 2},
		},
	}
	engine := NewEngine(reg, silentLogger())

	got, err := engine.IsAvailable(context.Background(), subject, time.Now())
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	if !got {
		t.Error("IsAvailable() = false, want true (highest-priority match wins)")
	}
}

func TestEngine_UnregisteredTypeSkipped(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{predicates: map[string]Predicate{}}
	subject := &fakeSubject{
		effect: Allow,
		rules: []Rule{
			{Type: "unknown", Effect: Deny, Priority: 10, Enabled: true},
		},
	}
	engine := NewEngine(reg, silentLogger())

	got, err := engine.IsAvailable(context.Background(), subject, time.Now())
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	if !got {
		t.Error("IsAvailable() = false, want true (unregistered rule type must be skipped, not denied)")
	}
}

func TestEngine_MomentImmutability(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{predicates: map[string]Predicate{}}
	subject := &fakeSubject{effect: Allow, timezone: "America/New_York", hasZone: true}
	engine := NewEngine(reg, silentLogger())

	moment := time.Date(2025, 6, 4, 13, 0, 0, 0, time.UTC)
	before := moment

	if _, err := engine.IsAvailable(context.Background(), subject, moment); err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}

	if !moment.Equal(before) || moment.Location() != before.Location() {
		t.Error("IsAvailable() mutated the caller's moment")
	}
}

func TestEngine_SubjectNil(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{predicates: map[string]Predicate{}}
	engine := NewEngine(reg, silentLogger())

	if _, err := engine.IsAvailable(context.Background(), nil, time.Now()); err != ErrSubjectNil {
		t.Errorf("IsAvailable(nil subject) error = %v, want ErrSubjectNil", err)
	}
}

func TestEngine_PriorityStableOrderingForTies(t *testing.T) {
	t.Parallel()

	// Two rules at the same priority; only one matches. Its effect should
	// win regardless of which was inserted first, and permuting insertion
	// order of non-matching same-priority rules must not change the result.
	reg := &fakeRegistry{predicates: map[string]Predicate{
		"never":  &fakePredicate{match: false},
		"always": &fakePredicate{match: true},
	}}
	subject := &fakeSubject{
		effect: Deny,
		rules: []Rule{
			{Type: "never", Effect: Deny, Priority: 10, Enabled: true, Seq: 0},
			{Type: "always", Effect: Allow, Priority: 10, Enabled: true, Seq: 1},
		},
	}
	engine := NewEngine(reg, silentLogger())

	got, err := engine.IsAvailable(context.Background(), subject, time.Now())
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	if !got {
		t.Error("IsAvailable() = false, want true")
	}
}

// identifiableFakeSubject adds the ID/Class methods the engine's cache
// layer looks for, without requiring every Subject implementer to have
// them.
type identifiableFakeSubject struct {
	fakeSubject
	id    string
	class string
}

func (s *identifiableFakeSubject) ID() string    { return s.id }
func (s *identifiableFakeSubject) Class() string { return s.class }

func TestEngine_CacheHitSkipsReevaluation(t *testing.T) {
	t.Parallel()

	calls := 0
	reg := &countingRegistry{fakeRegistry: fakeRegistry{predicates: map[string]Predicate{
		"always": &fakePredicate{match: true},
	}}, calls: &calls}
	subject := &identifiableFakeSubject{
		fakeSubject: fakeSubject{
			effect: Deny,
			rules:  []Rule{{Type: "always", Effect: Allow, Priority: 10, Enabled: true}},
		},
		id:    "room-1",
		class: "Room",
	}
	engine := NewEngine(reg, silentLogger(), WithCache(cache.New(10)))
	moment := time.Date(2025, 6, 4, 13, 0, 0, 0, time.UTC)

	first, err := engine.IsAvailable(context.Background(), subject, moment)
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	second, err := engine.IsAvailable(context.Background(), subject, moment)
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}

	if first != second {
		t.Errorf("cached result %v differs from original %v", second, first)
	}
	if calls != 1 {
		t.Errorf("registry.Get called %d times, want 1 (second call should hit the cache)", calls)
	}
}

func TestEngine_BumpVersionInvalidatesCache(t *testing.T) {
	t.Parallel()

	calls := 0
	reg := &countingRegistry{fakeRegistry: fakeRegistry{predicates: map[string]Predicate{
		"always": &fakePredicate{match: true},
	}}, calls: &calls}
	subject := &identifiableFakeSubject{
		fakeSubject: fakeSubject{
			effect: Deny,
			rules:  []Rule{{Type: "always", Effect: Allow, Priority: 10, Enabled: true}},
		},
		id:    "room-1",
		class: "Room",
	}
	engine := NewEngine(reg, silentLogger(), WithCache(cache.New(10)))
	moment := time.Date(2025, 6, 4, 13, 0, 0, 0, time.UTC)

	if _, err := engine.IsAvailable(context.Background(), subject, moment); err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	engine.BumpVersion()
	if _, err := engine.IsAvailable(context.Background(), subject, moment); err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}

	if calls != 2 {
		t.Errorf("registry.Get called %d times, want 2 (BumpVersion must invalidate the cache)", calls)
	}
}

// countingRegistry wraps fakeRegistry, counting Get calls so cache tests
// can observe whether evaluation was actually repeated.
type countingRegistry struct {
	fakeRegistry
	calls *int
}

func (r *countingRegistry) Get(ruleType string) (Predicate, error) {
	*r.calls++
	return r.fakeRegistry.Get(ruleType)
}
