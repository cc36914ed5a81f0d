package rules

import (
	"testing"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

func TestSubject_AvailabilityRulesFiltersDisabled(t *testing.T) {
	t.Parallel()

	s := NewSubject("room-1", "Room", availability.Deny, "")
	s.AddRule(availability.Rule{Type: "weekdays", Effect: availability.Allow, Priority: 10, Enabled: true})
	s.AddRule(availability.Rule{Type: "blackout_date", Effect: availability.Deny, Priority: 20, Enabled: false})

	rules := s.AvailabilityRules()
	if len(rules) != 1 {
		t.Fatalf("AvailabilityRules() returned %d rules, want 1 (disabled rule excluded)", len(rules))
	}
	if rules[0].Type != "weekdays" {
		t.Errorf("AvailabilityRules()[0].Type = %q, want weekdays", rules[0].Type)
	}
}

func TestSubject_AvailabilityRulesOrderedByPriorityThenSeq(t *testing.T) {
	t.Parallel()

	s := NewSubject("room-1", "Room", availability.Deny, "")
	s.AddRule(availability.Rule{Type: "c", Priority: 10, Enabled: true})
	s.AddRule(availability.Rule{Type: "a", Priority: 5, Enabled: true})
	s.AddRule(availability.Rule{Type: "b", Priority: 5, Enabled: true})

	rules := s.AvailabilityRules()
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if rules[i].Type != w {
			t.Errorf("AvailabilityRules()[%d].Type = %q, want %q", i, rules[i].Type, w)
		}
	}
}

func TestSubject_SetRulesReassignsSequence(t *testing.T) {
	t.Parallel()

	s := NewSubject("room-1", "Room", availability.Deny, "")
	s.AddRule(availability.Rule{Type: "old", Priority: 0, Enabled: true})
	s.SetRules([]availability.Rule{
		{Type: "first", Priority: 0, Enabled: true},
		{Type: "second", Priority: 0, Enabled: true},
	})

	rules := s.AvailabilityRules()
	if len(rules) != 2 {
		t.Fatalf("AvailabilityRules() returned %d rules, want 2 (SetRules replaces, not appends)", len(rules))
	}
	if rules[0].Type != "first" || rules[1].Type != "second" {
		t.Errorf("AvailabilityRules() = %+v, want first then second in insertion order", rules)
	}
}

func TestSubject_TimezoneUnsetWhenEmpty(t *testing.T) {
	t.Parallel()

	s := NewSubject("room-1", "Room", availability.Allow, "")
	zone, ok := s.Timezone()
	if ok || zone != "" {
		t.Errorf("Timezone() = (%q, %v), want (\"\", false)", zone, ok)
	}
}

func TestSubject_TimezoneSet(t *testing.T) {
	t.Parallel()

	s := NewSubject("room-1", "Room", availability.Allow, "America/New_York")
	zone, ok := s.Timezone()
	if !ok || zone != "America/New_York" {
		t.Errorf("Timezone() = (%q, %v), want (\"America/New_York\", true)", zone, ok)
	}
}

func TestProvider_PutGet(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	s := NewSubject("room-1", "Room", availability.Allow, "")
	p.Put("Room", "room-1", s)

	got, ok := p.Get("Room", "room-1")
	if !ok || got != s {
		t.Error("Get() did not return the subject stored by Put()")
	}

	_, ok = p.Get("Room", "room-2")
	if ok {
		t.Error("Get() ok = true for an id never Put, want false")
	}

	_, ok = p.Get("Desk", "room-1")
	if ok {
		t.Error("Get() ok = true across class boundaries, want false (key is class+id)")
	}
}
