package predicate

import (
	"testing"
	"time"
)

func TestRRuleEvaluator_MonthlySecondMonday(t *testing.T) {
	t.Parallel()

	e := NewRRuleEvaluator()
	config := map[string]any{"rrule": "FREQ=MONTHLY;BYDAY=2MO"}

	cases := []struct {
		name   string
		moment time.Time
		want   bool
	}{
		{"second Monday matches", time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC), true},
		{"first Monday does not match", time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), false},
		{"third Monday does not match", time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC), false},
		{"non-Monday does not match", time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := e.Matches(config, tc.moment, nil); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRRuleEvaluator_Daily(t *testing.T) {
	t.Parallel()

	e := NewRRuleEvaluator()
	config := map[string]any{"rrule": "FREQ=DAILY"}

	for _, day := range []time.Time{
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 2, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	} {
		if !e.Matches(config, day, nil) {
			t.Errorf("Matches(%v) = false, want true (DAILY with no BY* matches every day)", day)
		}
	}
}

func TestRRuleEvaluator_UntilInclusive(t *testing.T) {
	t.Parallel()

	e := NewRRuleEvaluator()
	config := map[string]any{"rrule": "FREQ=DAILY;UNTIL=20250301T000000Z"}

	if !e.Matches(config, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), nil) {
		t.Error("Matches() = false, want true (UNTIL instant itself is inclusive)")
	}
	if e.Matches(config, time.Date(2025, 3, 1, 0, 0, 1, 0, time.UTC), nil) {
		t.Error("Matches() = true, want false (past UNTIL must not match)")
	}
	if !e.Matches(config, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), nil) {
		t.Error("Matches() = false, want true (before UNTIL still matches)")
	}
}

func TestRRuleEvaluator_IntervalWeekly(t *testing.T) {
	t.Parallel()

	e := NewRRuleEvaluator()
	dtstart := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) // Monday
	config := map[string]any{"rrule": "FREQ=WEEKLY;INTERVAL=2;DTSTART=20250106T090000Z"}

	if !e.Matches(config, dtstart, nil) {
		t.Error("Matches(dtstart) = false, want true")
	}
	// Two weeks later is the next occurrence under INTERVAL=2.
	if !e.Matches(config, dtstart.AddDate(0, 0, 14), nil) {
		t.Error("Matches(+2 weeks) = false, want true")
	}
	// One week later falls on the skipped week.
	if e.Matches(config, dtstart.AddDate(0, 0, 7), nil) {
		t.Error("Matches(+1 week) = true, want false")
	}
}

func TestRRuleEvaluator_MissingRRule(t *testing.T) {
	t.Parallel()

	e := NewRRuleEvaluator()
	if e.Matches(map[string]any{}, time.Now(), nil) {
		t.Error("Matches() = true, want false for missing rrule config")
	}
}
