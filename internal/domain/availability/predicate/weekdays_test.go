package predicate

import (
	"testing"
	"time"
)

func TestWeekdaysEvaluator_Matches(t *testing.T) {
	t.Parallel()

	e := NewWeekdaysEvaluator()
	wed := time.Date(2025, 6, 4, 13, 0, 0, 0, time.UTC) // Wednesday
	sat := time.Date(2025, 6, 7, 13, 0, 0, 0, time.UTC) // Saturday

	cases := []struct {
		name   string
		config map[string]any
		moment time.Time
		want   bool
	}{
		{"weekday matches", map[string]any{"days": []any{1.0, 2.0, 3.0, 4.0, 5.0}}, wed, true},
		{"weekend excluded", map[string]any{"days": []any{1.0, 2.0, 3.0, 4.0, 5.0}}, sat, false},
		{"missing days", map[string]any{}, wed, false},
		{"out of range dropped", map[string]any{"days": []any{0.0, 8.0}}, wed, false},
		{"non-numeric dropped", map[string]any{"days": []any{"mon", 3.0}}, wed, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := e.Matches(tc.config, tc.moment, nil); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}
