package predicate

import (
	"testing"
	"time"
)

func TestBlackoutDateEvaluator_Matches(t *testing.T) {
	t.Parallel()

	e := NewBlackoutDateEvaluator()
	xmas := time.Date(2025, 12, 25, 13, 0, 0, 0, time.UTC)
	other := time.Date(2025, 12, 24, 13, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		config map[string]any
		moment time.Time
		want   bool
	}{
		{"exact date matches regardless of time", map[string]any{"dates": []any{"2025-12-25"}}, xmas, true},
		{"different date", map[string]any{"dates": []any{"2025-12-25"}}, other, false},
		{"unparseable dropped", map[string]any{"dates": []any{"not-a-date"}}, xmas, false},
		{"empty string dropped", map[string]any{"dates": []any{""}}, xmas, false},
		{"missing", map[string]any{}, xmas, false},
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
