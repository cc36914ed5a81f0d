package predicate

import (
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// DateRangeEvaluator matches moments falling within an absolute or yearly
// recurring date range.
type DateRangeEvaluator struct{}

// NewDateRangeEvaluator constructs a DateRangeEvaluator.
func NewDateRangeEvaluator() *DateRangeEvaluator {
	return &DateRangeEvaluator{}
}

// Matches implements spec §4.3.5. config.kind selects "yearly" or
// "absolute" (the default for anything else, including missing/non-string).
func (e *DateRangeEvaluator) Matches(config map[string]any, moment time.Time, _ availability.Subject) bool {
	kind, _ := asString(config, "kind")
	if kind == "yearly" {
		return e.matchesYearly(config, moment)
	}
	return e.matchesAbsolute(config, moment)
}

func (e *DateRangeEvaluator) matchesAbsolute(config map[string]any, moment time.Time) bool {
	fromStr, ok := asString(config, "from")
	if !ok {
		return false
	}
	toStr, ok := asString(config, "to")
	if !ok {
		return false
	}

	loc := moment.Location()
	from, err := time.ParseInLocation("2006-01-02", fromStr, loc)
	if err != nil {
		return false
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, loc)
	if err != nil {
		return false
	}

	if from.After(to) {
		from, to = to, from
	}

	startOfDay := from
	endOfDay := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999999999, loc)

	return !moment.Before(startOfDay) && !moment.After(endOfDay)
}

func (e *DateRangeEvaluator) matchesYearly(config map[string]any, moment time.Time) bool {
	fromStr, ok := asString(config, "from")
	if !ok {
		return false
	}
	toStr, ok := asString(config, "to")
	if !ok {
		return false
	}

	fromKey, ok := parseMonthDayKey(fromStr)
	if !ok {
		return false
	}
	toKey, ok := parseMonthDayKey(toStr)
	if !ok {
		return false
	}

	momentKey := int(moment.Month())*100 + moment.Day()

	if fromKey <= toKey {
		return momentKey >= fromKey && momentKey <= toKey
	}
	return momentKey >= fromKey || momentKey <= toKey
}

// parseMonthDayKey parses "MM-DD" into month*100+day.
func parseMonthDayKey(s string) (int, bool) {
	t, err := time.Parse("01-02", s)
	if err != nil {
		return 0, false
	}
	return int(t.Month())*100 + t.Day(), true
}
