package predicate

import (
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// MonthsOfYearEvaluator matches moments whose ISO month is in config.months.
type MonthsOfYearEvaluator struct{}

// NewMonthsOfYearEvaluator constructs a MonthsOfYearEvaluator.
func NewMonthsOfYearEvaluator() *MonthsOfYearEvaluator {
	return &MonthsOfYearEvaluator{}
}

// Matches reports whether moment's month (1..12) is among config.months.
// Non-numeric entries are dropped; out-of-range entries are kept but can
// never match a real moment, so they're harmless either way. An empty or
// missing list never matches.
func (e *MonthsOfYearEvaluator) Matches(config map[string]any, moment time.Time, _ availability.Subject) bool {
	months := asIntSet(config, "months")
	if len(months) == 0 {
		return false
	}
	_, ok := months[int(moment.Month())]
	return ok
}
