package predicate

import (
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// WeekdaysEvaluator matches moments whose ISO weekday is in config.days.
type WeekdaysEvaluator struct{}

// NewWeekdaysEvaluator constructs a WeekdaysEvaluator.
func NewWeekdaysEvaluator() *WeekdaysEvaluator {
	return &WeekdaysEvaluator{}
}

// Matches reports whether moment's ISO weekday (1=Mon..7=Sun) is among
// config.days after dropping non-numeric and out-of-range entries. An empty
// resulting set never matches.
func (e *WeekdaysEvaluator) Matches(config map[string]any, moment time.Time, _ availability.Subject) bool {
	days := asIntSetRange(config, "days", 1, 7)
	if len(days) == 0 {
		return false
	}
	_, ok := days[isoWeekdayOf(moment)]
	return ok
}

func isoWeekdayOf(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
