package predicate

import (
	"strconv"
	"strings"
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// TimeOfDayEvaluator matches moments whose second-of-day falls within
// config.from..config.to, with overnight wrap support.
type TimeOfDayEvaluator struct{}

// NewTimeOfDayEvaluator constructs a TimeOfDayEvaluator.
func NewTimeOfDayEvaluator() *TimeOfDayEvaluator {
	return &TimeOfDayEvaluator{}
}

// Matches implements the semantics of spec §4.3.4: from==to matches the
// whole day, from<to matches the closed interval, from>to matches the
// wrapped (overnight) complement.
func (e *TimeOfDayEvaluator) Matches(config map[string]any, moment time.Time, _ availability.Subject) bool {
	fromStr, ok := asString(config, "from")
	if !ok {
		return false
	}
	toStr, ok := asString(config, "to")
	if !ok {
		return false
	}

	f, ok := parseClockSeconds(fromStr)
	if !ok {
		return false
	}
	t, ok := parseClockSeconds(toStr)
	if !ok {
		return false
	}

	s := moment.Hour()*3600 + moment.Minute()*60 + moment.Second()

	switch {
	case f == t:
		return true
	case f < t:
		return s >= f && s <= t
	default:
		return s >= f || s <= t
	}
}

// parseClockSeconds parses "HH:MM" or "HH:MM:SS" into seconds-of-day,
// validating hour<=23, minute<=59, second<=59.
func parseClockSeconds(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, false
		}
	}

	return hour*3600 + minute*60 + second, true
}
