package predicate

import (
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// BlackoutDateEvaluator matches moments whose local calendar date appears
// in config.dates, ignoring time of day.
type BlackoutDateEvaluator struct{}

// NewBlackoutDateEvaluator constructs a BlackoutDateEvaluator.
func NewBlackoutDateEvaluator() *BlackoutDateEvaluator {
	return &BlackoutDateEvaluator{}
}

// Matches reports whether moment's local calendar date equals any date in
// config.dates (strings "YYYY-MM-DD", parsed in moment's zone). Non-string,
// empty, and unparseable entries are dropped; duplicates collapse. An empty
// resulting set never matches.
func (e *BlackoutDateEvaluator) Matches(config map[string]any, moment time.Time, _ availability.Subject) bool {
	raw := asStringSlice(config, "dates")
	if len(raw) == 0 {
		return false
	}

	loc := moment.Location()
	dates := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		if s == "" {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			continue
		}
		dates[d.Format("2006-01-02")] = struct{}{}
	}
	if len(dates) == 0 {
		return false
	}

	_, ok := dates[moment.Format("2006-01-02")]
	return ok
}
