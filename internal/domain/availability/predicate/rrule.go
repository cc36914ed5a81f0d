package predicate

import (
	"strconv"
	"strings"
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// RRuleEvaluator implements the pragmatic recurrence subset of spec §4.3.6:
// FREQ, INTERVAL, DTSTART, UNTIL, BYMONTH, BYMONTHDAY, BYDAY, BYHOUR,
// BYMINUTE, BYSECOND. BYWEEKNO and BYYEARDAY are recognized (they count as
// a YEARLY "BY* constraint present") but not enforced, matching the source
// this spec preserves.
type RRuleEvaluator struct{}

// NewRRuleEvaluator constructs an RRuleEvaluator.
func NewRRuleEvaluator() *RRuleEvaluator {
	return &RRuleEvaluator{}
}

type byDayEntry struct {
	ordinal int // 0 = unset
	weekday int // ISO 1..7
}

type rrule struct {
	freq       string
	interval   int
	dtstart    *time.Time
	until      *time.Time
	byMonth    map[int]struct{}
	byMonthDay []int
	byDay      []byDayEntry
	byHour     map[int]struct{}
	byMinute   map[int]struct{}
	bySecond   map[int]struct{}
	hasByWeekNo bool
	hasByYearDay bool
}

var isoWeekdayNames = map[string]int{
	"MO": 1, "TU": 2, "WE": 3, "TH": 4, "FR": 5, "SA": 6, "SU": 7,
}

// Matches parses config.rrule and applies the matching rule of spec §4.3.6.
func (e *RRuleEvaluator) Matches(config map[string]any, moment time.Time, _ availability.Subject) bool {
	raw, ok := asString(config, "rrule")
	if !ok || raw == "" {
		return false
	}

	loc := moment.Location()
	if tz, ok := asString(config, "tz"); ok && tz != "" {
		if z, err := time.LoadLocation(tz); err == nil {
			loc = z
			moment = moment.In(z)
		}
	}

	r, ok := parseRRule(raw, loc)
	if !ok {
		return false
	}

	if r.until != nil && moment.After(*r.until) {
		return false
	}

	if r.interval > 1 {
		if r.dtstart == nil {
			return false
		}
		if moment.Before(*r.dtstart) {
			return false
		}
		if !intervalMatches(r, moment) {
			return false
		}
	} else if r.freq == "MONTHLY" || r.freq == "YEARLY" {
		hasByConstraint := len(r.byMonth) > 0 || len(r.byMonthDay) > 0 || len(r.byDay) > 0 ||
			r.hasByWeekNo || r.hasByYearDay
		if !hasByConstraint && r.dtstart == nil {
			return false
		}
	}

	if len(r.byMonth) > 0 {
		if _, ok := r.byMonth[int(moment.Month())]; !ok {
			return false
		}
	}

	if len(r.byMonthDay) > 0 && !byMonthDayMatches(r.byMonthDay, moment) {
		return false
	}

	if len(r.byDay) > 0 && !byDayMatches(r.byDay, r.freq, moment) {
		return false
	}

	if len(r.byHour) > 0 {
		if _, ok := r.byHour[moment.Hour()]; !ok {
			return false
		}
	}
	if len(r.byMinute) > 0 {
		if _, ok := r.byMinute[moment.Minute()]; !ok {
			return false
		}
	}
	if len(r.bySecond) > 0 {
		if _, ok := r.bySecond[moment.Second()]; !ok {
			return false
		}
	}

	switch r.freq {
	case "DAILY", "WEEKLY":
		return true
	case "MONTHLY":
		if len(r.byMonthDay) > 0 || len(r.byDay) > 0 {
			return true
		}
		if r.dtstart == nil {
			return false
		}
		return moment.Day() == r.dtstart.Day()
	case "YEARLY":
		if len(r.byMonth) > 0 || r.hasByWeekNo || r.hasByYearDay || len(r.byDay) > 0 {
			return true
		}
		if r.dtstart == nil {
			return false
		}
		return moment.Month() == r.dtstart.Month() && moment.Day() == r.dtstart.Day()
	default:
		return false
	}
}

func parseRRule(raw string, loc *time.Location) (*rrule, bool) {
	r := &rrule{interval: 1}

	for _, pair := range strings.Split(raw, ";") {
		idx := strings.IndexByte(pair, '=')
		if idx <= 0 {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(pair[:idx]))
		value := strings.TrimSpace(pair[idx+1:])
		if key == "" {
			continue
		}

		switch key {
		case "FREQ":
			freq := strings.ToUpper(value)
			switch freq {
			case "DAILY", "WEEKLY", "MONTHLY", "YEARLY":
				r.freq = freq
			default:
				return nil, false
			}
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				continue
			}
			r.interval = n
		case "DTSTART":
			t, ok := parseRecurrenceTime(value, loc)
			if !ok {
				continue
			}
			r.dtstart = &t
		case "UNTIL":
			t, ok := parseRecurrenceTime(value, loc)
			if !ok {
				continue
			}
			r.until = &t
		case "BYMONTH":
			r.byMonth = parseIntSetCSV(value, 1, 12)
		case "BYMONTHDAY":
			r.byMonthDay = parseMonthDayList(value)
		case "BYDAY":
			r.byDay = parseByDayList(value)
		case "BYHOUR":
			r.byHour = parseIntSetCSV(value, 0, 23)
		case "BYMINUTE":
			r.byMinute = parseIntSetCSV(value, 0, 59)
		case "BYSECOND":
			r.bySecond = parseIntSetCSV(value, 0, 59)
		case "BYWEEKNO":
			r.hasByWeekNo = true
		case "BYYEARDAY":
			r.hasByYearDay = true
		default:
			// unknown key, ignored
		}
	}

	if r.freq == "" {
		return nil, false
	}
	return r, true
}

func parseIntSetCSV(value string, lo, hi int) map[int]struct{} {
	out := make(map[int]struct{})
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil || n < lo || n > hi {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

func parseMonthDayList(value string) []int {
	var out []int
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil || n == 0 || n < -31 || n > 31 {
			continue
		}
		out = append(out, n)
	}
	return out
}

func parseByDayList(value string) []byDayEntry {
	var out []byDayEntry
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(strings.ToUpper(tok))
		if len(tok) < 2 {
			continue
		}
		wdName := tok[len(tok)-2:]
		wd, ok := isoWeekdayNames[wdName]
		if !ok {
			continue
		}
		ordinal := 0
		if len(tok) > 2 {
			n, err := strconv.Atoi(tok[:len(tok)-2])
			if err != nil {
				continue
			}
			ordinal = n
		}
		out = append(out, byDayEntry{ordinal: ordinal, weekday: wd})
	}
	return out
}

// parseRecurrenceTime tries the date-time formats named in spec §4.3.6 in
// order, then falls back to a short list of permissive layouts.
func parseRecurrenceTime(value string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("20060102T150405", value, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("20060102", value, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z07:00", value); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, true
	}
	// Permissive fallback for a few additional natural layouts.
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"01/02/2006",
		"Jan 2 2006",
		"January 2, 2006",
	} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func intervalMatches(r *rrule, moment time.Time) bool {
	start := *r.dtstart
	switch r.freq {
	case "DAILY":
		days := int(moment.Sub(start).Hours() / 24)
		return days%r.interval == 0
	case "WEEKLY":
		startWeek := weekStart(start)
		momentWeek := weekStart(moment)
		weeks := int(momentWeek.Sub(startWeek).Hours() / (24 * 7))
		return weeks%r.interval == 0
	case "MONTHLY":
		months := monthsBetween(start, moment)
		return months%r.interval == 0
	case "YEARLY":
		years := moment.Year() - start.Year()
		return years%r.interval == 0
	default:
		return false
	}
}

func weekStart(t time.Time) time.Time {
	wd := isoWeekdayOf(t)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -(wd - 1))
}

func monthsBetween(start, moment time.Time) int {
	return (moment.Year()-start.Year())*12 + int(moment.Month()) - int(start.Month())
}

func byMonthDayMatches(entries []int, moment time.Time) bool {
	dim := daysInMonthOf(moment)
	day := moment.Day()
	for _, n := range entries {
		if n > 0 && day == n {
			return true
		}
		if n < 0 && day == dim+n+1 {
			return true
		}
	}
	return false
}

func daysInMonthOf(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return firstOfNext.AddDate(0, 0, -1).Day()
}

func byDayMatches(entries []byDayEntry, freq string, moment time.Time) bool {
	wd := isoWeekdayOf(moment)
	for _, e := range entries {
		if e.weekday != wd {
			continue
		}
		if e.ordinal == 0 {
			return true
		}
		switch freq {
		case "MONTHLY":
			fromStart, fromEnd := monthOccurrence(moment)
			if (e.ordinal > 0 && fromStart == e.ordinal) || (e.ordinal < 0 && fromEnd == e.ordinal) {
				return true
			}
		case "YEARLY":
			fromStart, fromEnd := yearOccurrence(moment)
			if (e.ordinal > 0 && fromStart == e.ordinal) || (e.ordinal < 0 && fromEnd == e.ordinal) {
				return true
			}
		default:
			// DAILY/WEEKLY ignore the ordinal.
			return true
		}
	}
	return false
}

// monthOccurrence returns the ordinal of t's weekday within its month,
// counted from the start (1, 2, 3, ...) and from the end (-1, -2, ...).
func monthOccurrence(t time.Time) (fromStart, fromEnd int) {
	fromStart = (t.Day()-1)/7 + 1
	dim := daysInMonthOf(t)
	fromEnd = -((dim - t.Day()) / 7) - 1
	return fromStart, fromEnd
}

// yearOccurrence returns the ordinal of t's weekday within its year,
// counted from the start and from the end.
func yearOccurrence(t time.Time) (fromStart, fromEnd int) {
	firstOfYear := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	days := int(t.Sub(firstOfYear).Hours()/24) + 1
	fromStart = (days-1)/7 + 1

	lastOfYear := time.Date(t.Year(), 12, 31, 0, 0, 0, 0, t.Location())
	daysFromEnd := int(lastOfYear.Sub(t).Hours() / 24)
	fromEnd = -(daysFromEnd/7) - 1
	return fromStart, fromEnd
}
