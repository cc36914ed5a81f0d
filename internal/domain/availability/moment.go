package availability

import "time"

// localize returns moment displayed in the named IANA zone, preserving the
// underlying instant. An empty zone name falls back to time.Local (the
// process-default timezone). moment is a time.Time value and is never
// mutated by this call; In returns a new value.
func localize(moment time.Time, zone string) time.Time {
	if zone == "" {
		return moment.In(time.Local)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return moment.In(time.Local)
	}
	return moment.In(loc)
}
