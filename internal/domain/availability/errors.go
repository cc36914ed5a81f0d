package availability

import "errors"

// Errors surfaced by the engine. An unregistered rule type or a malformed
// config is not an error: it never changes the evaluated effect, it only
// causes the offending rule to be skipped (or not to match) and, optionally,
// logged.
var (
	// ErrSubjectNil is returned when IsAvailable is called with a nil subject.
	ErrSubjectNil = errors.New("availability: subject is nil")
)
