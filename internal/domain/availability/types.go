// Package availability contains domain types for the availability policy engine.
package availability

import "time"

// Effect represents the outcome a matching rule contributes to an evaluation.
type Effect string

const (
	// Allow permits the subject at the evaluated moment.
	Allow Effect = "allow"
	// Deny blocks the subject at the evaluated moment.
	Deny Effect = "deny"
)

// Allows reports whether the effect permits availability.
func (e Effect) Allows() bool {
	return e == Allow
}

// Rule describes one policy clause belonging to a subject.
type Rule struct {
	// Type is the key into the Registry identifying which predicate applies.
	Type string
	// Config holds predicate-specific parameters. A nil map is equivalent to
	// an empty one; callers never need to special-case it.
	Config map[string]any
	// Effect is applied when the predicate matches.
	Effect Effect
	// Priority orders evaluation; lower runs first.
	Priority int
	// Enabled excludes the rule from evaluation when false.
	Enabled bool
	// Seq records insertion order, used only to break priority ties stably.
	Seq int
}

// Subject is anything an availability policy can be evaluated against.
type Subject interface {
	// AvailabilityRules returns enabled rules in priority-ascending order,
	// stable with respect to insertion order for ties.
	AvailabilityRules() []Rule
	// DefaultEffect is the effect used when no rule matches.
	DefaultEffect() Effect
	// Timezone returns the subject's IANA zone name, or false if the subject
	// has none (the engine falls back to the process-default zone).
	Timezone() (string, bool)
}

// Predicate is a pure (non-inventory) or side-effectful (inventory_gate)
// evaluator of one rule type against a config, a subject-local moment, and
// the subject itself.
type Predicate interface {
	Matches(config map[string]any, moment time.Time, subject Subject) bool
}

// NormalizeConfig returns an empty, non-nil map when cfg is nil, otherwise
// cfg unchanged. Rule.Config is documented as always reaching a predicate
// as a map; this is the single place that invariant is enforced.
func NormalizeConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return cfg
}
