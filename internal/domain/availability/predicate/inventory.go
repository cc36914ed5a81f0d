package predicate

import (
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
	"github.com/romegasoftware/availability/internal/domain/availability/inventory"
)

// inventoryAdapter is the subset of *inventory.Adapter InventoryGateEvaluator
// depends on, so tests can supply a stub.
type inventoryAdapter interface {
	ResolverFor(subject availability.Subject) (inventory.Resolver, bool)
}

// InventoryGateEvaluator is the only predicate allowed to consult external
// state (spec §4.3.7): it asks its adapter for a resolver bound to the
// subject's class and interprets the resolver's return value against a
// numeric threshold.
type InventoryGateEvaluator struct {
	adapter inventoryAdapter
}

// NewInventoryGateEvaluator constructs an InventoryGateEvaluator bound to
// adapter. The adapter's per-class resolver cache lives as long as this
// predicate instance (spec §3 Lifecycle).
func NewInventoryGateEvaluator(adapter inventoryAdapter) *InventoryGateEvaluator {
	return &InventoryGateEvaluator{adapter: adapter}
}

// Matches resolves config.min, looks up the resolver for subject's class,
// invokes it, and compares the result against the threshold. Any failure
// mode (no resolver, non-numeric min, resolver error, unrecognized return
// type) yields false rather than propagating — except a resolver error,
// which is a host-owned failure and is allowed to propagate per spec §7 by
// not being caught here; callers of Matches never see it though, since
// Matches has no error return. The engine instead calls EvaluateWithError
// directly when it needs propagation; Matches is kept total for callers
// that only need a boolean (e.g. tests exercising the predicate directly).
func (e *InventoryGateEvaluator) Matches(config map[string]any, moment time.Time, subject availability.Subject) bool {
	ok, _ := e.evaluate(config, moment, subject)
	return ok
}

// EvaluateWithError is the form the engine calls: it returns the resolver's
// error, if any, unswallowed (spec §7: inventory resolver failures
// propagate to the caller of IsAvailable).
func (e *InventoryGateEvaluator) EvaluateWithError(config map[string]any, moment time.Time, subject availability.Subject) (bool, error) {
	return e.evaluate(config, moment, subject)
}

func (e *InventoryGateEvaluator) evaluate(config map[string]any, moment time.Time, subject availability.Subject) (bool, error) {
	minRaw, ok := config["min"]
	if !ok {
		return false, nil
	}
	min, ok := asFloat(minRaw)
	if !ok {
		return false, nil
	}
	if min < 0 {
		min = 0
	}

	if e.adapter == nil {
		return false, nil
	}
	resolver, ok := e.adapter.ResolverFor(subject)
	if !ok || resolver == nil {
		return false, nil
	}

	result, err := resolver(subject, moment, config)
	if err != nil {
		return false, err
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	default:
		if f, ok := asFloat(v); ok {
			return f >= min, nil
		}
		return false, nil
	}
}
