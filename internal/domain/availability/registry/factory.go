package registry

import (
	"fmt"

	"github.com/romegasoftware/availability/internal/domain/availability"
	"github.com/romegasoftware/availability/internal/domain/availability/inventory"
	"github.com/romegasoftware/availability/internal/domain/availability/predicate"
)

// BuiltinTypeNames lists the seven rule-type identifiers the default
// factory resolves.
var BuiltinTypeNames = []string{
	"weekdays",
	"months_of_year",
	"blackout_date",
	"time_of_day",
	"date_range",
	"rrule",
	"inventory_gate",
}

// NewBuiltinFactory returns a Factory resolving BuiltinTypeNames to the
// standard predicate implementations. resolverConfig configures the
// inventory_gate predicate's resolver adapter; it may be the zero Config for
// hosts that never register "inventory_gate".
func NewBuiltinFactory(resolverConfig inventory.Config) Factory {
	return FactoryFunc(func(identifier string) (availability.Predicate, error) {
		switch identifier {
		case "weekdays":
			return predicate.NewWeekdaysEvaluator(), nil
		case "months_of_year":
			return predicate.NewMonthsOfYearEvaluator(), nil
		case "blackout_date":
			return predicate.NewBlackoutDateEvaluator(), nil
		case "time_of_day":
			return predicate.NewTimeOfDayEvaluator(), nil
		case "date_range":
			return predicate.NewDateRangeEvaluator(), nil
		case "rrule":
			return predicate.NewRRuleEvaluator(), nil
		case "inventory_gate":
			return predicate.NewInventoryGateEvaluator(inventory.NewAdapter(resolverConfig)), nil
		default:
			return nil, fmt.Errorf("unknown builtin predicate identifier %q", identifier)
		}
	})
}

// RegisterBuiltins registers all seven builtin predicate types on reg under
// their canonical names, using instances (not identifiers) so no Factory is
// required at Get time.
func RegisterBuiltins(reg *Registry, resolverConfig inventory.Config) {
	adapter := inventory.NewAdapter(resolverConfig)
	reg.Register("weekdays", availability.Predicate(predicate.NewWeekdaysEvaluator()))
	reg.Register("months_of_year", availability.Predicate(predicate.NewMonthsOfYearEvaluator()))
	reg.Register("blackout_date", availability.Predicate(predicate.NewBlackoutDateEvaluator()))
	reg.Register("time_of_day", availability.Predicate(predicate.NewTimeOfDayEvaluator()))
	reg.Register("date_range", availability.Predicate(predicate.NewDateRangeEvaluator()))
	reg.Register("rrule", availability.Predicate(predicate.NewRRuleEvaluator()))
	reg.Register("inventory_gate", availability.Predicate(predicate.NewInventoryGateEvaluator(adapter)))
}
