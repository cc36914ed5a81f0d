// Package inventory normalizes heterogeneous inventory resolver
// definitions into a single callable shape and memoizes the result per
// subject class, as described in spec §4.4.
package inventory

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// Resolver is the uniform callable shape every resolver definition is
// normalized to.
type Resolver func(subject availability.Subject, moment time.Time, ruleConfig map[string]any) (any, error)

// InstanceFactory constructs a resolver instance by class name, used when a
// definition names a class to instantiate (string or [class, method]
// shapes). Hosts that never use those shapes may leave it nil.
type InstanceFactory interface {
	New(className string) (any, error)
}

// MethodBinder binds a named method on a resolver instance into a
// Resolver-shaped callable. Hosts that never use "@"/class+method shapes
// may leave it nil.
type MethodBinder func(instance any, method string) (Resolver, error)

// Config is the `inventory_gate` configuration block (spec §6):
// Resolver is the global fallback, Resolvers maps subject-class name (or
// "*" for wildcard) to a per-class definition.
type Config struct {
	Resolver  any
	Resolvers map[string]any

	Factory      InstanceFactory
	BindMethod   MethodBinder
	CallableFunc map[string]Resolver // pre-bound callables keyed by identifier, for definitions that are plain Go functions registered by name
}

// Adapter resolves, normalizes, and memoizes the callable for each subject
// class seen by InventoryGateEvaluator.
type Adapter struct {
	cfg Config

	mu       sync.Mutex
	resolved map[reflect.Type]Resolver // nil value cached as explicit "no resolver"
	has      map[reflect.Type]bool
}

// NewAdapter constructs an Adapter from cfg.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{
		cfg:      cfg,
		resolved: make(map[reflect.Type]Resolver),
		has:      make(map[reflect.Type]bool),
	}
}

// ResolverFor returns the normalized resolver for subject's concrete Go
// type, or (nil, false) if no definition is configured for that class.
// The mapping is memoized for the adapter's lifetime; flushing requires
// constructing a new Adapter (spec: "flushing requires recreating the
// predicate instance").
func (a *Adapter) ResolverFor(subject availability.Subject) (Resolver, bool) {
	class := reflect.TypeOf(subject)

	a.mu.Lock()
	if r, ok := a.resolved[class]; ok {
		ok2 := a.has[class]
		a.mu.Unlock()
		return r, ok2
	}
	a.mu.Unlock()

	def, className := a.selectDefinition(class)
	resolver, ok := a.normalize(def, className)

	a.mu.Lock()
	a.resolved[class] = resolver
	a.has[class] = ok
	a.mu.Unlock()

	return resolver, ok
}

// selectDefinition picks the first available definition in order:
// resolvers[class-name], resolvers["*"], resolver.
func (a *Adapter) selectDefinition(class reflect.Type) (def any, className string) {
	className = classNameOf(class)
	if a.cfg.Resolvers != nil {
		if d, ok := a.cfg.Resolvers[className]; ok {
			return d, className
		}
		if d, ok := a.cfg.Resolvers["*"]; ok {
			return d, className
		}
	}
	return a.cfg.Resolver, className
}

func classNameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// normalize converts def into a Resolver per the table in spec §4.4.
func (a *Adapter) normalize(def any, className string) (Resolver, bool) {
	if def == nil {
		return nil, false
	}

	switch v := def.(type) {
	case Resolver:
		return v, true
	case func(availability.Subject, time.Time, map[string]any) (any, error):
		return Resolver(v), true
	case string:
		return a.normalizeString(v)
	case []any:
		return a.normalizeTuple(v)
	default:
		return nil, false
	}
}

func (a *Adapter) normalizeString(v string) (Resolver, bool) {
	if r, ok := a.cfg.CallableFunc[v]; ok {
		return r, true
	}

	if idx := strings.IndexByte(v, '@'); idx >= 0 {
		className, method := v[:idx], v[idx+1:]
		instance, err := a.instantiate(className)
		if err != nil {
			return nil, false
		}
		return a.bind(instance, method)
	}

	// String without "@": a class name. Instantiate; use the instance
	// itself as the callable if it is a function of Resolver's signature,
	// otherwise bind its "Resolve" method.
	instance, err := a.instantiate(v)
	if err != nil {
		return nil, false
	}
	if r, ok := instance.(func(availability.Subject, time.Time, map[string]any) (any, error)); ok {
		return Resolver(r), true
	}
	return a.bind(instance, "Resolve")
}

func (a *Adapter) normalizeTuple(v []any) (Resolver, bool) {
	if len(v) != 2 {
		return nil, false
	}
	method, ok := v[1].(string)
	if !ok {
		return nil, false
	}

	switch first := v[0].(type) {
	case string:
		instance, err := a.instantiate(first)
		if err != nil {
			return nil, false
		}
		return a.bind(instance, method)
	default:
		return a.bind(first, method)
	}
}

func (a *Adapter) instantiate(className string) (any, error) {
	if a.cfg.Factory == nil {
		return nil, fmt.Errorf("inventory: no instance factory configured to construct %q", className)
	}
	return a.cfg.Factory.New(className)
}

func (a *Adapter) bind(instance any, method string) (Resolver, bool) {
	if a.cfg.BindMethod == nil {
		return nil, false
	}
	r, err := a.cfg.BindMethod(instance, method)
	if err != nil || r == nil {
		return nil, false
	}
	return r, true
}
