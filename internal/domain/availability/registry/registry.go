// Package registry implements the evaluator registry: the map from rule-type
// names to predicate instances, with lazy construction and per-type caching.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/romegasoftware/availability/internal/domain/availability"
)

// Factory resolves a type identifier to a constructed Predicate. Hosts that
// register definitions by identifier (Registry.Register with a string
// definition) must supply a Factory at construction time.
type Factory interface {
	New(identifier string) (availability.Predicate, error)
}

// FactoryFunc adapts a function to a Factory.
type FactoryFunc func(identifier string) (availability.Predicate, error)

// New implements Factory.
func (f FactoryFunc) New(identifier string) (availability.Predicate, error) {
	return f(identifier)
}

// definitionKind distinguishes the three shapes a definition may take.
type definitionKind int

const (
	kindInstance definitionKind = iota
	kindIdentifier
	kindConstructor
)

type definition struct {
	kind       definitionKind
	instance   availability.Predicate
	identifier string
	construct  func() availability.Predicate
}

// Registry maps rule-type names to predicates, constructing and caching
// them lazily. It is safe for concurrent Get/All calls once all Register
// calls have completed; hosts install every definition at startup
// (spec §5).
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]definition
	resolved map[string]availability.Predicate
	factory  Factory
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithFactory installs the Factory used to resolve identifier definitions.
func WithFactory(f Factory) Option {
	return func(r *Registry) { r.factory = f }
}

// WithLogger installs a logger; defaults to slog.Default() when omitted.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		defs:     make(map[string]definition),
		resolved: make(map[string]availability.Predicate),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores a definition for ruleType, overwriting any existing one
// and invalidating that type's cached predicate. def must be an
// availability.Predicate, a string identifier (resolved through the
// configured Factory on first Get), or a func() availability.Predicate
// constructor. Any other shape makes Get return a nil predicate and All
// skip the type.
func (r *Registry) Register(ruleType string, def any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs[ruleType] = toDefinition(def)
	delete(r.resolved, ruleType)
}

func toDefinition(def any) definition {
	switch v := def.(type) {
	case availability.Predicate:
		return definition{kind: kindInstance, instance: v}
	case string:
		return definition{kind: kindIdentifier, identifier: v}
	case func() availability.Predicate:
		return definition{kind: kindConstructor, construct: v}
	default:
		// Structurally invalid; resolve() below returns nil for this.
		return definition{kind: kindInstance, instance: nil}
	}
}

// Get resolves and returns the predicate for ruleType. The result is cached
// after the first successful resolution. Returns (nil, nil) when no
// definition exists, the definition is structurally invalid, or resolution
// yields nil — callers treat this as "skip the rule", not as an error.
// A non-nil error means the registered factory or constructor itself failed;
// per spec §7 that is a host wiring bug and propagates to the caller rather
// than being swallowed as "unregistered type".
func (r *Registry) Get(ruleType string) (availability.Predicate, error) {
	r.mu.RLock()
	if p, ok := r.resolved[ruleType]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	def, ok := r.defs[ruleType]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	p, err := r.resolve(ruleType, def)
	if err != nil {
		r.logger.Error("availability registry: predicate construction failed",
			"rule_type", ruleType, "error", err)
		return nil, fmt.Errorf("availability: constructing predicate %q: %w", ruleType, err)
	}
	if p == nil {
		return nil, nil
	}

	r.mu.Lock()
	r.resolved[ruleType] = p
	r.mu.Unlock()
	return p, nil
}

// resolve constructs the predicate described by def. Construction errors
// from an injected factory or constructor propagate to the caller of Get
// (spec §7): they are programmer errors in host wiring, not evaluation
// input, so they are not silently converted into "unregistered type".
func (r *Registry) resolve(ruleType string, def definition) (availability.Predicate, error) {
	switch def.kind {
	case kindInstance:
		return def.instance, nil
	case kindConstructor:
		return def.construct(), nil
	case kindIdentifier:
		if r.factory == nil {
			return nil, fmt.Errorf("no factory configured to resolve identifier %q for type %q", def.identifier, ruleType)
		}
		return r.factory.New(def.identifier)
	default:
		return nil, nil
	}
}

// CachedCount returns the number of predicates currently resolved and
// cached. Used by hosts that expose it as a gauge (e.g. RegistryCacheSize).
func (r *Registry) CachedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resolved)
}

// All resolves every registered definition, skipping ones that resolve to
// nil, and returns the full cache. A construction failure from any
// definition propagates to the caller (spec §7), same as Get.
func (r *Registry) All() (map[string]availability.Predicate, error) {
	r.mu.RLock()
	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	r.mu.RUnlock()

	for _, t := range types {
		if _, err := r.Get(t); err != nil {
			return nil, err
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]availability.Predicate, len(r.resolved))
	for k, v := range r.resolved {
		out[k] = v
	}
	return out, nil
}
