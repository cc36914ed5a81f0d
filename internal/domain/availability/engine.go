package availability

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/romegasoftware/availability/internal/adapter/outbound/cache"
	"github.com/romegasoftware/availability/internal/adapter/outbound/metrics"
)

// predicateRegistry is the subset of *registry.Registry the Engine depends
// on. Defined locally to avoid an import cycle between availability and
// registry (registry imports availability for the Predicate type).
type predicateRegistry interface {
	Get(ruleType string) (Predicate, error)
}

// errorAwarePredicate is implemented by predicates that can fail (today,
// only InventoryGateEvaluator) and want their error propagated instead of
// folded into "no match" (spec §7).
type errorAwarePredicate interface {
	EvaluateWithError(config map[string]any, moment time.Time, subject Subject) (bool, error)
}

// Engine is the availability policy engine: it loads a subject's enabled
// rules, localizes the query moment to the subject's timezone, and folds
// matching rules into a final effect with last-match-wins semantics.
type Engine struct {
	registry predicateRegistry
	logger   *slog.Logger
	cache    *cache.DecisionCache
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	version  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache installs a bounded decision cache. Cached decisions are keyed
// on subject identity, class, moment (truncated to the second), and the
// engine's rule-set version; call BumpVersion when a subject's rules
// change so stale entries stop being served. The engine takes no lock
// around the cache, so concurrent IsAvailable calls on an engine built
// with a cache must be serialized by the caller.
func WithCache(c *cache.DecisionCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics installs a Prometheus metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer installs an OpenTelemetry tracer; IsAvailable wraps its body in
// a span. Omitted, evaluation runs untraced.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine constructs an Engine backed by registry. A nil logger defaults
// to slog.Default().
func NewEngine(registry predicateRegistry, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{registry: registry, logger: logger, tracer: noop.NewTracerProvider().Tracer("")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BumpVersion invalidates any decisions cached under the engine's previous
// rule-set version. Hosts call this after mutating a Subject's rules.
func (e *Engine) BumpVersion() {
	e.version++
	if e.cache != nil {
		e.cache.Clear()
	}
}

// identifiableSubject is implemented by subjects that can be named for
// cache-key purposes (e.g. rules.Subject). Subjects that don't implement it
// simply never hit the cache.
type identifiableSubject interface {
	ID() string
	Class() string
}

// sizedRegistry is implemented by registries that can report how many
// predicates they currently have resolved and cached (e.g.
// *registry.Registry). Registries that don't implement it simply never
// update the RegistryCacheSize gauge.
type sizedRegistry interface {
	CachedCount() int
}

// IsAvailable answers whether subject is available at moment. ctx carries
// the tracing span and is checked for cancellation between rules; it is not
// passed to predicates or inventory resolvers, and the engine itself never
// suspends (spec §5).
func (e *Engine) IsAvailable(ctx context.Context, subject Subject, moment time.Time) (bool, error) {
	if subject == nil {
		return false, ErrSubjectNil
	}

	ctx, span := e.tracer.Start(ctx, "availability.IsAvailable")
	defer span.End()

	if e.metrics != nil {
		start := time.Now()
		defer func() { e.metrics.EvaluationDuration.Observe(time.Since(start).Seconds()) }()
		if sr, ok := e.registry.(sizedRegistry); ok {
			e.metrics.RegistryCacheSize.Set(float64(sr.CachedCount()))
		}
	}

	zone, hasZone := subject.Timezone()
	if !hasZone {
		zone = ""
	}

	var cacheKey uint64
	cacheable := false
	if e.cache != nil {
		if id, ok := subject.(identifiableSubject); ok {
			cacheKey = cache.KeyWithZone(id.ID(), id.Class(), e.version, moment, zone)
			cacheable = true
			if decision, hit := e.cache.Get(cacheKey); hit {
				if e.metrics != nil {
					e.metrics.CacheHitsTotal.Inc()
				}
				span.SetAttributes(attribute.Bool("availability.cache_hit", true), attribute.Bool("availability.result", decision))
				return decision, nil
			}
			if e.metrics != nil {
				e.metrics.CacheMissesTotal.Inc()
			}
		}
	}

	localMoment := localize(moment, zone)

	rules := orderedRules(subject.AvailabilityRules())

	state := subject.DefaultEffect().Allows()

	for _, rule := range rules {
		select {
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			return state, ctx.Err()
		default:
		}

		predicate, err := e.registry.Get(rule.Type)
		if err != nil {
			span.RecordError(err)
			if e.metrics != nil {
				e.metrics.PredicateErrorTotal.WithLabelValues(rule.Type).Inc()
			}
			return false, err
		}
		if predicate == nil {
			e.logger.Debug("availability: skipping rule with unregistered type",
				"rule_type", rule.Type, "priority", rule.Priority)
			continue
		}

		config := NormalizeConfig(rule.Config)

		matched, err := matchPredicate(predicate, config, localMoment, subject)
		if err != nil {
			span.RecordError(err)
			if e.metrics != nil {
				e.metrics.PredicateErrorTotal.WithLabelValues(rule.Type).Inc()
			}
			return false, err
		}
		if matched {
			state = rule.Effect.Allows()
		}
	}

	e.logger.Debug("availability: evaluation complete", "result", state, "rules_considered", len(rules))
	span.SetAttributes(attribute.Bool("availability.cache_hit", false), attribute.Bool("availability.result", state))
	if e.metrics != nil {
		e.metrics.RecordEvaluation(state)
	}
	if cacheable {
		e.cache.Put(cacheKey, state)
	}
	return state, nil
}

func matchPredicate(p Predicate, config map[string]any, moment time.Time, subject Subject) (bool, error) {
	if ep, ok := p.(errorAwarePredicate); ok {
		return ep.EvaluateWithError(config, moment, subject)
	}
	return p.Matches(config, moment, subject), nil
}

// orderedRules returns a defensive copy of the enabled rules sorted by
// priority ascending, stable on Seq for ties. Subjects are already
// documented to return enabled rules in this order; filtering and sorting
// again here is a cheap safety net against a non-compliant Subject
// implementation and never changes a compliant one's result.
func orderedRules(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
