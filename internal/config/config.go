// Package config provides configuration types for the availability policy
// engine: the three configuration points the core itself reads (spec §6,
// §9) plus the ambient server/logging knobs a host process needs.
package config

// EngineConfig is the top-level configuration for an availability engine
// host. DefaultEffect, RuleTypes and InventoryGate under Engine are the
// core's recognized options (spec §6); everything else (the decision cache
// size, logging, CLI, persistence) has no bearing on evaluation semantics.
type EngineConfig struct {
	// Engine configures the core: default effect, rule-type wiring, and
	// the inventory resolver.
	Engine EngineSection `yaml:"engine" mapstructure:"engine"`

	// Store configures the persisted rule backend the CLI and host wire
	// up (spec's "external store" the core treats opaquely).
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// LogLevel sets the minimum slog level. Valid values: "debug", "info",
	// "warn", "error". Defaults to "info" if empty.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Telemetry configures optional OpenTelemetry tracing/metrics export.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode enables permissive defaults (an in-memory store, verbose
	// logging) for running the CLI against no external infrastructure.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// EngineSection configures the availability core (spec §6 "Configuration
// block").
type EngineSection struct {
	// DefaultEffect is the fallback effect for subjects without an
	// explicit default. Valid values: "allow", "deny".
	DefaultEffect string `yaml:"default_effect" mapstructure:"default_effect" validate:"required,oneof=allow deny"`

	// RuleTypes maps a rule-type name to a definition identifier resolved
	// through the built-in predicate factory (spec §4.1 definition kind
	// (ii)). Hosts that need a custom predicate register it in code
	// instead of here.
	RuleTypes map[string]string `yaml:"rule_types" mapstructure:"rule_types"`

	// InventoryGate configures the inventory resolver adapter.
	InventoryGate InventoryGateConfig `yaml:"inventory_gate" mapstructure:"inventory_gate"`

	// CacheSize bounds the decision cache. SetDefaults replaces 0 with
	// 1000 and validation rejects negative values, so caching cannot be
	// turned off through this field.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size" validate:"omitempty,min=0"`
}

// InventoryGateConfig configures the inventory_gate predicate's resolver
// adapter (spec §4.4, §6).
type InventoryGateConfig struct {
	// Resolver is the global fallback resolver definition: a class name or
	// a "Class@Method" string. The inventory adapter resolves it lazily,
	// on first use for each subject class, through the host's instance
	// factory.
	Resolver string `yaml:"resolver" mapstructure:"resolver"`

	// Resolvers maps a subject class name (or "*" for wildcard) to a
	// per-class resolver definition, same shapes as Resolver.
	Resolvers map[string]string `yaml:"resolvers" mapstructure:"resolvers"`
}

// StoreConfig configures the persisted rule backend.
type StoreConfig struct {
	// Driver selects the backend: "memory" or "sqlite".
	Driver string `yaml:"driver" mapstructure:"driver" validate:"omitempty,oneof=memory sqlite"`

	// DSN is the backend-specific connection string (e.g. a sqlite file
	// path). Table is the name of the storage location for rules
	// (spec §6 "table").
	DSN   string `yaml:"dsn" mapstructure:"dsn"`
	Table string `yaml:"table" mapstructure:"table"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	// Enabled turns on tracing/metrics export.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// ServiceName identifies this process in exported spans/metrics.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *EngineConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Engine.DefaultEffect == "" {
		c.Engine.DefaultEffect = "deny"
	}
	if c.Engine.CacheSize == 0 {
		c.Engine.CacheSize = 1000
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.Table == "" {
		c.Store.Table = "availability_rules"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "availabilityd"
	}
}

// SetDevDefaults applies permissive defaults for development mode. Called
// after SetDefaults so required fields are satisfied before validation.
func (c *EngineConfig) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.LogLevel == "info" {
		c.LogLevel = "debug"
	}
}
