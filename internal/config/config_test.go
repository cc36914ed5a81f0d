package config

import "testing"

func TestEngineConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg EngineConfig
	cfg.SetDefaults()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Engine.DefaultEffect != "deny" {
		t.Errorf("DefaultEffect = %q, want %q", cfg.Engine.DefaultEffect, "deny")
	}
	if cfg.Engine.CacheSize != 1000 {
		t.Errorf("CacheSize = %d, want 1000", cfg.Engine.CacheSize)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, "memory")
	}
}

func TestEngineConfig_SetDevDefaults(t *testing.T) {
	t.Parallel()

	var cfg EngineConfig
	cfg.DevMode = true
	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q in dev mode", cfg.LogLevel, "debug")
	}
}

func TestEngineConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := EngineConfig{Engine: EngineSection{DefaultEffect: "allow"}}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestEngineConfig_Validate_BadDefaultEffect(t *testing.T) {
	t.Parallel()

	cfg := EngineConfig{Engine: EngineSection{DefaultEffect: "maybe"}}
	cfg.SetDefaults()
	cfg.Engine.DefaultEffect = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for invalid default_effect")
	}
}

func TestEngineConfig_Validate_InventoryGateMissingResolver(t *testing.T) {
	t.Parallel()

	cfg := EngineConfig{
		Engine: EngineSection{
			DefaultEffect: "deny",
			RuleTypes:     map[string]string{"gate": "inventory_gate"},
		},
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for inventory_gate without resolver")
	}
}
