package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/romegasoftware/availability/internal/adapter/outbound/cache"
	"github.com/romegasoftware/availability/internal/adapter/outbound/metrics"
	"github.com/romegasoftware/availability/internal/adapter/outbound/sqlitestore"
	"github.com/romegasoftware/availability/internal/config"
	"github.com/romegasoftware/availability/internal/domain/availability"
	"github.com/romegasoftware/availability/internal/domain/availability/inventory"
	"github.com/romegasoftware/availability/internal/domain/availability/registry"
	"github.com/romegasoftware/availability/internal/domain/availability/rules"
	"github.com/romegasoftware/availability/internal/telemetry"
)

var (
	evalSubjectType   string
	evalSubjectID     string
	evalAt            string
	evalTimezone      string
	evalDefaultEffect string
	evalRulesFile     string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a subject's availability at a moment",
	Long: `Evaluate loads a subject's rules from the configured store, folds them
against a moment, and prints "allow" or "deny".

Examples:
  availabilityd evaluate --subject-type Room --subject-id room-1
  availabilityd evaluate --subject-type Room --subject-id room-1 \
      --at 2025-01-13T10:00:00Z --rules-file rules.yaml`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalSubjectType, "subject-type", "", "subject class name (required)")
	evaluateCmd.Flags().StringVar(&evalSubjectID, "subject-id", "", "subject identifier (required)")
	evaluateCmd.Flags().StringVar(&evalAt, "at", "", "moment to evaluate, RFC3339 (default: now)")
	evaluateCmd.Flags().StringVar(&evalTimezone, "timezone", "", "IANA zone name the subject localizes to (default: subject's own, or process-local)")
	evaluateCmd.Flags().StringVar(&evalDefaultEffect, "default-effect", "", "override the subject's default effect: allow or deny")
	evaluateCmd.Flags().StringVar(&evalRulesFile, "rules-file", "", "YAML file of rule definitions to seed the subject with before evaluating")
	_ = evaluateCmd.MarkFlagRequired("subject-type")
	_ = evaluateCmd.MarkFlagRequired("subject-id")
	rootCmd.AddCommand(evaluateCmd)
}

// fileRule is the YAML shape a --rules-file entry takes.
type fileRule struct {
	Type     string         `yaml:"type"`
	Config   map[string]any `yaml:"config"`
	Effect   string         `yaml:"effect"`
	Priority int            `yaml:"priority"`
	Enabled  *bool          `yaml:"enabled"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	evaluationID := uuid.New().String()
	logger = logger.With("evaluation_id", evaluationID)

	moment := time.Now().UTC()
	if evalAt != "" {
		moment, err = time.Parse(time.RFC3339, evalAt)
		if err != nil {
			return fmt.Errorf("invalid --at %q: %w", evalAt, err)
		}
	}

	defaultEffect := availability.Effect(cfg.Engine.DefaultEffect)
	if evalDefaultEffect != "" {
		defaultEffect = availability.Effect(evalDefaultEffect)
	}

	var fileRules []availability.Rule
	if evalRulesFile != "" {
		fileRules, err = loadRulesFile(evalRulesFile)
		if err != nil {
			return fmt.Errorf("failed to load --rules-file: %w", err)
		}
	}

	ctx := context.Background()

	var tracer availability.Option
	if cfg.Telemetry.Enabled {
		providers, err := telemetry.Setup(cfg.Telemetry.ServiceName, os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to set up telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", "error", err)
			}
		}()
		tracer = availability.WithTracer(telemetry.Tracer("availabilityd"))
	}

	subject, err := loadSubject(ctx, cfg, evalSubjectType, evalSubjectID, defaultEffect, evalTimezone, fileRules)
	if err != nil {
		return err
	}

	inventoryCfg := inventory.Config{
		Resolver:  stringOrNil(cfg.Engine.InventoryGate.Resolver),
		Resolvers: resolverMap(cfg.Engine.InventoryGate.Resolvers),
	}
	reg := registry.New(registry.WithLogger(logger), registry.WithFactory(registry.NewBuiltinFactory(inventoryCfg)))
	registerRuleTypes(reg, cfg.Engine.RuleTypes, inventoryCfg)

	metricsReg := prometheus.NewRegistry()
	opts := []availability.Option{
		availability.WithCache(cache.New(cfg.Engine.CacheSize)),
		availability.WithMetrics(metrics.New(metricsReg)),
	}
	if tracer != nil {
		opts = append(opts, tracer)
	}
	engine := availability.NewEngine(reg, logger, opts...)

	allowed, err := engine.IsAvailable(ctx, subject, moment)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		return fmt.Errorf("evaluation failed: %w", err)
	}

	result := "deny"
	if allowed {
		result = "allow"
	}
	logger.Info("evaluation complete", "result", result, "subject_type", evalSubjectType, "subject_id", evalSubjectID)
	fmt.Printf("%s (evaluation_id=%s)\n", result, evaluationID)
	return nil
}

// loadSubject constructs a rules.Subject for (subjectType, subjectID),
// backed by the configured store. When fileRules is non-empty it seeds (and,
// for the sqlite driver, persists) those rules before returning.
func loadSubject(ctx context.Context, cfg *config.EngineConfig, subjectType, subjectID string, defaultEffect availability.Effect, timezone string, fileRules []availability.Rule) (*rules.Subject, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		store, err := sqlitestore.Open(ctx, sqlitestore.Config{DSN: cfg.Store.DSN, Table: cfg.Store.Table})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		defer store.Close()

		if len(fileRules) > 0 {
			if err := store.ReplaceRules(ctx, subjectType, subjectID, fileRules); err != nil {
				return nil, fmt.Errorf("failed to seed sqlite rules: %w", err)
			}
		}

		loaded, err := store.LoadRules(ctx, subjectType, subjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load sqlite rules: %w", err)
		}

		subject := rules.NewSubject(subjectID, subjectType, defaultEffect, timezone)
		subject.SetRules(loaded)
		return subject, nil

	default: // "memory"
		subject := rules.NewSubject(subjectID, subjectType, defaultEffect, timezone)
		if len(fileRules) > 0 {
			subject.SetRules(fileRules)
		}
		return subject, nil
	}
}

// registerRuleTypes registers any host-configured rule-type-to-identifier
// mappings on top of the builtins, letting a host alias or override a
// builtin name (spec §4.1 definition kind (ii)).
func registerRuleTypes(reg *registry.Registry, ruleTypes map[string]string, inventoryCfg inventory.Config) {
	registry.RegisterBuiltins(reg, inventoryCfg)
	for ruleType, identifier := range ruleTypes {
		reg.Register(ruleType, identifier)
	}
}

func loadRulesFile(path string) ([]availability.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []fileRule
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	out := make([]availability.Rule, len(entries))
	for i, e := range entries {
		enabled := true
		if e.Enabled != nil {
			enabled = *e.Enabled
		}
		out[i] = availability.Rule{
			Type:     e.Type,
			Config:   e.Config,
			Effect:   availability.Effect(e.Effect),
			Priority: e.Priority,
			Enabled:  enabled,
		}
	}
	return out, nil
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func resolverMap(m map[string]string) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
