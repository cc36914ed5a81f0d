package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/romegasoftware/availability/internal/config"
	"github.com/romegasoftware/availability/internal/domain/availability"
	"github.com/romegasoftware/availability/internal/domain/availability/inventory"
	"github.com/romegasoftware/availability/internal/domain/availability/registry"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule definitions",
}

var rulesValidateFile string

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rule set file without evaluating",
	Long: `rules validate checks that every rule in --file resolves to a
registered predicate type and carries a well-formed effect, without
evaluating any of them against a subject. This surfaces config/type errors
before they would otherwise only appear as a silently-skipped rule at
evaluation time.`,
	RunE: runRulesValidate,
}

func init() {
	rulesValidateCmd.Flags().StringVar(&rulesValidateFile, "file", "", "YAML file of rule definitions to validate (required)")
	_ = rulesValidateCmd.MarkFlagRequired("file")
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.SetDevDefaults()

	logger := newLogger(cfg.LogLevel)

	parsed, err := loadRulesFile(rulesValidateFile)
	if err != nil {
		return fmt.Errorf("failed to load --file: %w", err)
	}
	if len(parsed) == 0 {
		fmt.Println("no rules found")
		return nil
	}

	inventoryCfg := inventory.Config{
		Resolver:  stringOrNil(cfg.Engine.InventoryGate.Resolver),
		Resolvers: resolverMap(cfg.Engine.InventoryGate.Resolvers),
	}
	reg := registry.New(registry.WithLogger(logger), registry.WithFactory(registry.NewBuiltinFactory(inventoryCfg)))
	registerRuleTypes(reg, cfg.Engine.RuleTypes, inventoryCfg)

	var problems []string
	for i, rule := range parsed {
		if rule.Effect != availability.Allow && rule.Effect != availability.Deny {
			problems = append(problems, fmt.Sprintf("rule[%d]: effect %q must be \"allow\" or \"deny\"", i, rule.Effect))
			continue
		}

		predicate, err := reg.Get(rule.Type)
		if err != nil {
			problems = append(problems, fmt.Sprintf("rule[%d]: type %q: %v", i, rule.Type, err))
			continue
		}
		if predicate == nil {
			problems = append(problems, fmt.Sprintf("rule[%d]: type %q is not registered", i, rule.Type))
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		return fmt.Errorf("%d of %d rules invalid", len(problems), len(parsed))
	}

	fmt.Printf("%d rules valid\n", len(parsed))
	return nil
}
