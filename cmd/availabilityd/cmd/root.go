// Package cmd provides the CLI commands for availabilityd.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/romegasoftware/availability/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "availabilityd",
	Short: "Availability policy engine",
	Long: `availabilityd hosts the availability policy engine: a deterministic
evaluator that answers whether a subject is available at a given moment,
driven by an ordered set of persisted rules.

Quick start:
  1. Create a config file: availabilityd.yaml
  2. Run: availabilityd evaluate --subject-type Room --subject-id room-1

Configuration:
  Config is loaded from availabilityd.yaml in the current directory,
  $HOME/.availabilityd/, or /etc/availabilityd/.

  Environment variables can override config values with the AVAILABILITYD_
  prefix. Example: AVAILABILITYD_ENGINE_DEFAULT_EFFECT=allow

Commands:
  evaluate        Evaluate a subject's availability at a moment
  rules validate  Validate a rule set file without evaluating
  version         Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./availabilityd.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
