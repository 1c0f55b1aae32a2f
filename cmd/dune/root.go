package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dunehq/dune"
	"github.com/dunehq/dune/internal/config"
	"github.com/dunehq/dune/pkg/adapters/file"
	"github.com/dunehq/dune/pkg/policy"
)

var rootCmd = &cobra.Command{
	Use:   "dune",
	Short: "Dune is a policy-gated conversation workflow engine",
	Long: `Dune drives multi-turn conversations through a fixed graph of dialogue
stages, vetting every output against policy, auditing every transition,
and gating all external actions behind a validated, killable dispatch path.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to an optional config file (settings also read from DUNE_* env vars)")
}

// loadConfig reads the --config flag and loads process configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// buildEngine assembles an engine from process configuration.
func buildEngine(cfg config.Config, logger *slog.Logger, extra ...dune.Option) (*dune.Engine, error) {
	opts := []dune.Option{
		dune.WithLogger(logger),
		dune.WithClassifier(policy.NewDenylist(cfg.Denylist)),
		dune.WithKillSwitchEnabled(cfg.KillSwitch),
		dune.WithDefaultTenant(cfg.TenantID),
	}
	if cfg.GraphPath != "" {
		opts = append(opts, dune.WithLoader(file.NewLoader(cfg.GraphPath)))
	}
	opts = append(opts, extra...)
	return dune.New(opts...)
}
