package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dunehq/dune/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the conversation graph for consistency",
	Long:  `Loads the configured graph and reports undeclared edge targets or an unreachable terminal state.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err == nil {
			_, err = buildEngine(cfg, logging.NewNop())
		}
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Graph is valid!")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
