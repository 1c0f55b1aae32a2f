package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dunehq/dune/internal/logging"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Run the conversation workflow to completion",
	Long: `Drives a conversation from the entry stage to the terminal state and
prints the final policy-vetted output. The input is treated as untrusted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := logging.New(cfg.SlogLevel())
		logger.Info("startup", "env", cfg.Env)

		tenantID, _ := cmd.Flags().GetString("tenant")
		input := strings.Join(args, " ")
		if input == "" && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Print("> ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			input = strings.TrimSpace(line)
		}

		engine, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}

		final, err := engine.RunConversation(context.Background(), tenantID, input)
		if err != nil {
			return err
		}
		fmt.Println(final.LastOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("tenant", "", "Tenant identifier (defaults to the configured tenant)")
}
