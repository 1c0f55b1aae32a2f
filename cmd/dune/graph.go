package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dunehq/dune/internal/logging"
	"github.com/dunehq/dune/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the conversation graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) representing the conversation topology.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		engine, err := buildEngine(cfg, logging.NewNop())
		if err != nil {
			return err
		}

		fmt.Print(graph.GenerateMermaid(engine.Inspect(), engine.EntryNode()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
