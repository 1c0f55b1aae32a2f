package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dunehq/dune"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dune",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dune version %s\n", dune.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
