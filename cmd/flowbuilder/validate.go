package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flowbuilder/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the saved flow for consistency",
	Long:  `Reads the saved snapshot and reports unknown kinds, duplicate ids, dangling edges and edges that break the port direction rule.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RunValidate(cmd.Context(), cfg, os.Stdout); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
