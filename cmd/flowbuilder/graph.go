package main

import (
	"os"

	"github.com/aretw0/flowbuilder/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long:  `Loads the saved flow and outputs it as a Mermaid diagram (graph LR), a static SVG or JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return cli.RunGraph(cmd.Context(), cfg, os.Stdout, format)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", cli.FormatMermaid, "Output format: mermaid, svg or json")
}
