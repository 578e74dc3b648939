package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowbuilder"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowbuilder",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flowbuilder version %s\n", strings.TrimSpace(flowbuilder.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
