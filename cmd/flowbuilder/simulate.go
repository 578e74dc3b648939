package main

import (
	"github.com/aretw0/flowbuilder/internal/cli"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Chat with the bot simulator",
	Long: `Greets you with the saved flow's welcome text and answers each line the way
the chatbot would. Type /sv or /en to switch language, quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		debug, _ := cmd.Flags().GetBool("debug")
		return cli.RunSimulate(cli.SimulateOptions{
			Config:   cfg,
			Debug:    debug,
			Headless: headless,
		})
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")

	// Simulating is the default if no command is provided.
	rootCmd.RunE = simulateCmd.RunE
	rootCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")
}
