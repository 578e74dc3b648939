package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flowbuilder/internal/config"
	"github.com/spf13/cobra"
)

// cfg is loaded once before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "flowbuilder",
	Short: "Flowbuilder is a headless editor for chatbot conversation flows",
	Long: `Flowbuilder edits the conversation flow of a support chatbot: welcome,
intent, condition, message and handoff nodes wired into a graph.
It serves an admin API for the browser canvas, an MCP server for AI agents
and a console simulator.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")

		loaded, err := config.Load(path, envFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("backend") {
			loaded.Storage.Backend, _ = cmd.Flags().GetString("backend")
		}
		if cmd.Flags().Changed("data") {
			loaded.Storage.Path, _ = cmd.Flags().GetString("data")
		}
		if cmd.Flags().Changed("dsn") {
			loaded.Storage.DSN, _ = cmd.Flags().GetString("dsn")
		}
		if cmd.Flags().Changed("key") {
			loaded.Key, _ = cmd.Flags().GetString("key")
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "flowbuilder.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file with FLOWBUILDER_* overrides (default: .env if present)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: memory, file, redis, sqlite or postgres")
	rootCmd.PersistentFlags().String("data", "", "Directory of the file backend")
	rootCmd.PersistentFlags().String("dsn", "", "Database DSN of the sqlite and postgres backends")
	rootCmd.PersistentFlags().String("key", "", "Storage slot of the flow")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
