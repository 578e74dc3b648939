package main

import (
	"os"
	"time"

	"github.com/aretw0/flowbuilder/internal/cli"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin bearer token",
	Long:  `Signs a token with the configured JWT secret for the admin API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		return cli.RunToken(cfg, os.Stdout, subject, ttl)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "admin", "Subject claim of the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
