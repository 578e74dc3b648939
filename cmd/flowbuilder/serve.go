package main

import (
	"github.com/aretw0/flowbuilder/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API server",
	Long: `Starts the editor behind a JSON API over HTTP, with server-sent events on
/events and a websocket on /ws for the browser canvas.
Every route but health, info, the API document and metrics requires a bearer
token when a JWT secret is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			cfg.Listen, _ = cmd.Flags().GetString("listen")
		}
		debug, _ := cmd.Flags().GetBool("debug")
		return cli.RunServe(cfg, debug)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
}
