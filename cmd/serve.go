/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tristendillon/govgen/core/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis and generation over HTTP",
	Long: `Starts an HTTP server with JSON endpoints:

  POST /api/analyze   {"source": "...", "mode": "strict", "functions": [...]}
  POST /api/discover  {"source": "..."}
  POST /api/fetch     {"package": "0x...", "module": "...", "mode": "broad"}
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return server.NewServer(cfg, nil).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config)")
}
