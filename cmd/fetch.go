/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/rpc"
)

var (
	fetchPackage  string
	fetchModule   string
	fetchRPCURL   string
	fetchTimeout  time.Duration
	fetchFallback bool
	fetchMode     modeValue
	fetchOpts     outputOptions
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Generate governance for a module already published on chain",
	Long: `Reads the normalized module from a Sui fullnode and generates a governance
module for it. Parameter names are derived from their types.

Without --module every module of the package is read, and one governance
module is written per module with governable actions. --out then names the
output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := cfg.RPC.URL
		if fetchRPCURL != "" {
			url = fetchRPCURL
		}
		timeout := cfg.RPC.Timeout
		if fetchTimeout > 0 {
			timeout = fetchTimeout
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		client := rpc.NewClient(url, timeout)
		a := newAnalyzer()
		mode := fetchMode.Resolve(cfg.Mode())
		target := fetchPackage
		if fetchModule != "" {
			target += "::" + fetchModule
		}

		var err error
		if fetchModule == "" {
			var results map[string]*models.ParseResult
			results, err = a.FromChainPackage(ctx, client, fetchPackage, mode)
			if err == nil {
				return emitPackage(a, results, fetchOpts)
			}
		} else {
			var result *models.ParseResult
			result, err = a.FromChain(ctx, client, fetchPackage, fetchModule, mode)
			if err == nil {
				return emit(result, fetchOpts)
			}
		}

		var fetchErr *rpc.FetchError
		if fetchFallback && errors.As(err, &fetchErr) {
			logger.Warn("Could not read %s from %s: %v", target, url, err)
			logger.Warn("Falling back: analyze the module source with `govgen generate` instead")
			return nil
		}
		return fmt.Errorf("failed to generate governance for %s: %w", target, err)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchPackage, "package", "", "Package ID (0x...)")
	fetchCmd.Flags().StringVar(&fetchModule, "module", "", "Module name (default every module of the package)")
	fetchCmd.Flags().StringVar(&fetchRPCURL, "rpc-url", "", "Fullnode JSON-RPC URL (default from config)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "Request timeout (default from config)")
	fetchCmd.Flags().BoolVar(&fetchFallback, "fallback", false, "Warn instead of failing when the node cannot be read")
	addModeFlag(fetchCmd.Flags(), &fetchMode)
	fetchCmd.Flags().StringVarP(&fetchOpts.out, "out", "o", "", "Output file, or directory without --module")
	fetchCmd.Flags().BoolVar(&fetchOpts.stdout, "stdout", false, "Print the generated module instead of writing it")
	fetchCmd.Flags().BoolVar(&fetchOpts.json, "json", false, "Print the full analysis result as JSON")
	fetchCmd.MarkFlagRequired("package")
}
