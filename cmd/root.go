/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/govgen/core/config"
	"github.com/tristendillon/govgen/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "govgen",
	Short: "Generate Sui Move governance modules from existing contracts.",
	Long: `govgen scans a Move module, picks the functions that change state and
generates a companion module that gates them behind proposals and votes.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	logfile    string
	verbose    bool
	noColor    bool
	configPath string

	cfg       *config.Config
	logCloser io.Closer
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verbose)
	if noColor {
		logger.SetColor(false)
	}
	if logfile != "" {
		closer, err := logger.SetLogFile(logfile)
		if err != nil {
			return err
		}
		logCloser = closer
	}
	logger.Debug("%s called", cmd.CommandPath())

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output (also NO_COLOR)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./govgen.yaml)")
}
