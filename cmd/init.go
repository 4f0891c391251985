/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/govgen/core/config"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/template_engine"
)

var force bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a govgen.yaml with the default settings",
	Long:  `Creates govgen.yaml in the given directory (default: current) with every setting spelled out.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		path := filepath.Join(dir, config.FileName)

		if _, err := os.Stat(path); err == nil && !force {
			fmt.Printf("%s already exists. Use --force to overwrite.\n", path)
			return nil
		}

		engine := template_engine.NewTemplateEngine()
		if err := engine.GenerateFile(template_engine.TEMPLATES.CONFIG_YAML, path, config.Default()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("Wrote %s", path)

		fmt.Printf("Next Steps:\n")
		fmt.Printf("  - edit %s to tune the classifier\n", path)
		fmt.Printf("  - govgen generate sources/\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
}
