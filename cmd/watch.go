/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	cachemodels "github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/project"
	"github.com/tristendillon/govgen/core/watcher"
)

var watchMode modeValue

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Regenerate governance modules whenever a contract changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		gen, err := project.NewGenerator(root, cfg, watchMode.Resolve(cfg.Mode()))
		if err != nil {
			return err
		}

		fw, err := watcher.NewFileWatcher(root, gen.Walker().Exclude, cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer fw.Close()

		fw.OnStart = func() error {
			if err := gen.Warm(); err != nil {
				return err
			}
			summary, err := gen.GenerateAll()
			if err != nil {
				return err
			}
			logger.Info("Watching %s for changes (ctrl+c to stop)", root)
			return report(summary)
		}
		fw.OnChange = func(events []cachemodels.ChangeEvent) error {
			summary, err := gen.HandleChanges(events)
			if err != nil {
				return err
			}
			return report(summary)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := fw.Watch(ctx); err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addModeFlag(watchCmd.Flags(), &watchMode)
}
