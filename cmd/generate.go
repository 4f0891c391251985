/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tristendillon/govgen/core/generator"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/project"
)

var (
	generateMode modeValue
	generateOpts outputOptions
)

var generateCmd = &cobra.Command{
	Use:   "generate <file|dir>",
	Short: "Generate a governance module for a contract or a Move package",
	Long: `Generates a governance module for one .move file, or one per module for
every .move file under a directory. Directories are generated incrementally:
unchanged sources are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", target, err)
		}
		mode := generateMode.Resolve(cfg.Mode())

		if !info.IsDir() {
			src, err := readSource(target)
			if err != nil {
				return err
			}
			result, err := newAnalyzer().FromSource(src, mode)
			if err != nil {
				return fmt.Errorf("failed to generate governance for %s: %w", target, err)
			}
			return emit(result, generateOpts)
		}

		if generateOpts.stdout || generateOpts.json {
			return errors.New("--stdout and --json need a single file")
		}
		if generateOpts.out != "" {
			cfg.Codegen.Output = generateOpts.out
		}
		gen, err := project.NewGenerator(target, cfg, mode)
		if err != nil {
			return err
		}
		summary, err := gen.GenerateAll()
		if err != nil {
			return err
		}
		return report(summary)
	},
}

// report logs a run and fails it if any contract failed for a reason other
// than having nothing to govern.
func report(summary *project.Summary) error {
	logger.Info("%d generated, %d unchanged", len(summary.Generated), len(summary.Skipped))

	paths := make([]string, 0, len(summary.Failed))
	for path := range summary.Failed {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	failed := 0
	for _, path := range paths {
		err := summary.Failed[path]
		if errors.Is(err, generator.ErrNoGovernableActions) {
			logger.Warn("%s: %v", path, err)
			continue
		}
		logger.Error("%s: %v", path, err)
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d contract(s) failed", failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addModeFlag(generateCmd.Flags(), &generateMode)
	generateCmd.Flags().StringVarP(&generateOpts.out, "out", "o", "", "Output file (single file) or directory (package)")
	generateCmd.Flags().BoolVar(&generateOpts.stdout, "stdout", false, "Print the generated module instead of writing it")
	generateCmd.Flags().BoolVar(&generateOpts.json, "json", false, "Print the full analysis result as JSON")
}
