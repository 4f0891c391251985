package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/tristendillon/govgen/core/analyzer"
	"github.com/tristendillon/govgen/core/generator"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/template_engine"
)

type outputOptions struct {
	out    string
	stdout bool
	json   bool
}

// emit writes a generation result where opts says: JSON to stdout, the
// generated module to stdout, or the module to a file.
func emit(result *models.ParseResult, opts outputOptions) error {
	switch {
	case opts.json:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case opts.stdout:
		_, err := fmt.Fprint(os.Stdout, result.GeneratedContract)
		return err
	}

	out := opts.out
	if out == "" {
		out = filepath.Join(cfg.Codegen.Output, cfg.Codegen.Filename)
	}
	if err := template_engine.WriteFile(out, result.GeneratedContract); err != nil {
		return err
	}
	logger.Info("Generated %s for %s (%d actions)", out, result.Module, len(result.Actions))
	for i, action := range result.Actions {
		logger.Info("  %d: %s", i, action.Name)
	}
	return nil
}

// emitPackage is emit for a whole package: one file per module under the
// output directory, or every module to stdout in name order.
func emitPackage(a *analyzer.Analyzer, results map[string]*models.ParseResult, opts outputOptions) error {
	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	dir := opts.out
	if dir == "" {
		dir = cfg.Codegen.Output
	}
	for _, name := range slices.Sorted(maps.Keys(results)) {
		result := results[name]
		if opts.stdout {
			if _, err := fmt.Fprintln(os.Stdout, result.GeneratedContract); err != nil {
				return err
			}
			continue
		}
		out := filepath.Join(dir, a.Generator().GovernanceModuleName(name)+".move")
		if err := template_engine.WriteFile(out, result.GeneratedContract); err != nil {
			return err
		}
		logger.Info("Generated %s for %s (%d actions)", out, result.Module, len(result.Actions))
	}
	return nil
}

func readSource(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read contract %s: %w", path, err)
	}
	return string(src), nil
}

func newAnalyzer() *analyzer.Analyzer {
	gen := generator.NewGovernanceGenerator()
	if cfg.Codegen.ModuleSuffix != "" {
		gen.ModuleSuffix = cfg.Codegen.ModuleSuffix
	}
	return analyzer.New(cfg.Vocabulary(), gen)
}
