// Package project generates governance modules for every contract in a
// Move package directory, skipping sources that have not changed.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tristendillon/govgen/core/analyzer"
	"github.com/tristendillon/govgen/core/cache/layers"
	"github.com/tristendillon/govgen/core/cache/manager"
	cachemodels "github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/config"
	"github.com/tristendillon/govgen/core/generator"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/scanner"
	"github.com/tristendillon/govgen/core/template_engine"
	"github.com/tristendillon/govgen/core/walker"
)

type Generator struct {
	Root      string
	OutputDir string

	analyzer     *analyzer.Analyzer
	cache        *manager.CacheManager
	walker       *walker.ContractWalker
	mode         classifier.Mode
	settingsHash string
	mu           sync.Mutex
}

// Summary lists what one run did, by source path.
type Summary struct {
	Generated map[string]string
	Skipped   []string
	Failed    map[string]error
}

func newSummary() *Summary {
	return &Summary{
		Generated: make(map[string]string),
		Failed:    make(map[string]error),
	}
}

// NewGenerator prepares generation for the package at root. Output goes to
// cfg.Codegen.Output, resolved against root when relative.
func NewGenerator(root string, cfg *config.Config, mode classifier.Mode) (*Generator, error) {
	gen := generator.NewGovernanceGenerator()
	if cfg.Codegen.ModuleSuffix != "" {
		gen.ModuleSuffix = cfg.Codegen.ModuleSuffix
	}

	outputDir := cfg.Codegen.Output
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	exclude := append([]string{}, cfg.Watch.Exclude...)
	if rel, err := filepath.Rel(root, outputDir); err == nil && !strings.HasPrefix(rel, "..") {
		exclude = append(exclude, rel)
	}

	hash, err := settingsHash(cfg, mode)
	if err != nil {
		return nil, err
	}

	return &Generator{
		Root:         root,
		OutputDir:    outputDir,
		analyzer:     analyzer.New(cfg.Vocabulary(), gen),
		cache:        manager.NewCacheManager(),
		walker:       walker.NewContractWalker(exclude...),
		mode:         mode,
		settingsHash: hash,
	}, nil
}

func (g *Generator) Walker() *walker.ContractWalker {
	return g.walker
}

// Warm hashes every contract under Root up front, so the first run and
// later change events compare against a recorded state.
func (g *Generator) Warm() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	count, err := g.cache.WarmCache(g.Root, g.walker.Exclude)
	if err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}
	logger.Debug("Warmed cache with %d contract(s)", count)
	return nil
}

// GenerateAll regenerates every changed contract under Root. Failures of
// single contracts are collected, not returned.
func (g *Generator) GenerateAll() (*Summary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	files, err := g.walker.Walk(g.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	logger.Debug("Found %d contract(s) under %s", len(files), g.Root)

	summary := newSummary()
	for _, file := range files {
		g.generateInto(summary, file.Path)
	}
	g.cache.LogStats()
	return summary, nil
}

// HandleChanges applies watcher events: changed sources are regenerated,
// deleted ones have their output removed.
func (g *Generator) HandleChanges(events []cachemodels.ChangeEvent) (*Summary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	summary := newSummary()
	for i := range events {
		event := &events[i]
		info, hadOutput := g.cache.GetGenerationInfo(event.FilePath)

		plan, err := g.cache.HandleFileChange(event, g.settingsHash)
		if err != nil {
			summary.Failed[event.FilePath] = err
			continue
		}

		for _, source := range plan.Sources {
			g.generateInto(summary, source)
		}
		for _, removed := range plan.Removed {
			if !hadOutput {
				continue
			}
			if err := os.Remove(info.OutputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				summary.Failed[removed] = fmt.Errorf("failed to remove %s: %w", info.OutputPath, err)
				continue
			}
			logger.Info("Removed %s (source %s deleted)", info.OutputPath, removed)
		}
	}
	return summary, nil
}

func (g *Generator) generateInto(summary *Summary, path string) {
	output, skipped, err := g.GenerateFile(path)
	switch {
	case err != nil:
		summary.Failed[path] = err
	case skipped:
		summary.Skipped = append(summary.Skipped, path)
	default:
		summary.Generated[path] = output
	}
}

// GenerateFile writes the governance module for one source. skipped is true
// when the recorded output is still current.
func (g *Generator) GenerateFile(path string) (output string, skipped bool, err error) {
	needs, reason, err := g.cache.NeedsRegeneration(path, g.settingsHash)
	if err != nil {
		return "", false, err
	}
	if !needs {
		logger.Debug("Skipping unchanged contract: %s", path)
		return "", true, nil
	}
	logger.Debug("Regenerating %s: %s", path, reason)

	contract, err := g.contract(path)
	if err != nil {
		return "", false, err
	}
	if strings.HasSuffix(contract.Module.ModuleName, g.analyzer.Generator().ModuleSuffix) {
		logger.Debug("Skipping generated module %s", contract.Module)
		return "", true, nil
	}

	result, err := g.analyzer.FromContract(contract, g.mode)
	if errors.Is(err, generator.ErrNoGovernableActions) {
		g.dropOutput(path)
	}
	if err != nil {
		return "", false, err
	}

	output = filepath.Join(g.OutputDir, g.analyzer.Generator().GovernanceModuleName(contract.Module.ModuleName)+".move")
	if err := template_engine.WriteFile(output, result.GeneratedContract); err != nil {
		return "", false, err
	}
	if err := g.cache.MarkGenerated(path, output, g.settingsHash); err != nil {
		return "", false, err
	}

	logger.Info("Generated %s for %s (%d actions)", output, contract.Module, len(result.Actions))
	return output, false, nil
}

// dropOutput removes the module generated for path by an earlier run, once
// the source no longer has anything to govern.
func (g *Generator) dropOutput(path string) {
	info, ok := g.cache.GetGenerationInfo(path)
	if !ok {
		return
	}
	if err := os.Remove(info.OutputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove %s: %v", info.OutputPath, err)
		return
	}
	g.cache.ForgetGeneration(path)
	logger.Warn("Removed %s: %s has no governable actions left", info.OutputPath, path)
}

func (g *Generator) contract(path string) (*models.Contract, error) {
	contract, ok, err := g.cache.GetContract(path)
	if err != nil {
		return nil, err
	}
	if ok {
		return contract, nil
	}
	contract, err = scanner.ScanFile(path)
	if err != nil {
		return nil, err
	}
	if err := g.cache.SetContract(path, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// settingsHash covers everything besides the source that shapes output.
func settingsHash(cfg *config.Config, mode classifier.Mode) (string, error) {
	tmpl, err := template_engine.TemplateFS.ReadFile("templates/" + template_engine.TEMPLATES.GOVERNANCE_MOVE.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read governance template: %w", err)
	}
	return layers.HashString(fmt.Sprintf("%s|%+v|%s|%s", mode, cfg.Vocabulary(), cfg.Codegen.ModuleSuffix, tmpl)), nil
}
