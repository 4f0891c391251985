// Package analyzer runs the full pipeline: scan, classify, catalog, generate.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/tristendillon/govgen/core/catalog"
	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/generator"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/rpc"
	"github.com/tristendillon/govgen/core/scanner"
)

// ModeManual labels results built from a hand-picked function list.
const ModeManual = "manual"

var ErrUnknownFunction = errors.New("function not found")

// ModuleFetcher is the one network call the chain path needs.
type ModuleFetcher interface {
	GetNormalizedModule(ctx context.Context, pkg, module string) (*rpc.NormalizedModule, error)
}

// PackageFetcher reads every module of a published package at once.
type PackageFetcher interface {
	GetNormalizedModules(ctx context.Context, pkg string) (map[string]*rpc.NormalizedModule, error)
}

// Analyzer holds configuration only; every call builds its own state, so
// one Analyzer can serve concurrent callers.
type Analyzer struct {
	vocab     classifier.Vocabulary
	generator *generator.GovernanceGenerator
}

func New(vocab classifier.Vocabulary, gen *generator.GovernanceGenerator) *Analyzer {
	if gen == nil {
		gen = generator.NewGovernanceGenerator()
	}
	return &Analyzer{vocab: vocab, generator: gen}
}

func (a *Analyzer) Generator() *generator.GovernanceGenerator {
	return a.generator
}

// FromSource scans src and generates a governance module for the functions
// mode considers governable.
func (a *Analyzer) FromSource(src string, mode classifier.Mode) (*models.ParseResult, error) {
	contract, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	return a.FromContract(contract, mode)
}

// FromContract runs the pipeline on already-extracted facts.
func (a *Analyzer) FromContract(contract *models.Contract, mode classifier.Mode) (*models.ParseResult, error) {
	policy, err := classifier.NewPolicy(mode, a.vocab)
	if err != nil {
		return nil, err
	}

	classified := classifier.Classify(policy, contract.Functions)
	var candidates []models.FunctionInfo
	for _, fn := range classified {
		if fn.GovernanceCandidate {
			candidates = append(candidates, fn)
		}
	}
	logger.Debug("%s: %d of %d functions governable in %s mode",
		contract.Module, len(candidates), len(classified), mode)

	return a.build(contract, candidates, string(mode))
}

// FromNormalizedModule runs the pipeline on a module descriptor fetched from
// a node. pkg names the package in the generated module header; the
// descriptor's address is used when it is empty.
func (a *Analyzer) FromNormalizedModule(mod *rpc.NormalizedModule, pkg string, mode classifier.Mode) (*models.ParseResult, error) {
	contract, err := ContractFromNormalized(mod, pkg)
	if err != nil {
		return nil, err
	}
	return a.FromContract(contract, mode)
}

// FromChain fetches pkg::module and runs FromNormalizedModule on it. Fetch
// failures come back as *rpc.FetchError.
func (a *Analyzer) FromChain(ctx context.Context, fetcher ModuleFetcher, pkg, module string, mode classifier.Mode) (*models.ParseResult, error) {
	mod, err := fetcher.GetNormalizedModule(ctx, pkg, module)
	if err != nil {
		return nil, err
	}
	return a.FromNormalizedModule(mod, pkg, mode)
}

// FromChainPackage fetches every module of pkg and generates governance for
// each one that has governable actions, keyed by module name. Modules with
// nothing to govern are left out; ErrNoGovernableActions means none had any.
func (a *Analyzer) FromChainPackage(ctx context.Context, fetcher PackageFetcher, pkg string, mode classifier.Mode) (map[string]*models.ParseResult, error) {
	mods, err := fetcher.GetNormalizedModules(ctx, pkg)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*models.ParseResult)
	for _, name := range slices.Sorted(maps.Keys(mods)) {
		result, err := a.FromNormalizedModule(mods[name], pkg, mode)
		switch {
		case errors.Is(err, generator.ErrNoGovernableActions):
			logger.Debug("Skipping %s::%s: nothing to govern", pkg, name)
			continue
		case err != nil:
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
		results[name] = result
	}
	if len(results) == 0 {
		return nil, generator.ErrNoGovernableActions
	}
	return results, nil
}

// DiscoverEntryPoints lists every public or entry function without the
// governability filter. GovernanceCandidate carries the strict verdict as
// a hint for manual selection.
func (a *Analyzer) DiscoverEntryPoints(src string) (*models.ParseResult, error) {
	contract, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	policy, err := classifier.NewPolicy(classifier.ModeStrict, a.vocab)
	if err != nil {
		return nil, err
	}
	return &models.ParseResult{
		Module:      contract.Module,
		EntryPoints: classifier.Classify(policy, contract.EntryPoints()),
		Structs:     contract.Structs,
		Constants:   contract.Constants,
		Events:      contract.Events,
		Imports:     contract.Imports,
	}, nil
}

// FromSelection generates for the named functions only, in declaration
// order, skipping classification.
func (a *Analyzer) FromSelection(src string, names []string) (*models.ParseResult, error) {
	contract, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, ok := contract.Function(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		}
	}

	var selected []models.FunctionInfo
	for _, fn := range contract.Functions {
		if slices.Contains(names, fn.Name) {
			fn.GovernanceCandidate = true
			selected = append(selected, fn)
		}
	}
	return a.build(contract, selected, ModeManual)
}

func (a *Analyzer) build(contract *models.Contract, functions []models.FunctionInfo, mode string) (*models.ParseResult, error) {
	var mainStruct string
	if s, ok := contract.MainStruct(); ok {
		mainStruct = s.Name
	}

	qualifier := catalog.NewQualifier(contract)
	cat, err := catalog.NewBuilder(a.vocab, qualifier, mainStruct).Build(functions)
	if err != nil {
		return nil, fmt.Errorf("failed to build action catalog for %s: %w", contract.Module, err)
	}

	code, err := a.generator.Generate(contract.Module, cat, qualifier)
	if err != nil {
		return nil, fmt.Errorf("failed to generate governance for %s: %w", contract.Module, err)
	}

	return &models.ParseResult{
		Module:            contract.Module,
		Mode:              mode,
		Actions:           cat.Actions,
		Structs:           contract.Structs,
		Constants:         contract.Constants,
		Events:            contract.Events,
		Imports:           contract.Imports,
		GeneratedContract: code,
	}, nil
}
