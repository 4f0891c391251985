package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/generator"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/rpc"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func loadNormalized(t *testing.T) *rpc.NormalizedModule {
	t.Helper()
	var mod rpc.NormalizedModule
	require.NoError(t, json.Unmarshal([]byte(readFixture(t, "vault_normalized.json")), &mod))
	return &mod
}

func newAnalyzer() *Analyzer {
	return New(classifier.DefaultVocabulary(), nil)
}

func actionNames(result *models.ParseResult) []string {
	var names []string
	for _, a := range result.Actions {
		names = append(names, a.Name)
	}
	return names
}

func TestFromSource_Counter(t *testing.T) {
	result, err := newAnalyzer().FromSource(readFixture(t, "counter.move"), classifier.ModeStrict)
	require.NoError(t, err)

	assert.Equal(t, models.ModuleInfo{PackageName: "counter_pkg", ModuleName: "counter"}, result.Module)
	assert.Equal(t, "strict", result.Mode)
	assert.Equal(t, []string{"increment", "set_value"}, actionNames(result))
	assert.Len(t, result.Structs, 2)
	assert.Len(t, result.Constants, 1)
	assert.Len(t, result.Imports, 3)

	// increment: no payload
	assert.Empty(t, result.Actions[0].Parameters)
	assert.Equal(t, "Add one to the counter.", result.Actions[0].Description)

	// set_value: one u64 payload field
	assert.Equal(t, []models.ParameterInfo{{Name: "v", Type: "u64"}}, result.Actions[1].Parameters)
	assert.Contains(t, result.GeneratedContract, "        SetValue { v: u64 },\n")
	assert.Contains(t, result.GeneratedContract, "module counter_pkg::counter_governance {")
	assert.Contains(t, result.GeneratedContract, "counter::increment(counter, ctx);")
	assert.Contains(t, result.GeneratedContract, "counter::set_value(counter, v_1, ctx);")
	assert.NotContains(t, result.GeneratedContract, "get_value(")
}

func TestFromSource_NoGovernableActions(t *testing.T) {
	for _, mode := range []classifier.Mode{classifier.ModeStrict, classifier.ModeBroad} {
		result, err := newAnalyzer().FromSource(readFixture(t, "readonly.move"), mode)
		assert.ErrorIs(t, err, generator.ErrNoGovernableActions, mode)
		assert.Nil(t, result)
	}
}

func TestFromSource_StrictAndBroadDiffer(t *testing.T) {
	src := readFixture(t, "vault.move")

	strict, err := newAnalyzer().FromSource(src, classifier.ModeStrict)
	require.NoError(t, err)
	// deposit consumes its coin, which a dispatch cannot supply
	assert.Equal(t, []string{"pause"}, actionNames(strict))
	assert.NotContains(t, strict.GeneratedContract, "admin_cap")

	broad, err := newAnalyzer().FromSource(src, classifier.ModeBroad)
	require.NoError(t, err)
	assert.Equal(t, "broad", broad.Mode)
	assert.Equal(t, []string{"set_fee", "withdraw_fees", "pause"}, actionNames(broad))
}

func TestFromSource_SharedCapability(t *testing.T) {
	result, err := newAnalyzer().FromSource(readFixture(t, "vault.move"), classifier.ModeBroad)
	require.NoError(t, err)
	out := result.GeneratedContract

	execute := out[strings.Index(out, "public entry fun execute_proposal("):]
	signature := execute[:strings.Index(execute, ") {")]
	assert.Equal(t, 1, strings.Count(signature, "admin_cap: &vault::AdminCap,"))
	assert.NotContains(t, signature, "coin:")

	assert.Contains(t, out, "vault::set_fee(admin_cap, vault, fee_bps_0);")
	assert.Contains(t, out, "vault::withdraw_fees(admin_cap, vault, amount_1, ctx);")
	assert.NotContains(t, out, "vault::deposit(")
}

func TestFromSource_SkipsTestOnly(t *testing.T) {
	src := `module counter_pkg::counter {
    public struct Counter has key { id: UID, value: u64 }

    public entry fun set_value(counter: &mut Counter, v: u64) {
        counter.value = v;
    }

    #[test_only]
    public fun set_value_for_testing(counter: &mut Counter, v: u64) {
        counter.value = v;
    }
}`
	result, err := newAnalyzer().FromSource(src, classifier.ModeBroad)
	require.NoError(t, err)
	assert.Equal(t, []string{"set_value"}, actionNames(result))
	assert.NotContains(t, result.GeneratedContract, "set_value_for_testing")
}

func TestFromSource_Events(t *testing.T) {
	result, err := newAnalyzer().FromSource(readFixture(t, "vault.move"), classifier.ModeStrict)
	require.NoError(t, err)

	var names []string
	for _, e := range result.Events {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"FeeChangedEvent", "Deposited"}, names)
}

func TestFromSource_MissingModule(t *testing.T) {
	_, err := newAnalyzer().FromSource("public fun set_x() {}", classifier.ModeStrict)
	assert.Error(t, err)
}

func TestFromSource_CustomSuffix(t *testing.T) {
	gen := generator.NewGovernanceGenerator()
	gen.ModuleSuffix = "_dao"
	a := New(classifier.DefaultVocabulary(), gen)

	result, err := a.FromSource(readFixture(t, "counter.move"), classifier.ModeStrict)
	require.NoError(t, err)
	assert.Contains(t, result.GeneratedContract, "module counter_pkg::counter_dao {")
	assert.Same(t, gen, a.Generator())
}

func TestDiscoverEntryPoints(t *testing.T) {
	result, err := newAnalyzer().DiscoverEntryPoints(readFixture(t, "counter.move"))
	require.NoError(t, err)

	var names []string
	hints := make(map[string]bool)
	for _, fn := range result.EntryPoints {
		names = append(names, fn.Name)
		hints[fn.Name] = fn.GovernanceCandidate
	}
	assert.Equal(t, []string{"increment", "set_value", "get_value"}, names)
	assert.True(t, hints["increment"])
	assert.True(t, hints["set_value"])
	assert.False(t, hints["get_value"])
	assert.Empty(t, result.Actions)
	assert.Empty(t, result.GeneratedContract)
}

func TestFromSelection(t *testing.T) {
	src := readFixture(t, "counter.move")

	result, err := newAnalyzer().FromSelection(src, []string{"set_value", "increment"})
	require.NoError(t, err)
	assert.Equal(t, ModeManual, result.Mode)
	// declaration order, not selection order
	assert.Equal(t, []string{"increment", "set_value"}, actionNames(result))

	_, err = newAnalyzer().FromSelection(src, []string{"increment", "nope"})
	assert.ErrorIs(t, err, ErrUnknownFunction)

	// init is private, so nothing callable is left
	_, err = newAnalyzer().FromSelection(src, []string{"init"})
	assert.ErrorIs(t, err, generator.ErrNoGovernableActions)
}

func TestFromNormalizedModule(t *testing.T) {
	mod := loadNormalized(t)

	strict, err := newAnalyzer().FromNormalizedModule(mod, "vault_pkg", classifier.ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, models.ModuleInfo{PackageName: "vault_pkg", ModuleName: "vault"}, strict.Module)
	assert.Equal(t, []string{"pause"}, actionNames(strict))
	assert.Contains(t, strict.GeneratedContract, "        vault: &mut vault::Vault,\n")
	assert.Contains(t, strict.GeneratedContract, "vault::pause(vault, ctx);")

	broad, err := newAnalyzer().FromNormalizedModule(mod, "vault_pkg", classifier.ModeBroad)
	require.NoError(t, err)
	assert.Equal(t, []string{"pause", "set_fee"}, actionNames(broad))
	assert.Contains(t, broad.GeneratedContract, "vault::set_fee(admin_cap, vault, amount_1);")
}

func TestFromNormalizedModule_Empty(t *testing.T) {
	_, err := newAnalyzer().FromNormalizedModule(&rpc.NormalizedModule{}, "p", classifier.ModeStrict)
	assert.ErrorIs(t, err, ErrEmptyDescriptor)

	_, err = newAnalyzer().FromNormalizedModule(nil, "p", classifier.ModeStrict)
	assert.ErrorIs(t, err, ErrEmptyDescriptor)
}

type fakeFetcher struct {
	mod         *rpc.NormalizedModule
	err         error
	pkg, module string
}

func (f *fakeFetcher) GetNormalizedModule(_ context.Context, pkg, module string) (*rpc.NormalizedModule, error) {
	f.pkg, f.module = pkg, module
	return f.mod, f.err
}

func TestFromChain(t *testing.T) {
	fetcher := &fakeFetcher{mod: loadNormalized(t)}
	result, err := newAnalyzer().FromChain(context.Background(), fetcher, "0x5c1a2b3c", "vault", classifier.ModeStrict)
	require.NoError(t, err)

	assert.Equal(t, "0x5c1a2b3c", fetcher.pkg)
	assert.Equal(t, "vault", fetcher.module)
	assert.Equal(t, "0x5c1a2b3c", result.Module.PackageName)
	assert.Contains(t, result.GeneratedContract, "module 0x5c1a2b3c::vault_governance {")
}

func TestFromChain_FetchError(t *testing.T) {
	fetchErr := &rpc.FetchError{Method: "sui_getNormalizedMoveModule", Err: errors.New("connection refused")}
	_, err := newAnalyzer().FromChain(context.Background(), &fakeFetcher{err: fetchErr}, "0x1", "m", classifier.ModeStrict)

	var target *rpc.FetchError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "sui_getNormalizedMoveModule", target.Method)
}

type fakePackageFetcher struct {
	mods map[string]*rpc.NormalizedModule
	err  error
}

func (f *fakePackageFetcher) GetNormalizedModules(_ context.Context, _ string) (map[string]*rpc.NormalizedModule, error) {
	return f.mods, f.err
}

func TestFromChainPackage(t *testing.T) {
	vault := loadNormalized(t)
	fees := loadNormalized(t)
	fees.Name = "fees"
	fees.ExposedFunctions = map[string]rpc.NormalizedFunction{"fee": vault.ExposedFunctions["fee"]}

	fetcher := &fakePackageFetcher{mods: map[string]*rpc.NormalizedModule{"vault": vault, "fees": fees}}
	results, err := newAnalyzer().FromChainPackage(context.Background(), fetcher, "0x5c1a2b3c", classifier.ModeStrict)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Contains(t, results, "vault")
	assert.Equal(t, []string{"pause"}, actionNames(results["vault"]))
	assert.Contains(t, results["vault"].GeneratedContract, "module 0x5c1a2b3c::vault_governance {")

	fetcher.mods = map[string]*rpc.NormalizedModule{"fees": fees}
	_, err = newAnalyzer().FromChainPackage(context.Background(), fetcher, "0x5c1a2b3c", classifier.ModeStrict)
	assert.ErrorIs(t, err, generator.ErrNoGovernableActions)

	fetcher.mods = map[string]*rpc.NormalizedModule{"broken": {}}
	_, err = newAnalyzer().FromChainPackage(context.Background(), fetcher, "0x5c1a2b3c", classifier.ModeStrict)
	assert.ErrorIs(t, err, ErrEmptyDescriptor)

	fetchErr := &rpc.FetchError{Method: "sui_getNormalizedMoveModulesByPackage", Err: errors.New("timeout")}
	_, err = newAnalyzer().FromChainPackage(context.Background(), &fakePackageFetcher{err: fetchErr}, "0x1", classifier.ModeStrict)
	var target *rpc.FetchError
	assert.ErrorAs(t, err, &target)
}
