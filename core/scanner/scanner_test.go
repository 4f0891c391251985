package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/govgen/core/models"
)

const counterSource = `module counter_pkg::counter {
    use sui::object::{Self, UID};
    use sui::table::{Self, Table};
    use sui::coin as c;
    use sui::transfer;

    /// Shared counter state.
    public struct Counter has key {
        id: UID,
        value: u64,
        history: Table<u64, vector<u8>>,
    }

    public struct Holder<phantom T> has store {
        amount: u64,
    }

    public struct ValueChanged has copy, drop {
        value: u64,
    }

    public struct ResetEvent has copy, drop {
        at: u64,
    }

    const EInvalidValue: u64 = 0;
    const NAME: vector<u8> = b"counter";

    fun init(ctx: &mut TxContext) {
        transfer::share_object(Counter { id: object::new(ctx), value: 0, history: table::new(ctx) });
    }

    /// Overwrite the counter value.
    /// Aborts on values above the limit.
    #[allow(unused)]
    public entry fun set_value(counter: &mut Counter, v: u64, ctx: &mut TxContext) {
        assert!(v < 100, EInvalidValue);
        counter.value = v;
        event::emit(ValueChanged { value: v });
    }

    // plain comment, not a doc comment
    public(package) fun record(counter: &mut Counter, key: u64, data: Table<u64, vector<u8>>) {
        table::add(&mut counter.history, key, data);
    }

    public fun borrow_value<T: store>(holder: &Holder<T>): (u64, bool) {
        (holder.amount, true)
    }

    public fun get_value(counter: &Counter): u64 {
        counter.value
    }

    native fun native_hash(data: vector<u8>): vector<u8>;
}
`

func TestScan_Module(t *testing.T) {
	contract, err := Scan(counterSource)
	require.NoError(t, err)
	assert.Equal(t, models.ModuleInfo{PackageName: "counter_pkg", ModuleName: "counter"}, contract.Module)
}

func TestScan_ModuleHeaderForms(t *testing.T) {
	cases := map[string]models.ModuleInfo{
		"module a::b {\n}":                     {PackageName: "a", ModuleName: "b"},
		"module a::b;\n\nfun f() {}":           {PackageName: "a", ModuleName: "b"},
		"  module 0x2a :: vault {":             {PackageName: "0x2a", ModuleName: "vault"},
		"// module fake::one {\nmodule r::s {": {PackageName: "r", ModuleName: "s"},
	}
	for src, want := range cases {
		contract, err := Scan(src)
		require.NoError(t, err, src)
		assert.Equal(t, want, contract.Module, src)
	}
}

func TestScan_FunctionAttributes(t *testing.T) {
	src := `module a::b {
    #[test_only]
    public fun set_for_testing(s: &mut State, v: u64) { s.v = v; }

    /// Documented.
    #[test, expected_failure(abort_code = 1)]
    #[allow(unused_variable)]
    public fun test_set(s: &mut State) { s.v = 1; }

    #[test_only] public fun inline_helper(s: &mut State) { s.v = 2; }

    public fun plain(s: &mut State) { s.v = 3; }
}`
	contract, err := Scan(src)
	require.NoError(t, err)

	attrs := make(map[string][]string)
	for _, fn := range contract.Functions {
		attrs[fn.Name] = fn.Attributes
	}
	assert.Equal(t, []string{"test_only"}, attrs["set_for_testing"])
	assert.Equal(t, []string{"test", "expected_failure(abort_code = 1)", "allow(unused_variable)"}, attrs["test_set"])
	assert.Equal(t, []string{"test_only"}, attrs["inline_helper"])
	assert.Empty(t, attrs["plain"])

	testSet, _ := contract.Function("test_set")
	assert.True(t, testSet.HasAttribute("test"))
	assert.True(t, testSet.HasAttribute("expected_failure"))
	assert.False(t, testSet.HasAttribute("test_only"))
	assert.Equal(t, "Documented.", testSet.Description)
}

func TestScan_MissingModule(t *testing.T) {
	_, err := Scan("public fun f() {}")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	_, err = Scan("/* module a::b { */")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestScan_Functions(t *testing.T) {
	contract, err := Scan(counterSource)
	require.NoError(t, err)

	var names []string
	for _, fn := range contract.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"init", "set_value", "record", "borrow_value", "get_value"}, names)

	setValue, ok := contract.Function("set_value")
	require.True(t, ok)
	assert.Equal(t, models.VisibilityPublic, setValue.Visibility)
	assert.True(t, setValue.IsEntry)
	assert.Equal(t, []models.ParameterInfo{
		{Name: "counter", Type: "&mut Counter"},
		{Name: "v", Type: "u64"},
		{Name: "ctx", Type: "&mut TxContext"},
	}, setValue.Parameters)
	assert.Equal(t, "Overwrite the counter value. Aborts on values above the limit.", setValue.Description)
	assert.Equal(t, []string{"counter"}, setValue.Modifies)
	assert.Contains(t, setValue.Body, "counter.value = v;")
	assert.Equal(t, []string{"allow(unused)"}, setValue.Attributes)

	initFn, _ := contract.Function("init")
	assert.Equal(t, models.VisibilityPrivate, initFn.Visibility)
	assert.False(t, initFn.IsEntry)
	assert.Empty(t, initFn.Description)

	record, _ := contract.Function("record")
	assert.Equal(t, models.VisibilityPackage, record.Visibility)
	assert.Empty(t, record.Description)
	assert.Equal(t, "Table<u64, vector<u8>>", record.Parameters[2].Type)
	assert.Equal(t, []string{"counter"}, record.Modifies)

	borrow, _ := contract.Function("borrow_value")
	assert.Equal(t, "<T: store>", borrow.TypeParams)
	assert.Equal(t, "(u64, bool)", borrow.ReturnType)
	assert.Equal(t, "&Holder<T>", borrow.Parameters[0].Type)

	getValue, _ := contract.Function("get_value")
	assert.Equal(t, "u64", getValue.ReturnType)
	assert.Empty(t, getValue.Modifies)
}

func TestScan_Structs(t *testing.T) {
	contract, err := Scan(counterSource)
	require.NoError(t, err)
	require.Len(t, contract.Structs, 4)

	counter := contract.Structs[0]
	assert.Equal(t, "Counter", counter.Name)
	assert.Equal(t, []string{"key"}, counter.Abilities)
	assert.Equal(t, []models.FieldInfo{
		{Name: "id", Type: "UID"},
		{Name: "value", Type: "u64"},
		{Name: "history", Type: "Table<u64, vector<u8>>"},
	}, counter.Fields)

	holder := contract.Structs[1]
	assert.Equal(t, "Holder", holder.Name)
	assert.Equal(t, "<phantom T>", holder.TypeParams)
	assert.Equal(t, []string{"store"}, holder.Abilities)

	assert.Equal(t, []string{"copy", "drop"}, contract.Structs[2].Abilities)
}

func TestScan_ConstantsAndImports(t *testing.T) {
	contract, err := Scan(counterSource)
	require.NoError(t, err)

	assert.Equal(t, []models.ConstantDef{
		{Name: "EInvalidValue", Type: "u64", Value: "0"},
		{Name: "NAME", Type: "vector<u8>", Value: `b"counter"`},
	}, contract.Constants)

	assert.Equal(t, []models.ImportedModule{
		{Path: "sui::object", Members: []string{"Self", "UID"}},
		{Path: "sui::table", Members: []string{"Self", "Table"}},
		{Path: "sui::coin", Alias: "c"},
		{Path: "sui::transfer"},
	}, contract.Imports)
}

func TestScan_Events(t *testing.T) {
	contract, err := Scan(counterSource)
	require.NoError(t, err)

	var names []string
	for _, e := range contract.Events {
		names = append(names, e.Name)
	}
	// emitted structs and copy+drop *Event structs, in declaration order
	assert.Equal(t, []string{"ValueChanged", "ResetEvent"}, names)
}

func TestScanModifies(t *testing.T) {
	body := `
        let x = 1;
        pool.config.fee = 3;
        if (a.b == c) { };
        let r = &mut registry;
        vault.total = vault.total + x;
    `
	assert.Equal(t, []string{"pool", "registry", "vault"}, ScanModifies(body))
	assert.Empty(t, ScanModifies("a.b == c && x >= y"))
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.move")
	require.NoError(t, os.WriteFile(path, []byte(counterSource), 0644))

	contract, err := ScanFile(path)
	require.NoError(t, err)
	assert.Equal(t, "counter", contract.Module.ModuleName)

	_, err = ScanFile(filepath.Join(dir, "missing.move"))
	assert.Error(t, err)
}

func TestScan_Idempotent(t *testing.T) {
	first, err := Scan(counterSource)
	require.NoError(t, err)
	second, err := Scan(counterSource)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
