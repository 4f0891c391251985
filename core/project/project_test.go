package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cachemodels "github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/config"
	"github.com/tristendillon/govgen/core/generator"
)

const counterSource = `module counter_pkg::counter {
    public struct Counter has key {
        id: UID,
        value: u64,
    }

    public entry fun set_value(counter: &mut Counter, v: u64) {
        counter.value = v;
    }

    public fun value(counter: &Counter): u64 {
        counter.value
    }
}
`

const readonlySource = `module counter_pkg::limits {
    public struct Limits has key {
        id: UID,
        max: u64,
    }

    public fun get_max(limits: &Limits): u64 {
        limits.max
    }
}
`

const staleGovernance = `module counter_pkg::old_governance {
    public entry fun update_value(counter: &mut Counter) {
        counter.value = 0;
    }
}
`

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newProject(t *testing.T) (string, *Generator) {
	t.Helper()
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "sources", "counter.move"), counterSource)
	writeSource(t, filepath.Join(root, "sources", "limits.move"), readonlySource)
	writeSource(t, filepath.Join(root, "sources", "old_governance.move"), staleGovernance)

	gen, err := NewGenerator(root, config.Default(), classifier.ModeStrict)
	require.NoError(t, err)
	return root, gen
}

func TestGenerateAll(t *testing.T) {
	root, gen := newProject(t)
	counter := filepath.Join(root, "sources", "counter.move")
	limits := filepath.Join(root, "sources", "limits.move")
	output := filepath.Join(root, "governance", "counter_governance.move")

	summary, err := gen.GenerateAll()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{counter: output}, summary.Generated)
	assert.ErrorIs(t, summary.Failed[limits], generator.ErrNoGovernableActions)
	assert.Equal(t, []string{filepath.Join(root, "sources", "old_governance.move")}, summary.Skipped)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "module counter_pkg::counter_governance {")
	assert.Contains(t, string(data), "counter::set_value(counter, v_0);")

	again, err := gen.GenerateAll()
	require.NoError(t, err)
	assert.Empty(t, again.Generated)
	assert.Contains(t, again.Skipped, counter)
	// output directory is never scanned as input
	for path := range again.Failed {
		assert.NotContains(t, path, filepath.Join(root, "governance"))
	}
}

func TestHandleChanges(t *testing.T) {
	root, gen := newProject(t)
	counter := filepath.Join(root, "sources", "counter.move")
	output := filepath.Join(root, "governance", "counter_governance.move")

	_, err := gen.GenerateAll()
	require.NoError(t, err)

	writeSource(t, counter, counterSource+"\n")
	summary, err := gen.HandleChanges([]cachemodels.ChangeEvent{{FilePath: counter, EventType: cachemodels.EventWrite}})
	require.NoError(t, err)
	assert.Equal(t, output, summary.Generated[counter])

	require.NoError(t, os.Remove(counter))
	summary, err = gen.HandleChanges([]cachemodels.ChangeEvent{{FilePath: counter, EventType: cachemodels.EventDelete}})
	require.NoError(t, err)
	assert.Empty(t, summary.Failed)
	assert.NoFileExists(t, output)
}

func TestHandleChanges_EditAfterGeneration(t *testing.T) {
	root, gen := newProject(t)
	counter := filepath.Join(root, "sources", "counter.move")
	output := filepath.Join(root, "governance", "counter_governance.move")

	_, err := gen.GenerateAll()
	require.NoError(t, err)

	edited := strings.Replace(counterSource, "    public fun value(", `    public entry fun reset_value(counter: &mut Counter) {
        counter.value = 0;
    }

    public fun value(`, 1)
	writeSource(t, counter, edited)
	summary, err := gen.HandleChanges([]cachemodels.ChangeEvent{{FilePath: counter, EventType: cachemodels.EventWrite}})
	require.NoError(t, err)
	assert.Equal(t, output, summary.Generated[counter])
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "counter::reset_value(counter);")

	writeSource(t, counter, strings.Replace(edited, "reset_value", "update_limit", 1))
	summary, err = gen.GenerateAll()
	require.NoError(t, err)
	assert.Equal(t, output, summary.Generated[counter])
	data, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "counter::update_limit(counter);")
	assert.NotContains(t, string(data), "reset_value")
}

func TestHandleChanges_NothingLeftToGovern(t *testing.T) {
	root, gen := newProject(t)
	counter := filepath.Join(root, "sources", "counter.move")
	output := filepath.Join(root, "governance", "counter_governance.move")

	_, err := gen.GenerateAll()
	require.NoError(t, err)
	require.FileExists(t, output)

	getters := `module counter_pkg::counter {
    public struct Counter has key {
        id: UID,
        value: u64,
    }

    public fun value(counter: &Counter): u64 {
        counter.value
    }
}
`
	writeSource(t, counter, getters)
	summary, err := gen.HandleChanges([]cachemodels.ChangeEvent{{FilePath: counter, EventType: cachemodels.EventWrite}})
	require.NoError(t, err)
	assert.ErrorIs(t, summary.Failed[counter], generator.ErrNoGovernableActions)
	assert.NoFileExists(t, output)

	// the source still has nothing to govern, and nothing is left to remove
	again, err := gen.GenerateAll()
	require.NoError(t, err)
	assert.ErrorIs(t, again.Failed[counter], generator.ErrNoGovernableActions)
	assert.NoFileExists(t, output)
}

func TestWarm(t *testing.T) {
	root, gen := newProject(t)
	writeSource(t, filepath.Join(root, "governance", "stale_governance.move"), staleGovernance)

	require.NoError(t, gen.Warm())
	stats := gen.cache.GetStats()["content"]
	// the output directory is excluded
	assert.Equal(t, 3, stats.TotalFiles)

	summary, err := gen.GenerateAll()
	require.NoError(t, err)
	assert.Len(t, summary.Generated, 1)
}

func TestNewGenerator_ExcludesOutputDir(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Codegen.Output = "out/gov"

	gen, err := NewGenerator(root, cfg, classifier.ModeBroad)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "out", "gov"), gen.OutputDir)
	assert.True(t, gen.Walker().Excluded(filepath.Join("out", "gov", "x_governance.move")))
}

func TestSettingsHash(t *testing.T) {
	cfg := config.Default()
	strict, err := settingsHash(cfg, classifier.ModeStrict)
	require.NoError(t, err)
	broad, err := settingsHash(cfg, classifier.ModeBroad)
	require.NoError(t, err)
	assert.NotEqual(t, strict, broad)

	again, err := settingsHash(config.Default(), classifier.ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, strict, again)
}
