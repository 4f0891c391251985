package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("module a::b {}"), 0644))
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "sources", "vault.move"))
	touch(t, filepath.Join(root, "sources", "counter.move"))
	touch(t, filepath.Join(root, "sources", "nested", "pool.move"))
	touch(t, filepath.Join(root, "build", "deps", "coin.move"))
	touch(t, filepath.Join(root, "governance", "counter_governance.move"))
	touch(t, filepath.Join(root, "Move.toml"))

	files, err := NewContractWalker("governance").Walk(root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		rel = append(rel, filepath.ToSlash(f.RelPath))
	}
	assert.Equal(t, []string{"sources/counter.move", "sources/nested/pool.move", "sources/vault.move"}, rel)
}

func TestWalk_SingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "counter.move")
	touch(t, path)

	files, err := NewContractWalker().Walk(path)
	require.NoError(t, err)
	assert.Equal(t, []DiscoveredFile{{Path: path, RelPath: "counter.move"}}, files)

	other := filepath.Join(root, "Move.toml")
	touch(t, other)
	_, err = NewContractWalker().Walk(other)
	assert.Error(t, err)

	_, err = NewContractWalker().Walk(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestExcluded(t *testing.T) {
	w := NewContractWalker("out/gov")

	assert.True(t, w.Excluded("build"))
	assert.True(t, w.Excluded("sources/build/x.move"))
	assert.True(t, w.Excluded(".git/HEAD"))
	assert.True(t, w.Excluded("out/gov"))
	assert.True(t, w.Excluded("out/gov/a_governance.move"))
	assert.False(t, w.Excluded("out/other.move"))
	assert.False(t, w.Excluded("sources/builder.move"))
}

func TestIsMoveFile(t *testing.T) {
	assert.True(t, IsMoveFile("a/b.move"))
	assert.False(t, IsMoveFile("Move.toml"))
}
