package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tristendillon/govgen/core/logger"
)

// DefaultExclude are directories never searched for sources.
var DefaultExclude = []string{".git", "build", "node_modules", ".github"}

type DiscoveredFile struct {
	Path    string
	RelPath string
}

type ContractWalker struct {
	Exclude []string
}

func NewContractWalker(exclude ...string) *ContractWalker {
	return &ContractWalker{
		Exclude: append(append([]string{}, DefaultExclude...), exclude...),
	}
}

// Walk returns every .move file under root, sorted by path. A file root
// yields just that file.
func (w *ContractWalker) Walk(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if !IsMoveFile(root) {
			return nil, fmt.Errorf("%s is not a .move file", root)
		}
		return []DiscoveredFile{{Path: root, RelPath: filepath.Base(root)}}, nil
	}

	var discovered []DiscoveredFile
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if w.Excluded(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !IsMoveFile(path) {
			return nil
		}

		discovered = append(discovered, DiscoveredFile{Path: path, RelPath: relPath})
		logger.Debug("Found contract: %s", relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(discovered, func(i, j int) bool {
		return discovered[i].Path < discovered[j].Path
	})
	return discovered, nil
}

// Excluded reports whether any segment of relPath is an excluded name, or
// relPath sits under an excluded relative path.
func (w *ContractWalker) Excluded(relPath string) bool {
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	segments := strings.Split(relPath, "/")
	for _, ex := range w.Exclude {
		ex = filepath.ToSlash(filepath.Clean(ex))
		if ex == "" || ex == "." {
			continue
		}
		if relPath == ex || strings.HasPrefix(relPath, ex+"/") {
			return true
		}
		for _, seg := range segments {
			if seg == ex {
				return true
			}
		}
	}
	return false
}

func IsMoveFile(path string) bool {
	return strings.HasSuffix(path, ".move")
}
