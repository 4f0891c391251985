package layers

import (
	"fmt"
	"sync"
	"time"

	"github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/logger"
)

// GenerationCache implements Layer 3: Generation state tracking
type GenerationCache struct {
	entries map[string]*models.GenerationInfo
	mutex   sync.RWMutex
}

func NewGenerationCache() *GenerationCache {
	return &GenerationCache{
		entries: make(map[string]*models.GenerationInfo),
	}
}

// MarkGenerated records successful generation
func (gc *GenerationCache) MarkGenerated(sourcePath, outputPath, sourceHash, settingsHash string) error {
	if sourcePath == "" || outputPath == "" {
		return fmt.Errorf("source path and output path cannot be empty")
	}

	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	gc.entries[sourcePath] = &models.GenerationInfo{
		SourcePath:   sourcePath,
		OutputPath:   outputPath,
		SourceHash:   sourceHash,
		SettingsHash: settingsHash,
		GeneratedAt:  time.Now(),
	}
	logger.Debug("GenerationCache: Marked %s as generated (output: %s)", sourcePath, outputPath)
	return nil
}

// NeedsRegeneration compares the recorded inputs with the current ones. A
// deleted output file also forces regeneration.
func (gc *GenerationCache) NeedsRegeneration(sourcePath, currentHash, settingsHash string) (bool, string) {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	entry, exists := gc.entries[sourcePath]
	if !exists {
		return true, "no generation record found"
	}
	if entry.SourceHash != currentHash {
		return true, "source content changed"
	}
	if entry.SettingsHash != settingsHash {
		return true, "settings changed"
	}
	if !fileExists(entry.OutputPath) {
		return true, "output missing"
	}
	return false, ""
}

func (gc *GenerationCache) GetGenerationInfo(sourcePath string) (*models.GenerationInfo, bool) {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	entry, exists := gc.entries[sourcePath]
	if !exists {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

func (gc *GenerationCache) InvalidateGeneration(sourcePath string) error {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	if _, exists := gc.entries[sourcePath]; exists {
		delete(gc.entries, sourcePath)
		logger.Debug("GenerationCache: Invalidated generation record for %s", sourcePath)
	}
	return nil
}

func (gc *GenerationCache) GetStats() *models.CacheStats {
	gc.mutex.RLock()
	defer gc.mutex.RUnlock()

	return &models.CacheStats{
		TotalFiles:        len(gc.entries),
		GenerationEntries: len(gc.entries),
		LastUpdate:        time.Now(),
	}
}
