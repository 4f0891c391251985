package manager

import (
	"fmt"
	"time"

	"github.com/tristendillon/govgen/core/cache/layers"
	"github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/logger"
	coreModels "github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/walker"
)

// CacheManager coordinates all cache layers and provides unified interface
type CacheManager struct {
	content    models.ContentCacheInterface
	parse      models.ParseCacheInterface
	generation models.GenerationCacheInterface
}

var _ models.CacheManagerInterface = (*CacheManager)(nil)

func NewCacheManager() *CacheManager {
	return &CacheManager{
		content:    layers.NewContentCache(),
		parse:      layers.NewParseCache(),
		generation: layers.NewGenerationCache(),
	}
}

// HandleFileChange processes a file system change event
func (cm *CacheManager) HandleFileChange(event *models.ChangeEvent, settingsHash string) (*models.RegenerationPlan, error) {
	logger.Debug("CacheManager: Handling file change: %s (%s)", event.FilePath, event.EventType)

	plan := models.NewRegenerationPlan()
	switch event.EventType {
	case models.EventDelete:
		cm.content.RemoveContent(event.FilePath)
		cm.parse.InvalidateParse(event.FilePath)
		cm.generation.InvalidateGeneration(event.FilePath)
		plan.Removed = append(plan.Removed, event.FilePath)
		plan.Reasons[event.FilePath] = "source deleted"
		return plan, nil
	case models.EventWrite, models.EventCreate:
		needs, reason, err := cm.NeedsRegeneration(event.FilePath, settingsHash)
		if err != nil {
			return plan, err
		}
		if needs {
			plan.Sources = append(plan.Sources, event.FilePath)
			plan.Reasons[event.FilePath] = reason
		}
		return plan, nil
	default:
		return plan, fmt.Errorf("unknown event type: %s", event.EventType)
	}
}

// GetContract returns the cached contract for filePath if it was scanned
// from the file's current content.
func (cm *CacheManager) GetContract(filePath string) (*coreModels.Contract, bool, error) {
	entry, _, err := cm.content.UpdateContent(filePath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check content for %s: %w", filePath, err)
	}

	if entry == nil || !entry.Exists {
		cm.parse.InvalidateParse(filePath)
		return nil, false, nil
	}

	contract, exists := cm.parse.GetContract(filePath, entry.ContentHash)
	return contract, exists, nil
}

// SetContract stores contract against the content hash last recorded for
// filePath.
func (cm *CacheManager) SetContract(filePath string, contract *coreModels.Contract) error {
	entry, exists := cm.content.GetContent(filePath)
	if !exists || !entry.Exists {
		return fmt.Errorf("no content entry found for source file: %s", filePath)
	}
	if err := cm.parse.SetContract(filePath, entry.ContentHash, contract); err != nil {
		return fmt.Errorf("failed to store contract: %w", err)
	}
	return nil
}

// MarkGenerated records successful generation
func (cm *CacheManager) MarkGenerated(sourcePath, outputPath, settingsHash string) error {
	entry, exists := cm.content.GetContent(sourcePath)
	if !exists {
		return fmt.Errorf("no content entry found for source file: %s", sourcePath)
	}
	return cm.generation.MarkGenerated(sourcePath, outputPath, entry.ContentHash, settingsHash)
}

func (cm *CacheManager) GetGenerationInfo(sourcePath string) (*models.GenerationInfo, bool) {
	return cm.generation.GetGenerationInfo(sourcePath)
}

func (cm *CacheManager) ForgetGeneration(sourcePath string) {
	cm.generation.InvalidateGeneration(sourcePath)
}

// NeedsRegeneration refreshes the content entry of sourcePath and asks the
// generation layer whether its recorded inputs still match.
func (cm *CacheManager) NeedsRegeneration(sourcePath, settingsHash string) (bool, string, error) {
	entry, _, err := cm.content.UpdateContent(sourcePath)
	if err != nil {
		return false, "", fmt.Errorf("failed to check content for %s: %w", sourcePath, err)
	}
	if entry == nil || !entry.Exists {
		return false, "", nil
	}
	needs, reason := cm.generation.NeedsRegeneration(sourcePath, entry.ContentHash, settingsHash)
	if needs {
		logger.Debug("CacheManager: %s needs regeneration: %s", sourcePath, reason)
	}
	return needs, reason, nil
}

// GetStats returns comprehensive cache statistics
func (cm *CacheManager) GetStats() map[string]*models.CacheStats {
	return map[string]*models.CacheStats{
		"content":    cm.content.GetStats(),
		"parse":      cm.parse.GetStats(),
		"generation": cm.generation.GetStats(),
	}
}

func (cm *CacheManager) LogStats() {
	for _, layer := range []string{"content", "parse", "generation"} {
		s := cm.GetStats()[layer]
		logger.Debug("Cache %-10s entries=%d hits=%d misses=%d (%.1f%%)",
			layer, s.TotalFiles, s.CacheHits, s.CacheMisses, s.HitRate)
	}
}

// WarmCache records content hashes for every .move file under rootDir and
// returns how many were hashed. excludePaths are matched the way the
// contract walker matches them.
func (cm *CacheManager) WarmCache(rootDir string, excludePaths []string) (int, error) {
	logger.Debug("CacheManager: Warming cache from directory: %s", rootDir)
	startTime := time.Now()

	files, err := walker.NewContractWalker(excludePaths...).Walk(rootDir)
	if err != nil {
		return 0, err
	}

	var fileCount int
	for _, file := range files {
		if _, _, err := cm.content.UpdateContent(file.Path); err != nil {
			logger.Debug("CacheManager: Failed to cache content for %s: %v", file.Path, err)
			continue
		}
		fileCount++
	}

	logger.Debug("CacheManager: Cache warming completed in %v - processed %d files", time.Since(startTime), fileCount)
	return fileCount, nil
}
