package models

import (
	coreModels "github.com/tristendillon/govgen/core/models"
)

// ContentCacheInterface manages file content tracking (Layer 1)
type ContentCacheInterface interface {
	// UpdateContent checks if file content has changed and updates entry
	UpdateContent(filePath string) (*ContentEntry, bool, error) // entry, changed, error

	GetContent(filePath string) (*ContentEntry, bool)
	RemoveContent(filePath string) error
	GetStats() *CacheStats
}

// ParseCacheInterface keeps scanned contracts (Layer 2)
type ParseCacheInterface interface {
	SetContract(filePath, contentHash string, contract *coreModels.Contract) error

	// GetContract misses when the entry was scanned from other content
	GetContract(filePath, contentHash string) (*coreModels.Contract, bool)
	InvalidateParse(filePath string) error
	GetStats() *CacheStats
}

// GenerationCacheInterface manages generation state (Layer 3)
type GenerationCacheInterface interface {
	MarkGenerated(sourcePath, outputPath, sourceHash, settingsHash string) error

	// NeedsRegeneration checks if file needs regeneration
	NeedsRegeneration(sourcePath, currentHash, settingsHash string) (bool, string) // needs, reason

	GetGenerationInfo(sourcePath string) (*GenerationInfo, bool)
	InvalidateGeneration(sourcePath string) error
	GetStats() *CacheStats
}

// CacheManagerInterface provides unified cache coordination
type CacheManagerInterface interface {
	// HandleFileChange processes a file system change event
	HandleFileChange(event *ChangeEvent, settingsHash string) (*RegenerationPlan, error)

	// GetContract returns the cached contract when the file is unchanged
	GetContract(filePath string) (*coreModels.Contract, bool, error)

	SetContract(filePath string, contract *coreModels.Contract) error
	MarkGenerated(sourcePath, outputPath, settingsHash string) error
	NeedsRegeneration(sourcePath, settingsHash string) (bool, string, error)

	// ForgetGeneration drops the generation record of a source whose output
	// was removed
	ForgetGeneration(sourcePath string)
	GetStats() map[string]*CacheStats

	// WarmCache records content hashes for every .move file under rootDir
	WarmCache(rootDir string, excludePaths []string) (int, error)
}
