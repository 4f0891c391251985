package layers

import (
	"fmt"
	"sync"

	"github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/logger"
	coreModels "github.com/tristendillon/govgen/core/models"
)

type parseEntry struct {
	contentHash string
	contract    *coreModels.Contract
}

// ParseCache implements Layer 2: scanned contracts by source path, each
// tagged with the content hash it was scanned from
type ParseCache struct {
	entries map[string]parseEntry
	mutex   sync.Mutex
	hits    int64
	misses  int64
}

func NewParseCache() *ParseCache {
	return &ParseCache{
		entries: make(map[string]parseEntry),
	}
}

func (pc *ParseCache) SetContract(filePath, contentHash string, contract *coreModels.Contract) error {
	if contract == nil {
		return fmt.Errorf("contract cannot be nil")
	}
	if contentHash == "" {
		return fmt.Errorf("content hash required for %s", filePath)
	}

	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	pc.entries[filePath] = parseEntry{contentHash: contentHash, contract: contract}
	logger.Debug("ParseCache: Stored %s for %s (%d functions)", contract.Module, filePath, len(contract.Functions))
	return nil
}

// GetContract returns the stored contract only when it was scanned from
// content with contentHash. A stale entry is dropped.
func (pc *ParseCache) GetContract(filePath, contentHash string) (*coreModels.Contract, bool) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	entry, exists := pc.entries[filePath]
	if exists && entry.contentHash == contentHash {
		pc.hits++
		logger.Debug("ParseCache: Hit for %s", filePath)
		return entry.contract, true
	}
	if exists {
		delete(pc.entries, filePath)
		logger.Debug("ParseCache: Stale entry for %s", filePath)
	}
	pc.misses++
	logger.Debug("ParseCache: Miss for %s", filePath)
	return nil, false
}

func (pc *ParseCache) InvalidateParse(filePath string) error {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	if _, exists := pc.entries[filePath]; exists {
		delete(pc.entries, filePath)
		logger.Debug("ParseCache: Invalidated parsed data for %s", filePath)
	}
	return nil
}

func (pc *ParseCache) GetStats() *models.CacheStats {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	return models.NewStats(len(pc.entries), pc.hits, pc.misses)
}
