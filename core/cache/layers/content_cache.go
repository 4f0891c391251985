package layers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/logger"
)

// ContentCache implements Layer 1: File content tracking
type ContentCache struct {
	entries map[string]*models.ContentEntry
	mutex   sync.Mutex
	hits    int64
	misses  int64
}

func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]*models.ContentEntry),
	}
}

// UpdateContent checks if file content has changed and updates entry
func (cc *ContentCache) UpdateContent(filePath string) (*models.ContentEntry, bool, error) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	stat, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			if existing, exists := cc.entries[filePath]; exists {
				logger.Debug("ContentCache: File deleted: %s", filePath)
				delete(cc.entries, filePath)
				gone := *existing
				gone.Exists = false
				return &gone, true, nil
			}
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	existing, exists := cc.entries[filePath]
	if !exists {
		logger.Debug("ContentCache: New file detected: %s", filePath)
		cc.misses++
		entry, err := newContentEntry(filePath, stat)
		if err != nil {
			return nil, false, err
		}
		cc.entries[filePath] = entry
		return entry, true, nil
	}

	// size and modtime unchanged: assume content is too
	if stat.Size() == existing.Size && stat.ModTime().Equal(existing.ModTime) {
		cc.hits++
		return existing, false, nil
	}

	newHash, err := HashFile(filePath)
	if err != nil {
		return nil, false, err
	}

	if newHash != existing.ContentHash {
		logger.Debug("ContentCache: Content changed for %s (hash: %s -> %s)", filePath, existing.ContentHash[:8], newHash[:8])
		cc.misses++
		entry := &models.ContentEntry{
			FilePath:    filePath,
			ContentHash: newHash,
			ModTime:     stat.ModTime(),
			Size:        stat.Size(),
			Exists:      true,
		}
		cc.entries[filePath] = entry
		return entry, true, nil
	}

	logger.Debug("ContentCache: Metadata changed but content same for %s", filePath)
	existing.ModTime = stat.ModTime()
	existing.Size = stat.Size()
	cc.hits++
	return existing, false, nil
}

func (cc *ContentCache) GetContent(filePath string) (*models.ContentEntry, bool) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	entry, exists := cc.entries[filePath]
	if exists {
		cc.hits++
	} else {
		cc.misses++
	}
	return entry, exists
}

func (cc *ContentCache) RemoveContent(filePath string) error {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	if _, exists := cc.entries[filePath]; exists {
		delete(cc.entries, filePath)
		logger.Debug("ContentCache: Removed entry for %s", filePath)
	}
	return nil
}

func (cc *ContentCache) GetStats() *models.CacheStats {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	return models.NewStats(len(cc.entries), cc.hits, cc.misses)
}

func newContentEntry(filePath string, stat os.FileInfo) (*models.ContentEntry, error) {
	hash, err := HashFile(filePath)
	if err != nil {
		return nil, err
	}

	return &models.ContentEntry{
		FilePath:    filePath,
		ContentHash: hash,
		ModTime:     stat.ModTime(),
		Size:        stat.Size(),
		Exists:      true,
	}, nil
}

// HashFile returns the hex SHA-256 of a file's content.
func HashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", filePath, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashString returns the hex SHA-256 of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
