package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	cachemodels "github.com/tristendillon/govgen/core/cache/models"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/walker"
)

const DefaultDebounce = 300 * time.Millisecond

// FileWatcher collects .move changes under RootDir and hands them to
// OnChange once no new event has arrived for Debounce.
type FileWatcher struct {
	Watcher  *fsnotify.Watcher
	RootDir  string
	Debounce time.Duration
	OnStart  func() error
	OnChange func(events []cachemodels.ChangeEvent) error
	OnClose  func() error

	walker        *walker.ContractWalker
	mutex         sync.Mutex
	debounceTimer *time.Timer
	pending       map[string]cachemodels.EventType
}

func NewFileWatcher(rootDir string, excludePaths []string, debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		Watcher:  w,
		RootDir:  rootDir,
		Debounce: debounce,
		OnStart:  func() error { return nil },
		OnChange: func([]cachemodels.ChangeEvent) error { return fmt.Errorf("OnChange not set") },
		OnClose:  func() error { return nil },
		walker:   walker.NewContractWalker(excludePaths...),
		pending:  make(map[string]cachemodels.EventType),
	}, nil
}

// Watch blocks until ctx is done or the watcher fails.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.RootDir); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	if err := fw.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if fw.shouldExcludePath(event.Name) {
				continue
			}
			logger.Debug("File event: %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					logger.Debug("Adding watcher for new directory: %s", event.Name)
					if err := fw.addWatchersRecursively(event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !walker.IsMoveFile(event.Name) {
				continue
			}
			if kind, ok := eventType(event); ok {
				fw.record(event.Name, kind)
			}

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func eventType(event fsnotify.Event) (cachemodels.EventType, bool) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return cachemodels.EventDelete, true
	case event.Has(fsnotify.Create):
		return cachemodels.EventCreate, true
	case event.Has(fsnotify.Write):
		return cachemodels.EventWrite, true
	default:
		return "", false
	}
}

func (fw *FileWatcher) record(path string, kind cachemodels.EventType) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	// a create followed by writes is still a create
	if prev, ok := fw.pending[path]; !ok || kind != cachemodels.EventWrite || prev != cachemodels.EventCreate {
		fw.pending[path] = kind
	}

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.Debounce, fw.flush)
}

func (fw *FileWatcher) flush() {
	fw.mutex.Lock()
	events := make([]cachemodels.ChangeEvent, 0, len(fw.pending))
	now := time.Now()
	for path, kind := range fw.pending {
		events = append(events, cachemodels.ChangeEvent{FilePath: path, EventType: kind, Timestamp: now})
	}
	fw.pending = make(map[string]cachemodels.EventType)
	fw.mutex.Unlock()

	if len(events) == 0 {
		return
	}
	sort.Slice(events, func(i, j int) bool { return events[i].FilePath < events[j].FilePath })

	logger.Debug("%d file change(s) detected, regenerating...", len(events))
	if err := fw.OnChange(events); err != nil {
		logger.Error("Watcher.OnChange failed: %v", err)
	}
}

func (fw *FileWatcher) Close() error {
	fw.mutex.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mutex.Unlock()

	if err := fw.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}
	return fw.Watcher.Close()
}

func (fw *FileWatcher) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.RootDir, path)
	if err != nil || relPath == "." {
		return false
	}
	return fw.walker.Excluded(relPath)
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}
		return nil
	})
}
