package models

import (
	"time"
)

// ContentEntry tracks file content state (Layer 1)
type ContentEntry struct {
	FilePath    string    `json:"file_path"`
	ContentHash string    `json:"content_hash"`
	ModTime     time.Time `json:"mod_time"`
	Size        int64     `json:"size"`
	Exists      bool      `json:"exists"`
}

// GenerationInfo records the inputs of the last successful generation for
// one source file (Layer 3). SettingsHash covers mode, vocabulary and
// codegen options.
type GenerationInfo struct {
	SourcePath   string    `json:"source_path"`
	OutputPath   string    `json:"output_path"`
	SourceHash   string    `json:"source_hash"`
	SettingsHash string    `json:"settings_hash"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// RegenerationPlan lists the sources that need regeneration and why.
type RegenerationPlan struct {
	Sources []string          `json:"sources"`
	Removed []string          `json:"removed"`
	Reasons map[string]string `json:"reasons"`
}

func NewRegenerationPlan() *RegenerationPlan {
	return &RegenerationPlan{
		Sources: []string{},
		Removed: []string{},
		Reasons: make(map[string]string),
	}
}

func (p *RegenerationPlan) Empty() bool {
	return len(p.Sources) == 0 && len(p.Removed) == 0
}

// CacheStats provides metrics about cache performance
type CacheStats struct {
	TotalFiles        int       `json:"total_files"`
	CacheHits         int64     `json:"cache_hits"`
	CacheMisses       int64     `json:"cache_misses"`
	HitRate           float64   `json:"hit_rate"`
	GenerationEntries int       `json:"generation_entries"`
	LastUpdate        time.Time `json:"last_update"`
}

// NewStats builds stats with the hit rate filled in.
func NewStats(entries int, hits, misses int64) *CacheStats {
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return &CacheStats{
		TotalFiles:  entries,
		CacheHits:   hits,
		CacheMisses: misses,
		HitRate:     hitRate,
		LastUpdate:  time.Now(),
	}
}

type EventType string

const (
	EventWrite  EventType = "write"
	EventCreate EventType = "create"
	EventDelete EventType = "delete"
)

// ChangeEvent represents a file system change
type ChangeEvent struct {
	FilePath  string    `json:"file_path"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}
