// Package cache stores analysis results on disk keyed by a BLAKE3 digest of
// the source text and the analyzer settings.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/analyzer/metrics"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/source"
	"github.com/zeebo/blake3"
)

// Cache provides file-based caching for analysis results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is one cached file analysis.
type Entry struct {
	Key       string                  `json:"key"`
	Path      string                  `json:"path"`
	Timestamp time.Time               `json:"timestamp"`
	Result    *models.AnalysisResult  `json:"result"`
	Methods   []metrics.MethodMetrics `json:"methods"`
}

// New creates a cache in dir. A disabled cache misses on every lookup and
// ignores writes.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether lookups can hit.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Key digests the analyzer settings and the source text.
func Key(settings string, src []byte) string {
	h := blake3.New()
	h.Write([]byte(settings))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves an entry if it exists and has not expired.
func (c *Cache) Get(key string) (*Entry, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key || entry.Result == nil {
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}

	return &entry, true
}

// Put stores a file analysis under key.
func (c *Cache) Put(key string, fr *analyzer.FileResult) error {
	if !c.enabled {
		return nil
	}

	entry := Entry{
		Key:       key,
		Path:      fr.Path,
		Timestamp: time.Now(),
		Result:    fr.Result,
		Methods:   fr.Methods,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0600)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Stats describes the cache contents.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}

// Analyze runs a batch through the cache: hits are served from disk, misses
// are analyzed in parallel and stored. Files keep their input order. It
// returns the report and the number of hits.
func (c *Cache) Analyze(ctx context.Context, a *analyzer.Analyzer, files []string, src source.ContentSource) (*analyzer.Report, int, error) {
	if !c.enabled {
		report, err := a.AnalyzeSources(ctx, files, src)
		return report, 0, err
	}

	settings := a.SettingsKey()
	hits := make(map[string]*Entry)
	keys := make(map[string]string)
	texts := make(map[string][]byte)
	contents := make(source.MemorySource)
	var skipped []analyzer.Skipped
	var misses []string

	for _, path := range files {
		content, err := src.Read(path)
		if err != nil {
			skipped = append(skipped, analyzer.Skipped{Path: path, Reason: err.Error()})
			continue
		}
		texts[path] = content
		key := Key(settings, content)
		if entry, ok := c.Get(key); ok {
			hits[path] = entry
			continue
		}
		keys[path] = key
		contents[path] = content
		misses = append(misses, path)
	}

	fresh := make(map[string]analyzer.FileResult)
	if len(misses) > 0 {
		report, err := a.AnalyzeSources(ctx, misses, contents)
		if report != nil {
			skipped = append(skipped, report.Skipped...)
			for _, fr := range report.Files {
				fresh[fr.Path] = fr
				if perr := c.Put(keys[fr.Path], &fr); perr != nil {
					return nil, 0, fmt.Errorf("write cache: %w", perr)
				}
			}
		}
		if err != nil {
			return assemble(files, texts, hits, fresh, skipped), len(hits), err
		}
	}

	return assemble(files, texts, hits, fresh, skipped), len(hits), nil
}

func assemble(files []string, texts map[string][]byte, hits map[string]*Entry, fresh map[string]analyzer.FileResult, skipped []analyzer.Skipped) *analyzer.Report {
	out := make([]analyzer.FileResult, 0, len(files))
	for _, path := range files {
		if entry, ok := hits[path]; ok {
			out = append(out, analyzer.FileResult{
				Path:    path,
				Result:  entry.Result,
				Methods: entry.Methods,
				Source:  string(texts[path]),
			})
			continue
		}
		if fr, ok := fresh[path]; ok {
			out = append(out, fr)
		}
	}
	return analyzer.NewReport(out, skipped)
}
