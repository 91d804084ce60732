package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/source"
)

const sample = "class T {\n    void m() {\n        int tmp = 42;\n    }\n}\n"

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func sampleResult(t *testing.T) *analyzer.FileResult {
	t.Helper()
	a := analyzer.New()
	defer a.Close()
	res, err := a.Analyze([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	return &analyzer.FileResult{Path: "T.java", Result: res}
}

func TestNew(t *testing.T) {
	c := newCache(t)
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}

	c, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")
	if _, err := New(cacheDir, 24, true); err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}
}

func TestKey(t *testing.T) {
	k1 := Key("v1|10|2|5|tmp", []byte(sample))
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
	if k1 != Key("v1|10|2|5|tmp", []byte(sample)) {
		t.Error("key should be deterministic")
	}
	if k1 == Key("v1|20|2|5|tmp", []byte(sample)) {
		t.Error("settings must change the key")
	}
	if k1 == Key("v1|10|2|5|tmp", []byte(sample+" ")) {
		t.Error("source must change the key")
	}
}

func TestPutAndGet(t *testing.T) {
	c := newCache(t)
	fr := sampleResult(t)
	key := Key("s", []byte(sample))

	if err := c.Put(key, fr); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	entry, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() should hit after Put()")
	}
	if entry.Path != "T.java" {
		t.Errorf("Path = %s", entry.Path)
	}
	if entry.Result.Total() != fr.Result.Total() {
		t.Errorf("Total = %d, want %d", entry.Result.Total(), fr.Result.Total())
	}
	for i, issue := range fr.Result.All() {
		if got := entry.Result.All()[i].Fingerprint(); got != issue.Fingerprint() {
			t.Errorf("issue %d changed across the cache: %+v", i, entry.Result.All()[i])
		}
	}
}

func TestGetNonExistent(t *testing.T) {
	c := newCache(t)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get() should miss for unknown key")
	}
}

func TestGetExpired(t *testing.T) {
	c := newCache(t)
	c.ttl = time.Nanosecond
	key := Key("s", []byte(sample))
	if err := c.Put(key, sampleResult(t)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.keyPath(key)); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestGetCorrupt(t *testing.T) {
	c := newCache(t)
	if err := os.WriteFile(c.keyPath("bad"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("corrupt entry should miss")
	}
}

func TestInvalidate(t *testing.T) {
	c := newCache(t)
	key := Key("s", []byte(sample))
	if err := c.Put(key, sampleResult(t)); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(key); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("Get() should miss after Invalidate()")
	}
	if err := c.Invalidate(key); err != nil {
		t.Errorf("invalidating a missing key should succeed: %v", err)
	}
}

func TestClearAndStats(t *testing.T) {
	c := newCache(t)
	for _, s := range []string{"a", "b"} {
		if err := c.Put(Key(s, []byte(sample)), sampleResult(t)); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.Entries != 2 || stats.TotalSize == 0 {
		t.Errorf("stats = %+v", stats)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := os.Stat(c.dir); !os.IsNotExist(err) {
		t.Error("Clear() should remove the cache directory")
	}
}

func TestDisabledCache(t *testing.T) {
	c, _ := New("", 0, false)
	if err := c.Put("k", sampleResult(t)); err != nil {
		t.Errorf("Put() on disabled cache: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache should always miss")
	}
	stats, err := c.GetStats()
	if err != nil || stats.Entries != 0 {
		t.Errorf("disabled stats = %+v, %v", stats, err)
	}
}

func TestAnalyze(t *testing.T) {
	c := newCache(t)
	a := analyzer.New()
	defer a.Close()

	src := source.MemorySource{
		"A.java": []byte(sample),
		"B.java": []byte("class B {}\n"),
	}
	files := []string{"A.java", "Missing.java", "B.java"}

	first, hits, err := c.Analyze(context.Background(), a, files, src)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if hits != 0 {
		t.Errorf("cold cache hits = %d", hits)
	}
	if len(first.Files) != 2 || first.Files[0].Path != "A.java" || first.Files[1].Path != "B.java" {
		t.Fatalf("files out of order: %+v", first.Files)
	}
	if len(first.Skipped) != 1 || first.Skipped[0].Path != "Missing.java" {
		t.Errorf("skipped = %+v", first.Skipped)
	}

	second, hits, err := c.Analyze(context.Background(), a, files, src)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if hits != 2 {
		t.Errorf("warm cache hits = %d, want 2", hits)
	}
	if second.Summary.Errors != first.Summary.Errors || second.Summary.Suggestions != first.Summary.Suggestions {
		t.Errorf("cached summary differs: %+v vs %+v", second.Summary, first.Summary)
	}
	if second.Files[0].Source != sample {
		t.Error("cache hits should carry the source text")
	}
	if len(second.Files[0].Result.ByCategory(models.CategoryPoorName)) != 1 {
		t.Error("cached result should keep the poor name finding")
	}

	strict := analyzer.New(analyzer.WithThresholds(analyzer.Thresholds{MethodLength: 2, Nesting: 2, Complexity: 5}))
	defer strict.Close()
	_, hits, err = c.Analyze(context.Background(), strict, files, src)
	if err != nil {
		t.Fatal(err)
	}
	if hits != 0 {
		t.Errorf("different settings must not hit, got %d", hits)
	}
}

func TestAnalyzeDisabled(t *testing.T) {
	c, _ := New("", 0, false)
	a := analyzer.New()
	defer a.Close()

	report, hits, err := c.Analyze(context.Background(), a, []string{"A.java"}, source.MemorySource{"A.java": []byte(sample)})
	if err != nil {
		t.Fatal(err)
	}
	if hits != 0 || len(report.Files) != 1 {
		t.Errorf("hits=%d files=%d", hits, len(report.Files))
	}
}
