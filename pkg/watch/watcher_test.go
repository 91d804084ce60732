package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/config"
	"github.com/panbanda/revue/pkg/models"
)

const (
	cleanJava = "class T {\n    int total() {\n        return 0;\n    }\n}\n"
	poorJava  = "class T {\n    int total() {\n        int tmp = 0;\n        return tmp;\n    }\n}\n"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) *Watcher {
	t.Helper()
	a := analyzer.New()
	t.Cleanup(a.Close)
	w, err := NewWatcher(dir, config.DefaultConfig(), a, debounce)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, 500 * time.Millisecond},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			if w.fsWatcher == nil {
				t.Error("fsWatcher should not be nil")
			}
			if w.path != tmpDir {
				t.Errorf("path = %v, want %v", w.path, tmpDir)
			}
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
		})
	}
}

func TestNewWatcher_NilConfig(t *testing.T) {
	a := analyzer.New()
	defer a.Close()
	w, err := NewWatcher(t.TempDir(), nil, a, 0)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	if w.config == nil {
		t.Error("nil config should fall back to defaults")
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	tests := []struct {
		name    string
		event   fsnotify.Event
		pending bool
	}{
		{"java write", fsnotify.Event{Name: filepath.Join(tmpDir, "App.java"), Op: fsnotify.Write}, true},
		{"java create", fsnotify.Event{Name: filepath.Join(tmpDir, "New.java"), Op: fsnotify.Create}, true},
		{"java remove", fsnotify.Event{Name: filepath.Join(tmpDir, "Old.java"), Op: fsnotify.Remove}, true},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "Mode.java"), Op: fsnotify.Chmod}, false},
		{"non-java ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "README.md"), Op: fsnotify.Write}, false},
		{"test excluded", fsnotify.Event{Name: filepath.Join(tmpDir, "AppTest.java"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.handleEvent(tt.event)
			w.mu.Lock()
			_, ok := w.pending[tt.event.Name]
			w.mu.Unlock()
			if ok != tt.pending {
				t.Errorf("pending = %v, want %v", ok, tt.pending)
			}
		})
	}
}

func TestWatcher_handleEvent_NewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	sub := filepath.Join(tmpDir, "pkg")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	w.handleEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create})

	found := false
	for _, p := range w.WatchedFiles() {
		if p == sub {
			found = true
		}
	}
	if !found {
		t.Errorf("new directory %s should be watched, got %v", sub, w.WatchedFiles())
	}
}

func TestWatcher_ready(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 100*time.Millisecond)
	now := time.Now()

	w.mu.Lock()
	w.pending["old.java"] = now.Add(-time.Second)
	w.pending["fresh.java"] = now
	w.mu.Unlock()

	got := w.ready(now)
	if len(got) != 1 || got[0] != "old.java" {
		t.Errorf("ready() = %v, want [old.java]", got)
	}

	w.mu.Lock()
	_, stillPending := w.pending["fresh.java"]
	_, oldPending := w.pending["old.java"]
	w.mu.Unlock()
	if !stillPending || oldPending {
		t.Error("only ready files should leave the pending set")
	}
}

func TestWatcher_Reanalyze(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "T.java")
	w := newTestWatcher(t, tmpDir, time.Second)

	writeFile(t, path, cleanJava)
	if err := w.Baseline(context.Background(), []string{path}); err != nil {
		t.Fatalf("Baseline() error = %v", err)
	}

	writeFile(t, path, poorJava)
	change := w.Reanalyze(path)
	if change.Err != nil {
		t.Fatalf("Reanalyze() error = %v", change.Err)
	}
	var poor *models.Issue
	for i := range change.New {
		if change.New[i].Category == models.CategoryPoorName {
			poor = &change.New[i]
		}
	}
	if poor == nil || poor.Symbol != "tmp" || poor.Line != 3 {
		t.Fatalf("expected new poor name issue for tmp on line 3, got %+v", change.New)
	}

	writeFile(t, path, cleanJava)
	change = w.Reanalyze(path)
	resolvedPoor := false
	for _, issue := range change.Resolved {
		if issue.Category == models.CategoryPoorName {
			resolvedPoor = true
		}
	}
	if !resolvedPoor {
		t.Errorf("poor name issue should be resolved, got %+v", change.Resolved)
	}

	change = w.Reanalyze(path)
	if len(change.New) != 0 || len(change.Resolved) != 0 {
		t.Errorf("unchanged file should produce no diff, got new=%d resolved=%d", len(change.New), len(change.Resolved))
	}
}

func TestWatcher_ReanalyzeRemoved(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "T.java")
	w := newTestWatcher(t, tmpDir, time.Second)

	writeFile(t, path, poorJava)
	w.Reanalyze(path)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	change := w.Reanalyze(path)
	if !change.Removed {
		t.Fatal("change should be marked removed")
	}
	if change.Err != nil {
		t.Errorf("removal is not an error: %v", change.Err)
	}
	if len(change.Resolved) == 0 {
		t.Error("all issues of a removed file are resolved")
	}
}

func TestDiff(t *testing.T) {
	a := models.NewIssue(3, "Poor variable name found: 'x'", models.CategoryPoorName, models.KindError, models.SeverityWarning)
	b := models.NewIssue(5, "Magic number found: 42.", models.CategoryMagicNumber, models.KindSuggestion, models.SeverityInfo)
	c := models.NewIssue(1, "Unused imports detected: 1", models.CategoryUnusedImport, models.KindError, models.SeverityInfo)

	added, resolved := Diff([]models.Issue{a, b}, []models.Issue{b, c})
	if len(added) != 1 || added[0].Category != models.CategoryUnusedImport {
		t.Errorf("added = %+v", added)
	}
	if len(resolved) != 1 || resolved[0].Category != models.CategoryPoorName {
		t.Errorf("resolved = %+v", resolved)
	}

	added, resolved = Diff(nil, []models.Issue{b, a})
	if len(added) != 2 || added[0].Line != 3 || len(resolved) != 0 {
		t.Errorf("added should be sorted by line: %+v", added)
	}

	added, _ = Diff([]models.Issue{a}, []models.Issue{a, a})
	if len(added) != 1 {
		t.Errorf("duplicates are counted, got %d added", len(added))
	}
}

func TestWatcher_Start_Context(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Start() did not return after context cancellation")
	}
}

func TestWatcher_Start_FileChange(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "T.java")
	writeFile(t, path, cleanJava)

	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	changes := make(chan Change, 4)
	var once sync.Once
	w.SetCallback(func(c Change) {
		once.Do(func() { changes <- c })
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(200 * time.Millisecond)
	writeFile(t, path, poorJava)

	select {
	case c := <-changes:
		if c.Path != path {
			t.Errorf("change path = %v, want %v", c.Path, path)
		}
		if len(c.New) == 0 {
			t.Error("expected new issues after introducing a poor name")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not called")
	}
}

func TestWatcher_Start_ExcludedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"target", "src"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	time.Sleep(200 * time.Millisecond)

	for _, p := range w.WatchedFiles() {
		if filepath.Base(p) == "target" {
			t.Errorf("excluded directory should not be watched: %s", p)
		}
	}
}
