package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/config"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/parser"
	"github.com/rs/zerolog"
)

// Change is the outcome of re-analyzing one changed file.
type Change struct {
	Path     string
	Result   *analyzer.FileResult // nil when the file was removed or unreadable
	New      []models.Issue
	Resolved []models.Issue
	Removed  bool
	Err      error
}

// Watcher re-analyzes Java files as they change and reports which issues
// appeared or disappeared since the previous analysis of each file.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	analyzer  *analyzer.Analyzer
	debounce  time.Duration
	path      string
	logger    zerolog.Logger
	callback  func(Change)
	mu        sync.Mutex
	pending   map[string]time.Time
	known     map[string][]models.Issue
}

// NewWatcher creates a new file watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, a *analyzer.Analyzer, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		analyzer:  a,
		debounce:  debounce,
		path:      path,
		logger:    zerolog.Nop(),
		pending:   make(map[string]time.Time),
		known:     make(map[string][]models.Issue),
	}, nil
}

// SetCallback sets the function called after each re-analysis.
func (w *Watcher) SetCallback(cb func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = cb
}

// SetLogger sets the diagnostic logger.
func (w *Watcher) SetLogger(l zerolog.Logger) {
	w.logger = l
}

// Start analyzes every Java file under the root as a baseline, then watches
// for changes until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var files []string
	err := filepath.Walk(w.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w.excludedDir(info.Name()) && path != w.path {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if parser.IsJava(path) && !w.config.ShouldExclude(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := w.Baseline(ctx, files); err != nil {
		return err
	}

	color.Cyan("Watching %d Java files in %s...", len(files), w.path)
	color.Cyan("Press Ctrl+C to stop")

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

// Baseline records the current issues of files without reporting them.
func (w *Watcher) Baseline(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	report, err := w.analyzer.AnalyzeFiles(ctx, files)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range report.Files {
		w.known[f.Path] = f.Result.All()
	}
	w.logger.Debug().Int("files", len(report.Files)).Int("skipped", len(report.Skipped)).Msg("baseline analyzed")
	return nil
}

func (w *Watcher) excludedDir(name string) bool {
	for _, excluded := range w.config.Exclude.Dirs {
		if name == excluded {
			return true
		}
	}
	return false
}

// handleEvent queues Java file changes and starts watching new directories.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excludedDir(info.Name()) {
				if err := w.fsWatcher.Add(path); err != nil {
					w.logger.Warn().Err(err).Str("dir", path).Msg("cannot watch directory")
				}
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !parser.IsJava(path) || w.config.ShouldExclude(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processDebounced processes pending changes after debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, path := range w.ready(time.Now()) {
				go w.runCallback(path)
			}
		}
	}
}

// ready removes and returns the files that have been stable for the
// debounce period.
func (w *Watcher) ready(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var paths []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			paths = append(paths, path)
		}
	}
	for _, path := range paths {
		delete(w.pending, path)
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) runCallback(path string) {
	change := w.Reanalyze(path)

	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()
	if cb != nil {
		cb(change)
	}
}

// Reanalyze analyzes path and diffs the result against the previous
// analysis of the same file.
func (w *Watcher) Reanalyze(path string) Change {
	change := Change{Path: path}

	fr, err := w.analyzer.AnalyzeFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			change.Removed = true
		} else {
			change.Err = err
		}
	}
	change.Result = fr

	var current []models.Issue
	if fr != nil {
		current = fr.Result.All()
	}

	w.mu.Lock()
	previous := w.known[path]
	if change.Removed {
		delete(w.known, path)
	} else if change.Err == nil {
		w.known[path] = current
	}
	w.mu.Unlock()

	if change.Err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("re-analysis failed")
		return change
	}

	change.New, change.Resolved = Diff(previous, current)
	w.logger.Debug().
		Str("path", path).
		Int("new", len(change.New)).
		Int("resolved", len(change.Resolved)).
		Msg("file re-analyzed")
	return change
}

// Diff compares two issue lists by fingerprint. Both results are sorted by
// line.
func Diff(before, after []models.Issue) (added, resolved []models.Issue) {
	seen := make(map[uint64]int, len(before))
	for i := range before {
		seen[before[i].Fingerprint()]++
	}
	for i := range after {
		fp := after[i].Fingerprint()
		if seen[fp] > 0 {
			seen[fp]--
			continue
		}
		added = append(added, after[i])
	}

	remaining := make(map[uint64]int, len(after))
	for i := range after {
		remaining[after[i].Fingerprint()]++
	}
	for i := range before {
		fp := before[i].Fingerprint()
		if remaining[fp] > 0 {
			remaining[fp]--
			continue
		}
		resolved = append(resolved, before[i])
	}

	byLine := func(issues []models.Issue) {
		sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	}
	byLine(added)
	byLine(resolved)
	return added, resolved
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedFiles returns the list of watched directories.
func (w *Watcher) WatchedFiles() []string {
	return w.fsWatcher.WatchList()
}
