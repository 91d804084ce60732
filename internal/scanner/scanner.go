// Package scanner finds the Java sources to analyze.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/revue/pkg/config"
	"github.com/panbanda/revue/pkg/parser"
)

// Scanner finds Java files, honoring the configured exclusions and, when
// enabled, the .gitignore files of the enclosing repository.
type Scanner struct {
	config *config.Config
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// excluder matches paths relative to two bases: the scan root for configured
// patterns and the repository root for .gitignore patterns.
type excluder struct {
	root    string
	rules   gitignore.Matcher
	gitRoot string
	ignored gitignore.Matcher
}

func (s *Scanner) excluder(root string) *excluder {
	ex := &excluder{root: root}

	var patterns []gitignore.Pattern
	for _, p := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, d := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(d, "/")+"/", nil))
	}
	if len(patterns) > 0 {
		ex.rules = gitignore.NewMatcher(patterns)
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			if ps, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(ps) > 0 {
				ex.gitRoot = gitRoot
				ex.ignored = gitignore.NewMatcher(ps)
			}
		}
	}
	return ex
}

func (ex *excluder) excluded(path string, isDir bool) bool {
	if ex.rules != nil {
		if rel, ok := relParts(ex.root, path); ok && ex.rules.Match(rel, isDir) {
			return true
		}
	}
	if ex.ignored != nil {
		if rel, ok := relParts(ex.gitRoot, path); ok && ex.ignored.Match(rel, isDir) {
			return true
		}
	}
	return false
}

func relParts(base, path string) ([]string, bool) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil, false
	}
	return strings.Split(filepath.ToSlash(rel), "/"), true
}

// findGitRoot walks up from start to the directory holding .git.
func findGitRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ScanDir recursively collects the Java files under root. Symlinks that
// leave root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	ex := s.excluder(root)
	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}
		if d.IsDir() {
			if path != root && ex.excluded(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if parser.IsJava(path) && !ex.excluded(path, false) {
			files = append(files, path)
		}
		return nil
	})
	return files, walkErr
}

// Scan resolves each argument: directories are scanned, Java files are kept
// unless excluded. The result is sorted and free of duplicates.
func (s *Scanner) Scan(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			files, err := s.ScanDir(p)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
			continue
		}
		if ok, _ := s.ScanFile(p); ok {
			add(p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ScanFile reports whether a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() || !parser.IsJava(path) {
		return false, nil
	}
	ex := s.excluder(filepath.Dir(path))
	return !ex.excluded(path, false), nil
}

func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// FilterBySize drops files larger than maxSize and returns them separately.
// A maxSize of zero keeps everything.
func FilterBySize(files []string, maxSize int64) (kept, skipped []string) {
	if maxSize <= 0 {
		return files, nil
	}
	kept = make([]string, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped = append(skipped, f)
			continue
		}
		kept = append(kept, f)
	}
	return kept, skipped
}
