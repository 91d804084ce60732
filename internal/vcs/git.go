// Package vcs reads Java sources out of git history with go-git.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrOutsideRepo is returned for paths that do not live under the worktree.
var ErrOutsideRepo = errors.New("path is outside the repository")

// Repo is an opened git repository.
type Repo struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, searching parent directories.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root directory.
func (r *Repo) Root() string {
	return r.root
}

// RelPath converts a filesystem path into the slash-separated form used in trees.
func (r *Repo) RelPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRepo)
	}
	return filepath.ToSlash(rel), nil
}

// Tree resolves a revision such as "HEAD", "main~2" or a commit hash.
func (r *Repo) Tree(rev string) (*Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree for %s: %w", hash, err)
	}
	return &Tree{tree: tree, Hash: hash.String()}, nil
}

// Tree is a snapshot of the repository at one commit.
// It is safe for concurrent use.
type Tree struct {
	Hash string

	tree *object.Tree
	mu   sync.Mutex
}

// File returns the content of the file at a slash-separated path.
func (t *Tree) File(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []byte(contents), nil
}

// JavaFiles lists every .java file in the snapshot, sorted.
func (t *Tree) JavaFiles() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var files []string
	err := t.tree.Files().ForEach(func(f *object.File) error {
		if strings.EqualFold(filepath.Ext(f.Name), ".java") {
			files = append(files, f.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
