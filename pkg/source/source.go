// Package source abstracts where Java file content comes from: disk, memory or git.
package source

import (
	"fmt"
	"os"

	"github.com/panbanda/revue/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MemorySource serves content held in memory, keyed by path.
type MemorySource map[string][]byte

// Read implements ContentSource.
func (m MemorySource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return content, nil
}

// GitSource reads files as they were at a fixed revision. Paths may be given
// relative to the working directory or to the repository root.
type GitSource struct {
	repo *vcs.Repo
	tree *vcs.Tree
}

// NewGit opens the repository containing dir and pins it to rev.
func NewGit(dir, rev string) (*GitSource, error) {
	repo, err := vcs.Open(dir)
	if err != nil {
		return nil, err
	}
	tree, err := repo.Tree(rev)
	if err != nil {
		return nil, err
	}
	return &GitSource{repo: repo, tree: tree}, nil
}

// Revision returns the commit hash the source is pinned to.
func (g *GitSource) Revision() string {
	return g.tree.Hash
}

// Files lists every Java file in the pinned revision, relative to the repository root.
func (g *GitSource) Files() ([]string, error) {
	return g.tree.JavaFiles()
}

// Read implements ContentSource.
func (g *GitSource) Read(path string) ([]byte, error) {
	if content, err := g.tree.File(path); err == nil {
		return content, nil
	}
	rel, err := g.repo.RelPath(path)
	if err != nil {
		return nil, err
	}
	return g.tree.File(rel)
}
