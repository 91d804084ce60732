package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	content, err := src.Read("../../go.mod")
	require.NoError(t, err)
	assert.Contains(t, string(content), "module github.com/panbanda/revue")

	_, err = src.Read("nonexistent.txt")
	assert.Error(t, err)
}

func TestMemorySource(t *testing.T) {
	src := MemorySource{"A.java": []byte("class A {}")}

	content, err := src.Read("A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content))

	_, err = src.Read("B.java")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGitSource(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	path := filepath.Join(root, "src", "A.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0o644))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("src/A.java")
	require.NoError(t, err)
	_, err = w.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// The working copy moves on; the source stays pinned.
	require.NoError(t, os.WriteFile(path, []byte("class A { int x; }"), 0o644))

	src, err := NewGit(root, "HEAD")
	require.NoError(t, err)
	assert.Len(t, src.Revision(), 40)

	files, err := src.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/A.java"}, files)

	content, err := src.Read("src/A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content))

	content, err = src.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content))
}
