package vcs

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

func commitFile(t *testing.T, repo *git.Repository, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(name)
	require.NoError(t, err)
	_, err = w.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	return repo, root
}

func TestOpen_DetectsParent(t *testing.T) {
	_, root := initRepo(t)
	sub := filepath.Join(root, "src", "main")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := Open(sub)
	require.NoError(t, err)

	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(r.Root())
	assert.Equal(t, wantRoot, gotRoot)
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

func TestTree_FileAtRevision(t *testing.T) {
	repo, root := initRepo(t)
	commitFile(t, repo, root, "src/A.java", "class A { int v = 1; }")
	commitFile(t, repo, root, "src/A.java", "class A { int v = 2; }")
	commitFile(t, repo, root, "README.md", "# readme")

	r, err := Open(root)
	require.NoError(t, err)

	head, err := r.Tree("HEAD")
	require.NoError(t, err)
	content, err := head.File("src/A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A { int v = 2; }", string(content))

	prev, err := r.Tree("HEAD~2")
	require.NoError(t, err)
	content, err = prev.File("src/A.java")
	require.NoError(t, err)
	assert.Equal(t, "class A { int v = 1; }", string(content))
	assert.NotEqual(t, head.Hash, prev.Hash)

	files, err := head.JavaFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/A.java"}, files)

	_, err = head.File("src/Missing.java")
	assert.Error(t, err)

	_, err = r.Tree("no-such-branch")
	assert.Error(t, err)
}

func TestRelPath(t *testing.T) {
	_, root := initRepo(t)
	r, err := Open(root)
	require.NoError(t, err)

	rel, err := r.RelPath(filepath.Join(r.Root(), "src", "A.java"))
	require.NoError(t, err)
	assert.Equal(t, "src/A.java", rel)

	_, err = r.RelPath(filepath.Join(r.Root(), "..", "elsewhere.java"))
	assert.True(t, errors.Is(err, ErrOutsideRepo))
}
