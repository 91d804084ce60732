package quickfix

import (
	"testing"

	"github.com/panbanda/revue/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_UndoRedo(t *testing.T) {
	h := NewHistory()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	h.Record("v0", "v1", "first")
	h.Record("v1", "v2", "second")
	assert.Equal(t, "second", h.UndoDescription())

	text, change, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, "v1", text)
	assert.Equal(t, "second", change.Description)
	assert.True(t, h.CanRedo())
	assert.Equal(t, "second", h.RedoDescription())

	text, _, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, "v0", text)

	_, _, err = h.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	text, _, err = h.Redo()
	require.NoError(t, err)
	assert.Equal(t, "v1", text)
	assert.Equal(t, "first", h.UndoDescription())
}

func TestHistory_RecordClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Record("a", "b", "one")
	_, _, err := h.Undo()
	require.NoError(t, err)
	require.True(t, h.CanRedo())

	h.Record("a", "c", "two")
	assert.False(t, h.CanRedo())
	assert.Equal(t, "", h.RedoDescription())
	_, _, err = h.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestHistory_Apply(t *testing.T) {
	src := "import a.A;\nimport b.B;\nclass T { A a; }"
	issue := issueAt(src, 2, models.CategoryUnusedImport, "b.B")

	h := NewHistory()
	res, err := h.Apply(issue, ImportRemover{})
	require.NoError(t, err)
	assert.Equal(t, "import a.A;\nclass T { A a; }", res.Source)
	assert.Equal(t, "Remove unused import: import b.B;", h.UndoDescription())

	restored, _, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, src, restored)

	bad := issueAt(src, 3, models.CategoryUnusedImport, "")
	_, err = h.Apply(bad, ImportRemover{})
	assert.ErrorIs(t, err, models.ErrNotApplicable)
	assert.False(t, h.CanUndo(), "rejected fixes are not recorded")
}
