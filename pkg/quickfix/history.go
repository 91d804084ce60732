package quickfix

import (
	"errors"
	"sync"

	"github.com/panbanda/revue/pkg/models"
)

var (
	// ErrNothingToUndo is returned by Undo on an empty undo stack.
	ErrNothingToUndo = errors.New("no changes to undo")
	// ErrNothingToRedo is returned by Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("no changes to redo")
)

// Change is one applied fix as a pair of whole-file snapshots.
type Change struct {
	Before      string `json:"before"`
	After       string `json:"after"`
	Description string `json:"description"`
}

// History is a linear undo/redo log of applied fixes for one document.
// It is safe for concurrent use.
type History struct {
	mu   sync.Mutex
	undo []Change
	redo []Change
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Record pushes a change and clears the redo stack.
func (h *History) Record(before, after, description string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, Change{Before: before, After: after, Description: description})
	h.redo = nil
}

// Undo pops the last change and returns the text to restore.
func (h *History) Undo() (string, Change, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return "", Change{}, ErrNothingToUndo
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)
	return c.Before, c, nil
}

// Redo reapplies the last undone change and returns the resulting text.
func (h *History) Redo() (string, Change, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return "", Change{}, ErrNothingToRedo
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)
	return c.After, c, nil
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// UndoDescription describes the change Undo would revert, or "".
func (h *History) UndoDescription() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Description
}

// RedoDescription describes the change Redo would reapply, or "".
func (h *History) RedoDescription() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].Description
}

// Apply runs fix through ApplyFix and records the change on success.
func (h *History) Apply(issue *models.Issue, fix models.QuickFix) (models.FixResult, error) {
	res, err := ApplyFix(issue, fix)
	if err != nil {
		return res, err
	}
	h.Record(issue.SourceText, res.Source, res.Description)
	return res, nil
}
