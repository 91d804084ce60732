package quickfix

import (
	"regexp"
	"strings"

	"github.com/panbanda/revue/pkg/models"
)

var importPattern = regexp.MustCompile(`^\s*import\s+([\w.]+)\s*;\s*$`)

// ImportRemover deletes a single-line import statement.
type ImportRemover struct{}

func (ImportRemover) Title() string { return "Remove Unused Import" }

func (ImportRemover) Description() string {
	return "Removes the unused import statement from the code."
}

// CanApply requires the issue line to be exactly one non-static import.
func (ImportRemover) CanApply(issue *models.Issue) bool {
	return importPattern.MatchString(issue.LineContent)
}

// Apply removes the import line. The blank lines that meet at the removal
// point collapse to one; blank runs elsewhere in the file are left alone.
func (f ImportRemover) Apply(issue *models.Issue) (models.FixResult, error) {
	if !f.CanApply(issue) {
		return models.FixResult{}, rejected(f.Title(), "not a single import: %q", issue.LineContent)
	}
	lines, idx, err := target(issue, f.Title())
	if err != nil {
		return models.FixResult{}, err
	}
	removed := lines[idx]
	if !importPattern.MatchString(removed) {
		return models.FixResult{}, rejected(f.Title(), "line %d is not an import", issue.Line)
	}

	kept := make([]string, 0, len(lines)-1)
	kept = append(kept, lines[:idx]...)
	kept = append(kept, lines[idx+1:]...)
	kept = collapseBlanksAt(kept, idx)

	return models.FixResult{
		Source:      strings.Join(kept, "\n"),
		Description: "Remove unused import: " + strings.TrimSpace(removed),
	}, nil
}

// collapseBlanksAt reduces the run of blank lines touching index at to a
// single blank line.
func collapseBlanksAt(lines []string, at int) []string {
	start, end := at, at
	for start > 0 && strings.TrimSpace(lines[start-1]) == "" {
		start--
	}
	for end < len(lines) && strings.TrimSpace(lines[end]) == "" {
		end++
	}
	if end-start <= 1 {
		return lines
	}
	return append(lines[:start+1], lines[end:]...)
}
