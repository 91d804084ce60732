// Package report assembles analysis results into a per-file report that can
// be printed through the output formatter or rendered to HTML.
package report

import (
	"time"

	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/models"
)

// Metadata describes one report run.
type Metadata struct {
	GeneratedAt time.Time           `json:"generated_at" toon:"generated_at"`
	Version     string              `json:"version" toon:"version"`
	Paths       []string            `json:"paths" toon:"paths"`
	Ref         string              `json:"ref,omitempty" toon:"ref,omitempty"`
	Thresholds  analyzer.Thresholds `json:"thresholds" toon:"thresholds"`
	CacheHits   int                 `json:"cache_hits,omitempty" toon:"cache_hits,omitempty"`
}

// LineRange is an inclusive run of flagged lines.
type LineRange struct {
	Start int `json:"start" toon:"start"`
	End   int `json:"end" toon:"end"`
}

// FileReport is the report for one file.
type FileReport struct {
	Path        string         `json:"path" toon:"path"`
	Errors      int            `json:"errors" toon:"errors"`
	Suggestions int            `json:"suggestions" toon:"suggestions"`
	Failed      bool           `json:"failed,omitempty" toon:"failed,omitempty"`
	Flagged     int            `json:"flagged_lines" toon:"flagged_lines"`
	Hot         []LineRange    `json:"hot_ranges,omitempty" toon:"hot_ranges,omitempty"`
	MaxCC       int            `json:"max_complexity" toon:"max_complexity"`
	Issues      []models.Issue `json:"issues" toon:"issues"`
	Fixable     int            `json:"fixable,omitempty" toon:"fixable,omitempty"`
}

// HasFindings reports whether the file has an issue other than the
// informational complexity notes every method receives.
func (f FileReport) HasFindings() bool {
	for _, issue := range f.Issues {
		if issue.Category != models.CategoryComplexityInfo {
			return true
		}
	}
	return false
}

// Report is a full analysis report.
type Report struct {
	Metadata Metadata           `json:"metadata" toon:"metadata"`
	Summary  analyzer.Summary   `json:"summary" toon:"summary"`
	Files    []FileReport       `json:"files" toon:"files"`
	Skipped  []analyzer.Skipped `json:"skipped,omitempty" toon:"skipped,omitempty"`
}
