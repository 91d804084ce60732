package analyzer

import (
	"context"

	"github.com/panbanda/revue/internal/fileproc"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/parser"
	"github.com/panbanda/revue/pkg/source"
	"github.com/panbanda/revue/pkg/stats"
)

// Report is the analysis of a batch of files in input order.
type Report struct {
	Files   []FileResult `json:"files" toon:"files"`
	Skipped []Skipped    `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Summary Summary      `json:"summary" toon:"summary"`
}

// Skipped is a file that could not be read or was over the size limit.
type Skipped struct {
	Path   string `json:"path" toon:"path"`
	Reason string `json:"reason" toon:"reason"`
}

// Summary aggregates a batch.
type Summary struct {
	Files        int                `json:"files" toon:"files"`
	ParseFailed  int                `json:"parse_failed" toon:"parse_failed"`
	Errors       int                `json:"errors" toon:"errors"`
	Suggestions  int                `json:"suggestions" toon:"suggestions"`
	BySeverity   map[string]int     `json:"by_severity" toon:"by_severity"`
	ByCategory   map[string]int     `json:"by_category" toon:"by_category"`
	Methods      int                `json:"methods" toon:"methods"`
	Complexity   stats.Distribution `json:"complexity" toon:"complexity"`
	MethodLength stats.Distribution `json:"method_length" toon:"method_length"`
}

// AnalyzeFiles analyzes files from disk in parallel.
// Progress is tracked via context using fileproc.WithTracker.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []string) (*Report, error) {
	return a.AnalyzeSources(ctx, files, source.NewFilesystem())
}

// AnalyzeSources analyzes files read through src in parallel, one parser per
// worker. Unreadable files are listed as skipped. The only error is the
// context's, returned alongside whatever finished before cancellation.
func (a *Analyzer) AnalyzeSources(ctx context.Context, files []string, src source.ContentSource) (*Report, error) {
	opts := fileproc.Options{Workers: a.workers, MaxFileSize: a.maxFileSize}
	results, _ := fileproc.MapFiles(ctx, files, src, opts, func(psr *parser.Parser, path string, content []byte) (*FileResult, error) {
		return a.analyzeWith(psr, content, path), nil
	})

	analyzed := make([]FileResult, 0, len(results))
	var skipped []Skipped
	for _, r := range results {
		if r.Err != nil {
			skipped = append(skipped, Skipped{Path: r.Path, Reason: r.Err.Error()})
			continue
		}
		analyzed = append(analyzed, *r.Value)
	}
	report := NewReport(analyzed, skipped)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// NewReport assembles a report and computes its summary.
func NewReport(files []FileResult, skipped []Skipped) *Report {
	if files == nil {
		files = []FileResult{}
	}
	return &Report{Files: files, Skipped: skipped, Summary: summarize(files)}
}

func summarize(files []FileResult) Summary {
	s := Summary{
		Files:      len(files),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	var complexity, length []float64
	for _, f := range files {
		if f.Result.Failed() {
			s.ParseFailed++
		}
		s.Errors += len(f.Result.Errors)
		s.Suggestions += len(f.Result.Suggestions)
		for sev, n := range f.Result.CountBySeverity() {
			s.BySeverity[string(sev)] += n
		}
		for _, issue := range f.Result.Errors {
			s.ByCategory[string(issue.Category)]++
		}
		for _, issue := range f.Result.Suggestions {
			if issue.Category == models.CategoryMagicNumber || issue.Category == models.CategoryComplexityInfo {
				s.ByCategory[string(issue.Category)]++
			}
		}
		for _, m := range f.Methods {
			complexity = append(complexity, float64(m.Complexity))
			length = append(length, float64(m.Length))
		}
	}
	s.Methods = len(complexity)
	s.Complexity = stats.Describe(complexity)
	s.MethodLength = stats.Describe(length)
	return s
}
