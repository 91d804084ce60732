package report

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/models"
)

// Build turns a batch report into per-file reports, worst files first.
func Build(rep *analyzer.Report, meta Metadata) *Report {
	out := &Report{
		Metadata: meta,
		Summary:  rep.Summary,
		Files:    make([]FileReport, 0, len(rep.Files)),
		Skipped:  rep.Skipped,
	}
	for _, fr := range rep.Files {
		out.Files = append(out.Files, buildFile(fr))
	}
	sort.SliceStable(out.Files, func(i, j int) bool {
		if out.Files[i].Errors != out.Files[j].Errors {
			return out.Files[i].Errors > out.Files[j].Errors
		}
		return out.Files[i].Path < out.Files[j].Path
	})
	return out
}

func buildFile(fr analyzer.FileResult) FileReport {
	issues := fr.Result.All()
	f := FileReport{
		Path:        fr.Path,
		Errors:      len(fr.Result.Errors),
		Suggestions: len(fr.Result.Suggestions),
		Failed:      fr.Result.Failed(),
		Issues:      issues,
	}

	lines := roaring.New()
	for i := range issues {
		if issues[i].Line > 0 && issues[i].Category != models.CategoryComplexityInfo {
			lines.Add(uint32(issues[i].Line))
		}
		if issues[i].HasQuickFixes() {
			f.Fixable++
		}
	}
	f.Flagged = int(lines.GetCardinality())
	f.Hot = Ranges(lines)

	for _, m := range fr.Methods {
		if m.Complexity > f.MaxCC {
			f.MaxCC = m.Complexity
		}
	}
	return f
}

// Ranges collapses a bitmap of line numbers into consecutive runs.
func Ranges(lines *roaring.Bitmap) []LineRange {
	var out []LineRange
	it := lines.Iterator()
	for it.HasNext() {
		line := int(it.Next())
		if n := len(out); n > 0 && out[n-1].End == line-1 {
			out[n-1].End = line
			continue
		}
		out = append(out, LineRange{Start: line, End: line})
	}
	return out
}
