package analyzer

import (
	"fmt"

	"github.com/panbanda/revue/pkg/analyzer/metrics"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/parser"
	"github.com/rs/zerolog"
)

// checkMethod appends the method's findings in fixed order: length, nesting,
// empty body, complexity, empty catch, poor names.
func (a *Analyzer) checkMethod(result *models.AnalysisResult, parsed *parser.ParseResult, m parser.MethodNode, log zerolog.Logger) metrics.MethodMetrics {
	mm := metrics.Measure(m)
	name := m.Name
	line := m.StartLine

	log.Debug().
		Str("method", name).
		Int("start_line", line).
		Int("length", mm.Length).
		Int("nesting", mm.Nesting).
		Int("complexity", mm.Complexity).
		Msg("method measured")

	pair := func(category models.Category, value int, errMsg, hint string) {
		issue := models.NewIssue(line, fmt.Sprintf("%s: %s", name, errMsg), category, models.KindError, models.SeverityWarning)
		issue.Value, issue.Symbol = value, name
		result.Add(issue)

		note := models.NewIssue(line, fmt.Sprintf("%s: %s", name, hint), category, models.KindSuggestion, models.SeverityInfo)
		note.Value, note.Symbol = value, name
		result.Add(note)
	}

	if mm.Length > a.thresholds.MethodLength {
		pair(models.CategoryLongMethod, mm.Length,
			fmt.Sprintf("Long method (%d lines)", mm.Length),
			"Consider refactoring into smaller methods for maintainability.")
	}
	if mm.Nesting > a.thresholds.Nesting {
		pair(models.CategoryDeepNesting, mm.Nesting,
			fmt.Sprintf("Deep nesting (%d)", mm.Nesting),
			"Try to reduce nesting by extracting logic or using guard clauses.")
	}
	if mm.EmptyBody {
		pair(models.CategoryEmptyBody, 0,
			"Empty method body",
			"Remove or implement this method.")
	}
	if mm.Complexity > a.thresholds.Complexity {
		pair(models.CategoryHighComplexity, mm.Complexity,
			fmt.Sprintf("High cyclomatic complexity (%d)", mm.Complexity),
			fmt.Sprintf("Consider refactoring to reduce complexity. Current complexity: %d", mm.Complexity))
	} else {
		info := models.NewIssue(line, fmt.Sprintf("%s: Cyclomatic complexity: %d", name, mm.Complexity),
			models.CategoryComplexityInfo, models.KindSuggestion, models.SeverityInfo)
		info.Value, info.Symbol = mm.Complexity, name
		result.Add(info)
	}

	for _, c := range metrics.EmptyCatches(m.Body) {
		issue := models.NewIssue(c.Line, "Empty catch block found in "+name,
			models.CategoryEmptyCatch, models.KindError, models.SeverityWarning)
		issue.Symbol = name
		result.Add(issue)
	}

	for _, f := range metrics.PoorNames(m.Body, parsed.Source, a.deny) {
		issue := models.NewIssue(f.Line, fmt.Sprintf("Poor variable name found: '%s'", f.Name),
			models.CategoryPoorName, models.KindError, models.SeverityWarning)
		issue.Symbol = f.Name
		result.Add(issue)
	}

	return mm
}

// checkImports appends one aggregate finding for all unused imports, anchored
// on the first unused import so the removal fix can target that line.
func (a *Analyzer) checkImports(result *models.AnalysisResult, parsed *parser.ParseResult, log zerolog.Logger) {
	unused := metrics.UnusedImports(parsed)
	if len(unused) == 0 {
		return
	}
	for _, imp := range unused {
		log.Debug().Str("import", imp.Name).Int("line", imp.Line).Msg("unused import")
	}

	first := unused[0]
	issue := models.NewIssue(first.Line, fmt.Sprintf("Unused imports detected: %d", len(unused)),
		models.CategoryUnusedImport, models.KindError, models.SeverityInfo)
	issue.Value, issue.Symbol = len(unused), first.Name
	result.Add(issue)

	note := models.NewIssue(first.Line, "Remove unused imports to keep code clean.",
		models.CategoryUnusedImport, models.KindSuggestion, models.SeverityInfo)
	note.Value, note.Symbol = len(unused), first.Name
	result.Add(note)
}

func (a *Analyzer) checkMagicNumbers(result *models.AnalysisResult, parsed *parser.ParseResult) {
	for _, n := range metrics.MagicNumbers(parsed) {
		issue := models.NewIssue(n.Line,
			fmt.Sprintf("Magic number found: %s. Consider refactoring into a named constant for better readability.", n.Display),
			models.CategoryMagicNumber, models.KindSuggestion, models.SeverityInfo)
		issue.Symbol = n.Literal
		result.Add(issue)
	}
}
