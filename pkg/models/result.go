package models

// AnalysisResult aggregates the issues of one analysis run in discovery order.
type AnalysisResult struct {
	Errors      []Issue `json:"errors" toon:"errors"`
	Suggestions []Issue `json:"suggestions" toon:"suggestions"`
}

// NewAnalysisResult returns an empty result.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Errors:      make([]Issue, 0),
		Suggestions: make([]Issue, 0),
	}
}

// Add appends the issue to the list matching its kind.
func (r *AnalysisResult) Add(issue Issue) {
	if issue.Kind == KindSuggestion {
		r.Suggestions = append(r.Suggestions, issue)
		return
	}
	r.Errors = append(r.Errors, issue)
}

// Total returns the combined number of errors and suggestions.
func (r *AnalysisResult) Total() int {
	return len(r.Errors) + len(r.Suggestions)
}

// Failed reports whether the run ended in a single critical parse or analysis failure.
func (r *AnalysisResult) Failed() bool {
	return len(r.Errors) == 1 && len(r.Suggestions) == 0 &&
		r.Errors[0].Category == CategoryParseError
}

// All returns errors followed by suggestions.
func (r *AnalysisResult) All() []Issue {
	all := make([]Issue, 0, r.Total())
	all = append(all, r.Errors...)
	all = append(all, r.Suggestions...)
	return all
}

// ByCategory returns all issues of the given category, errors first.
func (r *AnalysisResult) ByCategory(c Category) []Issue {
	var out []Issue
	for _, list := range [][]Issue{r.Errors, r.Suggestions} {
		for _, issue := range list {
			if issue.Category == c {
				out = append(out, issue)
			}
		}
	}
	return out
}

// CountBySeverity tallies issues per severity.
func (r *AnalysisResult) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, list := range [][]Issue{r.Errors, r.Suggestions} {
		for _, issue := range list {
			counts[issue.Severity]++
		}
	}
	return counts
}

// Complexity maps method names to their cyclomatic complexity.
// Values come from the typed payload of complexity findings.
func (r *AnalysisResult) Complexity() map[string]int {
	out := make(map[string]int)
	for _, issue := range r.Suggestions {
		switch issue.Category {
		case CategoryComplexityInfo, CategoryHighComplexity:
			if issue.Symbol != "" {
				out[issue.Symbol] = issue.Value
			}
		}
	}
	return out
}
