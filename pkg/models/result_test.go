package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleResult() *AnalysisResult {
	r := NewAnalysisResult()

	long := NewIssue(2, "m: Long method (12 lines)", CategoryLongMethod, KindError, SeverityWarning)
	long.Value, long.Symbol = 12, "m"
	r.Add(long)

	info := NewIssue(2, "m: Cyclomatic complexity: 3", CategoryComplexityInfo, KindSuggestion, SeverityInfo)
	info.Value, info.Symbol = 3, "m"
	r.Add(info)

	high := NewIssue(9, "n: Consider refactoring to reduce complexity. Current complexity: 7", CategoryHighComplexity, KindSuggestion, SeverityInfo)
	high.Value, high.Symbol = 7, "n"
	r.Add(high)

	r.Add(NewIssue(4, "Poor variable name found: 'x'", CategoryPoorName, KindError, SeverityWarning))
	return r
}

func TestAnalysisResult_Add(t *testing.T) {
	r := sampleResult()
	assert.Len(t, r.Errors, 2)
	assert.Len(t, r.Suggestions, 2)
	assert.Equal(t, 4, r.Total())
	assert.False(t, r.Failed())
}

func TestAnalysisResult_All(t *testing.T) {
	all := sampleResult().All()
	var cats []Category
	for _, i := range all {
		cats = append(cats, i.Category)
	}
	assert.Equal(t, []Category{CategoryLongMethod, CategoryPoorName, CategoryComplexityInfo, CategoryHighComplexity}, cats)
}

func TestAnalysisResult_Complexity(t *testing.T) {
	assert.Equal(t, map[string]int{"m": 3, "n": 7}, sampleResult().Complexity())
	assert.Empty(t, NewAnalysisResult().Complexity())
}

func TestAnalysisResult_CountBySeverity(t *testing.T) {
	counts := sampleResult().CountBySeverity()
	assert.Equal(t, 2, counts[SeverityWarning])
	assert.Equal(t, 2, counts[SeverityInfo])
	assert.Zero(t, counts[SeverityCritical])
}

func TestAnalysisResult_Failed(t *testing.T) {
	r := NewAnalysisResult()
	r.Add(NewIssue(0, "Error parsing code.", CategoryParseError, KindError, SeverityCritical))
	assert.True(t, r.Failed())
	assert.Len(t, r.ByCategory(CategoryParseError), 1)
}
