// Package quickfix provides text transformations that resolve analysis issues.
//
// Every fix is a pure function of an issue's SourceText and LineContent: it
// re-validates its line pattern, rewrites the whole file and reports what it
// did. Fixes keep no state; undo and redo live in History.
package quickfix

import (
	"errors"
	"fmt"

	"github.com/panbanda/revue/pkg/analyzer/metrics"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/parser"
)

// Registry maps issue categories to the fixes that can resolve them.
type Registry struct {
	fixes map[models.Category][]models.QuickFix
}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	deny metrics.Denylist
}

// WithDenylist sets the names the rename advisor treats as poor.
// It should match the analyzer's denylist.
func WithDenylist(d metrics.Denylist) Option {
	return func(c *registryConfig) {
		c.deny = d
	}
}

// NewRegistry returns a registry with the built-in fixes registered.
func NewRegistry(opts ...Option) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.deny == nil {
		cfg.deny = metrics.NewDenylist(nil)
	}

	r := &Registry{fixes: make(map[models.Category][]models.QuickFix)}
	r.Register(models.CategoryUnusedImport, ImportRemover{})
	r.Register(models.CategoryMagicNumber, ConstantExtractor{})
	r.Register(models.CategoryLongMethod, SplitAdvisor{})
	r.Register(models.CategoryEmptyCatch, CatchLogger{})
	r.Register(models.CategoryPoorName, RenameAdvisor{Deny: cfg.deny})
	return r
}

// Register adds a fix for a category. Fixes are offered in registration order.
func (r *Registry) Register(category models.Category, fix models.QuickFix) {
	r.fixes[category] = append(r.fixes[category], fix)
}

// Lookup returns the fixes registered for a category.
func (r *Registry) Lookup(category models.Category) []models.QuickFix {
	return r.fixes[category]
}

// Eligible reports whether an issue may carry quick fixes: every error, plus
// magic-number suggestions.
func Eligible(issue *models.Issue) bool {
	if issue.Kind == models.KindError {
		return true
	}
	return issue.Category == models.CategoryMagicNumber
}

// Attach populates SourceText, LineContent and QuickFixes on every eligible
// issue of result. Fixes whose precondition does not hold on the issue's line
// are not attached. It returns the number of fixes attached.
func (r *Registry) Attach(result *models.AnalysisResult, source string) int {
	attached := 0
	for _, list := range [][]models.Issue{result.Errors, result.Suggestions} {
		for i := range list {
			issue := &list[i]
			if !Eligible(issue) {
				continue
			}
			issue.SourceText = source
			issue.LineContent = parser.LineAt(source, issue.Line)
			issue.QuickFixes = nil
			for _, fix := range r.Lookup(issue.Category) {
				if fix.CanApply(issue) {
					issue.AddQuickFix(fix)
					attached++
				}
			}
		}
	}
	return attached
}

// ApplyFix runs fix against issue. The issue must carry its source text and
// line content; a fix whose precondition fails is rejected with
// models.ErrNotApplicable and no text is produced.
func ApplyFix(issue *models.Issue, fix models.QuickFix) (models.FixResult, error) {
	if issue == nil || fix == nil {
		return models.FixResult{}, fmt.Errorf("apply fix: %w", models.ErrNotApplicable)
	}
	if issue.SourceText == "" || issue.LineContent == "" {
		return models.FixResult{}, fmt.Errorf("%s: %w", fix.Title(), models.ErrMissingSource)
	}
	if !fix.CanApply(issue) {
		return models.FixResult{}, rejected(fix.Title(), "line %d does not match", issue.Line)
	}
	return fix.Apply(issue)
}

// ErrNoIssue is returned by Select when no fixable issue matches.
var ErrNoIssue = errors.New("no fixable issue matches")

// Select finds an issue at line that carries a fix. An empty category
// matches any category and an empty title picks the issue's first fix.
// The returned issue aliases result.
func Select(result *models.AnalysisResult, line int, category models.Category, title string) (*models.Issue, models.QuickFix, error) {
	for _, list := range [][]models.Issue{result.Errors, result.Suggestions} {
		for i := range list {
			issue := &list[i]
			if issue.Line != line || !issue.HasQuickFixes() {
				continue
			}
			if category != "" && issue.Category != category {
				continue
			}
			if title == "" {
				return issue, issue.QuickFixes[0], nil
			}
			if fix := Find(issue, title); fix != nil {
				return issue, fix, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("line %d: %w", line, ErrNoIssue)
}

// Find returns the fix attached to issue whose title matches, or nil.
func Find(issue *models.Issue, title string) models.QuickFix {
	for _, fix := range issue.QuickFixes {
		if fix.Title() == title {
			return fix
		}
	}
	return nil
}

func rejected(title, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", title, fmt.Sprintf(format, args...), models.ErrNotApplicable)
}
