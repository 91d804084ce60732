package models

import (
	"errors"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Category identifies which check produced an issue.
type Category string

const (
	CategoryLongMethod     Category = "long_method"
	CategoryDeepNesting    Category = "deep_nesting"
	CategoryEmptyBody      Category = "empty_body"
	CategoryHighComplexity Category = "high_complexity"
	CategoryComplexityInfo Category = "complexity_info"
	CategoryEmptyCatch     Category = "empty_catch"
	CategoryPoorName       Category = "poor_name"
	CategoryUnusedImport   Category = "unused_import"
	CategoryMagicNumber    Category = "magic_number"
	CategoryParseError     Category = "parse_error"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryLongMethod,
	CategoryDeepNesting,
	CategoryEmptyBody,
	CategoryHighComplexity,
	CategoryComplexityInfo,
	CategoryEmptyCatch,
	CategoryPoorName,
	CategoryUnusedImport,
	CategoryMagicNumber,
	CategoryParseError,
}

// ParseCategory converts a string to a Category.
// Returns false if the string does not name a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Kind separates flagged defects from advisory notes.
type Kind string

const (
	KindError      Kind = "error"
	KindSuggestion Kind = "suggestion"
)

// Severity drives coloring and quick-fix eligibility. It is independent of Kind.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue is one detected problem.
type Issue struct {
	Line     int      `json:"line" toon:"line"`
	Message  string   `json:"message" toon:"message"`
	Category Category `json:"category" toon:"category"`
	Kind     Kind     `json:"kind" toon:"kind"`
	Severity Severity `json:"severity" toon:"severity"`
	// Value is the measured quantity behind the issue: method length, nesting
	// depth, cyclomatic complexity or unused import count. Zero when not applicable.
	Value int `json:"value,omitempty" toon:"value,omitempty"`
	// Symbol names what the issue is about: a method, a variable or a literal.
	Symbol string `json:"symbol,omitempty" toon:"symbol,omitempty"`

	SourceText  string `json:"-" toon:"-"`
	LineContent string `json:"-" toon:"-"`

	QuickFixes []QuickFix `json:"-" toon:"-"`
}

// NewIssue creates an issue with no quick fixes attached.
func NewIssue(line int, message string, category Category, kind Kind, severity Severity) Issue {
	if line < 0 {
		line = 0
	}
	return Issue{
		Line:     line,
		Message:  message,
		Category: category,
		Kind:     kind,
		Severity: severity,
	}
}

// HasQuickFixes reports whether any quick fix is attached.
func (i *Issue) HasQuickFixes() bool {
	return len(i.QuickFixes) > 0
}

// AddQuickFix appends a fix to the issue.
func (i *Issue) AddQuickFix(fix QuickFix) {
	i.QuickFixes = append(i.QuickFixes, fix)
}

// Fingerprint returns a stable hash identifying the issue across runs of identical input.
func (i *Issue) Fingerprint() uint64 {
	d := xxhash.New()
	d.WriteString(string(i.Category))
	d.WriteString("\x00")
	d.WriteString(strconv.Itoa(i.Line))
	d.WriteString("\x00")
	d.WriteString(i.Symbol)
	d.WriteString("\x00")
	d.WriteString(i.Message)
	return d.Sum64()
}

// FixResult is the outcome of applying a quick fix.
type FixResult struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

// QuickFix is a named text transformation that resolves an issue.
// Implementations are stateless and shared across issues.
type QuickFix interface {
	Title() string
	Description() string
	// CanApply re-validates the fix precondition against the issue's LineContent.
	CanApply(issue *Issue) bool
	// Apply returns the rewritten source. It never mutates the issue and returns
	// ErrNotApplicable when CanApply would return false.
	Apply(issue *Issue) (FixResult, error)
}

var (
	// ErrNotApplicable is returned when a fix's textual precondition does not hold.
	ErrNotApplicable = errors.New("quick fix not applicable")
	// ErrMissingSource is returned when an issue lacks SourceText or LineContent.
	ErrMissingSource = errors.New("issue has no source text attached")
)
