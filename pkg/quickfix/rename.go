package quickfix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/revue/pkg/analyzer/metrics"
	"github.com/panbanda/revue/pkg/models"
)

var (
	declPattern = regexp.MustCompile(`\b(var|[a-zA-Z_$][\w$]*(?:<[^=;]*>)?(?:\[\])*)\s+([a-z][\w$]*)\s*(=|;|:)`)
	newPattern  = regexp.MustCompile(`\bnew\s+([\w$]+)`)
	callPattern = regexp.MustCompile(`\.\s*([\w$]+)\s*\(`)
)

// RenameAdvisor suggests a descriptive name for a poorly named variable.
// It inserts a comment and leaves the declaration untouched.
type RenameAdvisor struct {
	Deny metrics.Denylist
}

func (RenameAdvisor) Title() string { return "Improve Variable Name" }

func (RenameAdvisor) Description() string {
	return "Suggests a more descriptive name for the variable based on its usage and context."
}

// CanApply requires the issue line to declare a poorly named variable.
func (f RenameAdvisor) CanApply(issue *models.Issue) bool {
	_, ok := f.declaration(issue.LineContent, issue.Symbol)
	return ok
}

func (f RenameAdvisor) Apply(issue *models.Issue) (models.FixResult, error) {
	if !f.CanApply(issue) {
		return models.FixResult{}, rejected(f.Title(), "line %d declares no poorly named variable", issue.Line)
	}
	lines, idx, err := target(issue, f.Title())
	if err != nil {
		return models.FixResult{}, err
	}
	d, ok := f.declaration(lines[idx], issue.Symbol)
	if !ok {
		return models.FixResult{}, rejected(f.Title(), "line %d declares no poorly named variable", issue.Line)
	}

	suggestion := SuggestName(d.typ, d.rhs, d.name)
	comment := fmt.Sprintf("%s// TODO: Consider renaming '%s' to '%s' for better clarity", indentOf(lines[idx]), d.name, suggestion)
	out := insertLines(lines, idx, comment)

	return models.FixResult{
		Source:      strings.Join(out, "\n"),
		Description: fmt.Sprintf("Add variable rename suggestion from '%s' to '%s'", d.name, suggestion),
	}, nil
}

type declaration struct {
	typ  string
	name string
	rhs  string
}

// declaration finds the declaration of symbol on line, or of the first poor
// name when symbol is empty.
func (f RenameAdvisor) declaration(line, symbol string) (declaration, bool) {
	deny := f.Deny
	if deny == nil {
		deny = metrics.NewDenylist(nil)
	}
	for _, m := range declPattern.FindAllStringSubmatchIndex(line, -1) {
		typ, name := line[m[2]:m[3]], line[m[4]:m[5]]
		if symbol != "" && name != symbol {
			continue
		}
		if !deny.IsPoorName(name) {
			continue
		}
		d := declaration{typ: typ, name: name}
		if line[m[6]:m[7]] == "=" {
			rhs := line[m[1]:]
			if end := strings.Index(rhs, ";"); end >= 0 {
				rhs = rhs[:end]
			}
			d.rhs = strings.TrimSpace(rhs)
		}
		return d, true
	}
	return declaration{}, false
}

// SuggestName infers a variable name from its initializer, then from its type.
func SuggestName(typ, rhs, old string) string {
	if m := newPattern.FindStringSubmatch(rhs); m != nil {
		return lowerFirst(m[1])
	}
	if ms := callPattern.FindAllStringSubmatch(rhs, -1); len(ms) > 0 {
		return lowerFirst(ms[len(ms)-1][1] + "Result")
	}

	switch {
	case typ == "String":
		return "text"
	case typ == "int" || typ == "long":
		return "count"
	case typ == "boolean":
		return "isValid"
	case strings.Contains(typ, "List"):
		return "items"
	case strings.Contains(typ, "Map"):
		return "mappings"
	}
	return "processed" + upperFirst(old)
}
