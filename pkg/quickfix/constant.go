package quickfix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/revue/pkg/models"
)

var (
	// numberPattern matches a Java numeric literal: hex and binary radix
	// prefixes, digit separators, exponents and type suffixes.
	numberPattern = regexp.MustCompile(`(?i)\b(?:0x[0-9a-f][0-9a-f_]*(?:\.[0-9a-f_]*)?(?:p[+-]?\d+)?|0b[01][01_]*|\d[\d_]*(?:\.\d[\d_]*)?(?:e[+-]?\d+)?)[lfd]?\b`)
	nonLetters    = regexp.MustCompile(`[^a-zA-Z]+`)
	classPattern  = regexp.MustCompile(`\bclass\s+\w+`)
)

// Words that never contribute to a constant name.
var constantStopWords = map[string]bool{
	"final": true, "new": true, "return": true, "private": true, "public": true,
	"protected": true, "static": true, "int": true, "long": true, "double": true,
	"float": true, "short": true, "byte": true, "var": true, "this": true,
	"void": true,
}

// ConstantExtractor moves a numeric literal into a class-level constant.
type ConstantExtractor struct{}

func (ConstantExtractor) Title() string { return "Extract Magic Number to Constant" }

func (ConstantExtractor) Description() string {
	return "Extracts the magic number into a named constant at class level."
}

// CanApply requires the flagged literal, or any numeric literal when the
// issue names none, on the issue line.
func (ConstantExtractor) CanApply(issue *models.Issue) bool {
	if issue.Symbol != "" {
		return findToken(issue.LineContent, issue.Symbol) >= 0
	}
	return numberPattern.MatchString(issue.LineContent)
}

// Apply declares `private static final <type> NAME = literal;` just inside the
// body of the first class and replaces the literal on the issue line only.
func (f ConstantExtractor) Apply(issue *models.Issue) (models.FixResult, error) {
	if !f.CanApply(issue) {
		return models.FixResult{}, rejected(f.Title(), "no numeric literal on line %d", issue.Line)
	}
	lines, idx, err := target(issue, f.Title())
	if err != nil {
		return models.FixResult{}, err
	}

	line := lines[idx]
	literal, pos := locateLiteral(line, issue.Symbol)
	if pos < 0 {
		return models.FixResult{}, rejected(f.Title(), "no numeric literal on line %d", issue.Line)
	}

	classLine, brace := classBody(lines)
	if classLine < 0 {
		return models.FixResult{}, rejected(f.Title(), "no class declaration")
	}

	// Class header words on the issue line do not describe the value.
	start := 0
	if idx == classLine && pos > brace {
		start = brace + 1
	}
	name := constantName(line[start:pos] + line[pos+len(literal):])
	lines[idx] = line[:pos] + name + line[pos+len(literal):]
	if idx == classLine && pos < brace {
		brace += len(name) - len(literal)
	}

	indent := indentOf(lines[classLine])
	decl := fmt.Sprintf("%s    private static final %s %s = %s;", indent, constantType(literal), name, literal)
	header := lines[classLine]
	if rest := strings.TrimSpace(header[brace+1:]); rest != "" {
		lines[classLine] = strings.TrimRight(header[:brace+1], " \t")
		lines = insertLines(lines, classLine+1, decl, "", indent+"    "+rest)
	} else {
		lines = insertLines(lines, classLine+1, decl, "")
	}

	return models.FixResult{
		Source:      strings.Join(lines, "\n"),
		Description: fmt.Sprintf("Extract magic number %s to constant %s", literal, name),
	}, nil
}

// classBody finds the line holding the opening brace of the first class and
// the brace's byte offset in it, or -1 when there is no class.
func classBody(lines []string) (int, int) {
	for i, l := range lines {
		loc := classPattern.FindStringIndex(l)
		if loc == nil {
			continue
		}
		if b := strings.Index(l[loc[1]:], "{"); b >= 0 {
			return i, loc[1] + b
		}
		for j := i + 1; j < len(lines); j++ {
			if b := strings.Index(lines[j], "{"); b >= 0 {
				return j, b
			}
		}
		return -1, -1
	}
	return -1, -1
}

// locateLiteral finds the flagged literal on the line, falling back to the
// first numeric literal.
func locateLiteral(line, symbol string) (string, int) {
	if i := findToken(line, symbol); i >= 0 {
		return symbol, i
	}
	loc := numberPattern.FindStringIndex(line)
	if loc == nil {
		return "", -1
	}
	return line[loc[0]:loc[1]], loc[0]
}

// constantName builds an upper snake case name from the identifier words of
// the line, ending in VALUE.
func constantName(context string) string {
	var words []string
	for _, tok := range nonLetters.Split(context, -1) {
		if tok == "" {
			continue
		}
		for _, w := range splitCamel(tok) {
			if constantStopWords[strings.ToLower(w)] {
				continue
			}
			words = append(words, strings.ToUpper(w))
		}
	}
	return strings.Join(append(words, "VALUE"), "_")
}

func constantType(literal string) string {
	lower := strings.ToLower(strings.ReplaceAll(literal, "_", ""))
	hex := strings.HasPrefix(lower, "0x")
	switch {
	case strings.Contains(lower, "."),
		hex && strings.Contains(lower, "p"),
		!hex && (strings.ContainsAny(lower, "e") || strings.HasSuffix(lower, "f") || strings.HasSuffix(lower, "d")):
		return "double"
	case strings.HasSuffix(lower, "l"):
		return "long"
	default:
		return "int"
	}
}
