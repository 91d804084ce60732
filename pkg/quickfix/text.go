package quickfix

import (
	"strings"
	"unicode"

	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/parser"
)

// target splits the issue's source into lines and returns the 0-based index
// of the issue line.
func target(issue *models.Issue, title string) ([]string, int, error) {
	lines := parser.Lines(issue.SourceText)
	idx := issue.Line - 1
	if idx < 0 || idx >= len(lines) {
		return nil, 0, rejected(title, "line %d out of range", issue.Line)
	}
	return lines, idx, nil
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

// insertLines returns lines with extra inserted before index at.
func insertLines(lines []string, at int, extra ...string) []string {
	out := make([]string, 0, len(lines)+len(extra))
	out = append(out, lines[:at]...)
	out = append(out, extra...)
	return append(out, lines[at:]...)
}

// blockEnd returns the index of the line where the first brace opened at or
// after start is closed, or -1. Braces inside strings and comments are counted.
func blockEnd(lines []string, start int) int {
	depth, opened := 0, false
	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
	}
	return -1
}

func isIdentRune(b byte) bool {
	return b == '_' || b == '$' || b == '.' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// findToken returns the byte offset of tok in line where it is not part of a
// longer identifier or number, or -1.
func findToken(line, tok string) int {
	if tok == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(line[from:], tok)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(tok)
		before := i == 0 || !isIdentRune(line[i-1])
		after := end == len(line) || !isIdentRune(line[end])
		if before && after {
			return i
		}
		from = i + 1
	}
}

// splitCamel breaks an identifier at lower-to-upper transitions.
func splitCamel(s string) []string {
	var words []string
	runes := []rune(s)
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func lowerFirst(s string) string {
	if s == "" {
		return "value"
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(s string) string {
	if s == "" {
		return "Value"
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
