package metrics

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/panbanda/revue/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultPoorNames is the built-in list of uninformative variable names.
var DefaultPoorNames = []string{
	"temp", "tmp", "var", "x", "y", "z", "a", "b", "c", "foo", "bar",
	"data", "obj", "thing", "stuff", "item", "val", "value",
}

// Denylist is a case-insensitive set of rejected variable names.
type Denylist map[string]struct{}

// NewDenylist builds a denylist. An empty list falls back to DefaultPoorNames.
func NewDenylist(names []string) Denylist {
	if len(names) == 0 {
		names = DefaultPoorNames
	}
	d := make(Denylist, len(names))
	for _, n := range names {
		d[strings.ToLower(n)] = struct{}{}
	}
	return d
}

// IsPoorName reports whether name is denylisted, shorter than two characters,
// or a single letter followed by a single digit.
func (d Denylist) IsPoorName(name string) bool {
	if utf8.RuneCountInString(name) < 2 {
		return true
	}
	if _, ok := d[strings.ToLower(name)]; ok {
		return true
	}
	runes := []rune(name)
	return len(runes) == 2 && unicode.IsLetter(runes[0]) && unicode.IsDigit(runes[1])
}

// NameFinding locates a poorly named local variable.
type NameFinding struct {
	Name string
	Line int
}

// PoorNames returns the local variables under body that fail the denylist.
// Locals include for-loop initializers, enhanced-for variables and
// try-with-resources resources.
func PoorNames(body *sitter.Node, source []byte, deny Denylist) []NameFinding {
	var findings []NameFinding
	check := func(nameNode *sitter.Node) {
		if nameNode == nil {
			return
		}
		name := parser.GetNodeText(nameNode, source)
		if deny.IsPoorName(name) {
			findings = append(findings, NameFinding{Name: name, Line: parser.StartLine(nameNode)})
		}
	}

	parser.WalkTyped(body, source, func(node *sitter.Node, nodeType string, _ []byte) bool {
		switch nodeType {
		case "local_variable_declaration":
			for i := range int(node.NamedChildCount()) {
				child := node.NamedChild(i)
				if child.Type() == "variable_declarator" {
					check(child.ChildByFieldName("name"))
				}
			}
		case "enhanced_for_statement", "resource":
			check(node.ChildByFieldName("name"))
		}
		return true
	})
	return findings
}
