package metrics

import (
	"github.com/panbanda/revue/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// UsedNames collects every name the file refers to outside its package and
// import declarations: identifiers, type names, qualified names and the raw
// type of generic instantiations.
func UsedNames(result *parser.ParseResult) map[string]struct{} {
	used := make(map[string]struct{})
	add := func(name string) {
		if name != "" {
			used[name] = struct{}{}
		}
	}

	parser.WalkTyped(result.Root(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "import_declaration", "package_declaration":
			return false
		case "identifier", "type_identifier", "scoped_identifier", "scoped_type_identifier":
			add(parser.GetNodeText(node, source))
		case "generic_type":
			add(parser.GetNodeText(node, source))
			if node.NamedChildCount() > 0 {
				add(parser.GetNodeText(node.NamedChild(0), source))
			}
		}
		return true
	})
	return used
}

// UnusedImports returns the imports whose full name and last segment are both
// absent from the file's used names. Wildcard imports are always considered used.
func UnusedImports(result *parser.ParseResult) []parser.Import {
	imports := result.Imports()
	if len(imports) == 0 {
		return nil
	}
	used := UsedNames(result)

	var unused []parser.Import
	for _, imp := range imports {
		if imp.Wildcard {
			continue
		}
		if _, ok := used[imp.Name]; ok {
			continue
		}
		if _, ok := used[imp.LastSegment()]; ok {
			continue
		}
		unused = append(unused, imp)
	}
	return unused
}
