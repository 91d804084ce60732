package metrics

import (
	"github.com/panbanda/revue/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// nestingTypes are the constructs that open a new nesting level for their children.
var nestingTypes = map[string]bool{
	"if_statement":                 true,
	"for_statement":                true,
	"enhanced_for_statement":       true,
	"while_statement":              true,
	"do_statement":                 true,
	"switch_expression":            true,
	"switch_statement":             true,
	"switch_block_statement_group": true,
	"switch_rule":                  true,
	"try_statement":                true,
	"try_with_resources_statement": true,
	"catch_clause":                 true,
}

// MaxNesting returns the deepest nesting level reached inside a method body.
// The body itself is level zero. A block counts only when it stands on its own
// inside another block; the block that forms a construct's body is part of the
// construct. An else-if continues its chain at the same level.
func MaxNesting(body *sitter.Node) int {
	if body == nil {
		return 0
	}
	maxDepth := 0
	var visit func(node *sitter.Node, nodeType string, depth int)
	visit = func(node *sitter.Node, nodeType string, depth int) {
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			childType := child.Type()
			childDepth := depth
			if opensLevel(node, nodeType, child, childType) {
				childDepth++
				maxDepth = max(maxDepth, childDepth)
			}
			visit(child, childType, childDepth)
		}
	}
	visit(body, body.Type(), 0)
	return maxDepth
}

func opensLevel(parent *sitter.Node, parentType string, child *sitter.Node, childType string) bool {
	if childType == "block" {
		return parentType == "block"
	}
	if !nestingTypes[childType] {
		return false
	}
	if childType == "if_statement" && parentType == "if_statement" {
		return !parser.SameNode(parent.ChildByFieldName("alternative"), child)
	}
	return true
}
