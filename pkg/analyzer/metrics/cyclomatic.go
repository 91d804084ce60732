package metrics

import (
	"github.com/panbanda/revue/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// decisionTypes each add one path through a method.
// Ternaries and method calls are deliberately absent.
var decisionTypes = map[string]bool{
	"if_statement":           true,
	"for_statement":          true,
	"enhanced_for_statement": true,
	"while_statement":        true,
	"do_statement":           true,
	"catch_clause":           true,
	"switch_label":           true,
}

// Cyclomatic returns 1 plus the number of decision points in body.
// A method without a body has complexity 1.
func Cyclomatic(body *sitter.Node) int {
	complexity := 1
	parser.WalkTyped(body, nil, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if decisionTypes[nodeType] {
			complexity++
		}
		if nodeType == "binary_expression" && isLogicalOperator(node) {
			complexity++
		}
		return true
	})
	return complexity
}

func isLogicalOperator(node *sitter.Node) bool {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return false
	}
	switch op.Type() {
	case "&&", "||":
		return true
	}
	return false
}
