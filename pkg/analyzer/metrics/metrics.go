// Package metrics implements the tree-walking passes behind each finding
// category. Every function is pure: it reads the syntax tree and returns raw
// measurements or findings. Thresholds and messages belong to the caller.
package metrics

import (
	"github.com/panbanda/revue/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// MethodMetrics holds the per-method measurements.
type MethodMetrics struct {
	Name       string `json:"name"`
	StartLine  int    `json:"start_line"`
	Length     int    `json:"length"`
	Nesting    int    `json:"nesting"`
	Complexity int    `json:"complexity"`
	EmptyBody  bool   `json:"empty_body"`
}

// Measure computes length, nesting, complexity and emptiness for one method.
func Measure(m parser.MethodNode) MethodMetrics {
	return MethodMetrics{
		Name:       m.Name,
		StartLine:  m.StartLine,
		Length:     MethodLength(m.StartLine, m.EndLine),
		Nesting:    MaxNesting(m.Body),
		Complexity: Cyclomatic(m.Body),
		EmptyBody:  IsEmptyBody(m.Body),
	}
}

// MethodLength returns the inclusive line span of a declaration.
func MethodLength(startLine, endLine int) int {
	return endLine - startLine + 1
}

// IsEmptyBody reports whether a method body exists and holds no statements.
// Abstract and interface methods have no body and are never empty.
func IsEmptyBody(body *sitter.Node) bool {
	return body != nil && parser.StatementCount(body) == 0
}

// CatchFinding locates a catch clause with an empty block.
type CatchFinding struct {
	Line int
}

// EmptyCatches returns every catch clause under body whose block has no statements.
func EmptyCatches(body *sitter.Node) []CatchFinding {
	var findings []CatchFinding
	parser.WalkTyped(body, nil, func(node *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType != "catch_clause" {
			return true
		}
		if parser.StatementCount(node.ChildByFieldName("body")) == 0 {
			findings = append(findings, CatchFinding{Line: parser.StartLine(node)})
		}
		return true
	})
	return findings
}
