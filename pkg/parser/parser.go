package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Parser wraps tree-sitter with the Java grammar.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed syntax tree and its source.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// ParseError reports the first syntax error found in the tree.
type ParseError struct {
	Path   string
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
	}
	return fmt.Sprintf("%d:%d: syntax error", e.Line, e.Column)
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p}
}

// IsJava reports whether the path names a Java source file.
func IsJava(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".java"
}

// ParseFile reads and parses a Java file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(source, path)
}

// Parse parses Java source. tree-sitter recovers from syntax errors, so a tree
// containing ERROR or MISSING nodes is reported as a *ParseError.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{Path: path}
		if bad := firstErrorNode(root); bad != nil {
			perr.Line = int(bad.StartPoint().Row) + 1
			perr.Column = int(bad.StartPoint().Column) + 1
		}
		tree.Close()
		return nil, perr
	}
	// The grammar accepts bare statements at the top level; javac does not.
	if bad := strayTopLevel(root); bad != nil {
		tree.Close()
		return nil, &ParseError{
			Path:   path,
			Line:   int(bad.StartPoint().Row) + 1,
			Column: int(bad.StartPoint().Column) + 1,
		}
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Root returns the root node of the tree.
func (r *ParseResult) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// Close releases the tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// compilationUnitMembers are the node types allowed directly under program.
var compilationUnitMembers = map[string]bool{
	"package_declaration":         true,
	"import_declaration":          true,
	"module_declaration":          true,
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
	"line_comment":                true,
	"block_comment":               true,
}

func strayTopLevel(root *sitter.Node) *sitter.Node {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if !compilationUnitMembers[child.Type()] {
			return child
		}
	}
	return nil
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	var found *sitter.Node
	Walk(node, nil, func(n *sitter.Node, _ []byte) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodes returns all nodes matching a predicate.
func FindNodes(root *sitter.Node, source []byte, predicate func(*sitter.Node) bool) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(node *sitter.Node, source []byte) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindNodesByType returns all nodes of a specific type.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	return FindNodes(root, source, func(n *sitter.Node) bool {
		return n.Type() == nodeType
	})
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// StartLine returns the 1-based line a node starts on.
func StartLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// EndLine returns the 1-based line a node ends on.
func EndLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

// SameNode reports whether a and b cover the same span with the same type.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// IsComment reports whether a node is a line or block comment.
func IsComment(nodeType string) bool {
	return nodeType == "line_comment" || nodeType == "block_comment" || nodeType == "comment"
}

// StatementCount returns the number of statements directly inside a block,
// ignoring comments and braces.
func StatementCount(block *sitter.Node) int {
	if block == nil {
		return 0
	}
	count := 0
	for i := range int(block.NamedChildCount()) {
		if !IsComment(block.NamedChild(i).Type()) {
			count++
		}
	}
	return count
}

// MethodNode represents a parsed method declaration.
type MethodNode struct {
	Name      string
	StartLine int
	EndLine   int
	// Body is nil for abstract and interface methods.
	Body *sitter.Node
	Node *sitter.Node
}

// Methods returns every method declaration in document order, including
// methods of nested and anonymous classes.
func (r *ParseResult) Methods() []MethodNode {
	var methods []MethodNode
	WalkTyped(r.Root(), r.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType != "method_declaration" {
			return true
		}
		methods = append(methods, MethodNode{
			Name:      GetNodeText(node.ChildByFieldName("name"), source),
			StartLine: StartLine(node),
			EndLine:   EndLine(node),
			Body:      node.ChildByFieldName("body"),
			Node:      node,
		})
		return true
	})
	return methods
}

// Import represents one import declaration.
type Import struct {
	// Name is the dotted name without the trailing wildcard.
	Name     string
	Line     int
	Static   bool
	Wildcard bool
}

// LastSegment returns the final component of the dotted name.
func (i Import) LastSegment() string {
	if idx := strings.LastIndexByte(i.Name, '.'); idx >= 0 {
		return i.Name[idx+1:]
	}
	return i.Name
}

// Imports returns the file's import declarations in document order.
func (r *ParseResult) Imports() []Import {
	var imports []Import
	root := r.Root()
	for i := range int(root.NamedChildCount()) {
		decl := root.NamedChild(i)
		if decl.Type() != "import_declaration" {
			continue
		}
		imp := Import{Line: StartLine(decl)}
		for j := range int(decl.ChildCount()) {
			child := decl.Child(j)
			switch child.Type() {
			case "static":
				imp.Static = true
			case "asterisk", "*":
				imp.Wildcard = true
			case "identifier", "scoped_identifier":
				imp.Name = GetNodeText(child, r.Source)
			}
		}
		imports = append(imports, imp)
	}
	return imports
}

// Lines splits source into lines without their terminators.
func Lines(source string) []string {
	return strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
}

// LineAt returns the 1-based line of source, or "" if out of range.
func LineAt(source string, line int) string {
	lines := Lines(source)
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
