package metrics

import (
	"strconv"
	"strings"

	"github.com/panbanda/revue/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var integerLiteralTypes = map[string]bool{
	"decimal_integer_literal": true,
	"hex_integer_literal":     true,
	"octal_integer_literal":   true,
	"binary_integer_literal":  true,
}

var floatLiteralTypes = map[string]bool{
	"decimal_floating_point_literal": true,
	"hex_floating_point_literal":     true,
}

// MagicNumber is a numeric literal that should probably be a named constant.
type MagicNumber struct {
	Line int
	// Literal is the token as written, e.g. "0x1F" or "3.5f".
	Literal string
	// Display includes a folded unary minus, e.g. "-42".
	Display string
	// Float is true for floating point literals.
	Float bool
}

// MagicNumbers returns every integer or floating literal in the file other
// than 0, 1 and -1, in document order.
func MagicNumbers(result *parser.ParseResult) []MagicNumber {
	var found []MagicNumber
	parser.WalkTyped(result.Root(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		isInt := integerLiteralTypes[nodeType]
		isFloat := floatLiteralTypes[nodeType]
		if !isInt && !isFloat {
			return true
		}

		literal := parser.GetNodeText(node, source)
		if isTrivialLiteral(literal, nodeType, isFloat) {
			return false
		}

		display := literal
		if isNegated(node) {
			display = "-" + literal
		}
		found = append(found, MagicNumber{
			Line:    parser.StartLine(node),
			Literal: literal,
			Display: display,
			Float:   isFloat,
		})
		return false
	})
	return found
}

// isNegated reports whether the literal is the operand of a unary minus.
func isNegated(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil || parent.Type() != "unary_expression" {
		return false
	}
	op := parent.ChildByFieldName("operator")
	return op != nil && op.Type() == "-"
}

// isTrivialLiteral reports whether the literal's magnitude is 0 or 1. The sign
// is carried by a separate unary expression, so -1 is covered here as well.
// Literals that fail to parse are never trivial.
func isTrivialLiteral(literal, nodeType string, isFloat bool) bool {
	if isFloat {
		v, ok := ParseFloatLiteral(literal, nodeType)
		return ok && (v == 0 || v == 1)
	}
	v, ok := ParseIntLiteral(literal)
	return ok && (v == 0 || v == 1)
}

// ParseIntLiteral converts a Java integer literal, including underscores,
// radix prefixes and the long suffix.
func ParseIntLiteral(literal string) (int64, bool) {
	s := strings.ReplaceAll(literal, "_", "")
	s = strings.TrimRight(s, "lL")
	if s == "" {
		return 0, false
	}
	// Java octal is a bare leading zero, which base 0 also understands.
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, false
		}
		return int64(u), true
	}
	return v, true
}

// ParseFloatLiteral converts a Java floating point literal, including
// underscores, exponents, hex floats and the f/d suffixes.
func ParseFloatLiteral(literal, nodeType string) (float64, bool) {
	s := strings.ReplaceAll(literal, "_", "")
	if nodeType != "hex_floating_point_literal" || strings.ContainsAny(s, "pP") {
		s = strings.TrimRight(s, "fFdD")
	}
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
