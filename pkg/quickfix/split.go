package quickfix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/revue/pkg/models"
)

var (
	methodPattern = regexp.MustCompile(
		`^\s*(?:(?:public|private|protected|static|final|synchronized|native|strictfp|default)\s+)*` +
			`(?:<[^>]*>\s+)?[\w.$]+(?:<[^()]*>)?(?:\[\])*\s+\w+\s*\(`)
	annotationPattern = regexp.MustCompile(`^\s*@\w+`)

	loopPattern   = regexp.MustCompile(`^\s*(for|while|do)\b`)
	condPattern   = regexp.MustCompile(`^\s*(if|switch)\b`)
	tryPattern    = regexp.MustCompile(`^\s*try\b`)
	branchPattern = regexp.MustCompile(`\b(if|for|while|catch|case)\b`)
)

const (
	splitMinLines    = 10
	splitMinBranches = 2
)

// SplitAdvisor annotates a long method with the blocks worth extracting.
// It never changes code, only inserts comments above the method.
type SplitAdvisor struct{}

func (SplitAdvisor) Title() string { return "Split Method" }

func (SplitAdvisor) Description() string {
	return "Suggests a split point for the long method based on logical blocks."
}

// CanApply requires the issue line to start a method declaration, either its
// header or a leading annotation.
func (SplitAdvisor) CanApply(issue *models.Issue) bool {
	return methodPattern.MatchString(issue.LineContent) || annotationPattern.MatchString(issue.LineContent)
}

// Block is a candidate for extraction inside a long method.
type Block struct {
	Kind     string
	Start    int // 1-based
	End      int // 1-based
	Branches int
}

// Lines returns the block's line count.
func (b Block) Lines() int { return b.End - b.Start + 1 }

// MethodName proposes a name for the extracted method.
func (b Block) MethodName() string {
	prefix := "execute"
	switch b.Kind {
	case "loop":
		prefix = "process"
	case "conditional", "error handling":
		prefix = "handle"
	}
	return fmt.Sprintf("%sBlock%d", prefix, b.Start)
}

func (b Block) String() string {
	return fmt.Sprintf("Extract %s block into method '%s' (lines %d-%d)", b.Kind, b.MethodName(), b.Start, b.End)
}

// Apply inserts a comment header and one line per extractable block above
// the method.
func (f SplitAdvisor) Apply(issue *models.Issue) (models.FixResult, error) {
	if !f.CanApply(issue) {
		return models.FixResult{}, rejected(f.Title(), "line %d does not declare a method", issue.Line)
	}
	lines, idx, err := target(issue, f.Title())
	if err != nil {
		return models.FixResult{}, err
	}

	header := idx
	for header < len(lines) && annotationPattern.MatchString(lines[header]) && !methodPattern.MatchString(lines[header]) {
		header++
	}
	if header == len(lines) || !methodPattern.MatchString(lines[header]) {
		return models.FixResult{}, rejected(f.Title(), "no method header at line %d", issue.Line)
	}
	end := blockEnd(lines, header)
	if end < 0 {
		return models.FixResult{}, rejected(f.Title(), "method at line %d is not closed", header+1)
	}

	indent := indentOf(lines[idx])
	notes := []string{indent + "// TODO: Consider refactoring this method into smaller methods:"}
	for _, b := range ExtractableBlocks(lines, header+1, end-1) {
		notes = append(notes, indent+"// - "+b.String())
	}
	notes = append(notes, "")
	out := insertLines(lines, idx, notes...)

	return models.FixResult{
		Source:      strings.Join(out, "\n"),
		Description: "Add method splitting suggestions to long method",
	}, nil
}

// ExtractableBlocks scans lines[from..to] (0-based, inclusive) for top-level
// loop, conditional and try blocks longer than ten lines or with more than two
// branches. Nested blocks are folded into their enclosing block.
func ExtractableBlocks(lines []string, from, to int) []Block {
	var blocks []Block
	for i := from; i <= to && i < len(lines); i++ {
		line := lines[i]
		kind := blockKind(line)
		if kind == "" || !strings.Contains(line, "{") {
			continue
		}
		end := blockEnd(lines, i)
		if end < 0 || end > to {
			end = to
		}
		b := Block{Kind: kind, Start: i + 1, End: end + 1}
		for _, l := range lines[i : end+1] {
			b.Branches += len(branchPattern.FindAllString(l, -1))
		}
		if b.Lines() > splitMinLines || b.Branches > splitMinBranches {
			blocks = append(blocks, b)
		}
		i = end
	}
	return blocks
}

func blockKind(line string) string {
	switch {
	case loopPattern.MatchString(line):
		return "loop"
	case condPattern.MatchString(line):
		return "conditional"
	case tryPattern.MatchString(line):
		return "error handling"
	}
	return ""
}
