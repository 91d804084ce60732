package quickfix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/revue/pkg/models"
)

var catchPattern = regexp.MustCompile(`^\s*(?:}\s*)?catch\s*\(([^)]+)\)\s*\{\s*}\s*$`)

// CatchLogger fills an empty catch block with logging statements.
type CatchLogger struct{}

func (CatchLogger) Title() string { return "Fix Empty Catch Block" }

func (CatchLogger) Description() string {
	return "Adds appropriate error logging to empty catch block."
}

// CanApply requires a single-line `catch (Type var) {}`.
func (CatchLogger) CanApply(issue *models.Issue) bool {
	return catchPattern.MatchString(issue.LineContent)
}

func (f CatchLogger) Apply(issue *models.Issue) (models.FixResult, error) {
	if !f.CanApply(issue) {
		return models.FixResult{}, rejected(f.Title(), "line %d is not an empty catch", issue.Line)
	}
	lines, idx, err := target(issue, f.Title())
	if err != nil {
		return models.FixResult{}, err
	}

	line := lines[idx]
	m := catchPattern.FindStringSubmatch(line)
	if m == nil {
		return models.FixResult{}, rejected(f.Title(), "line %d is not an empty catch", issue.Line)
	}
	param := strings.Fields(m[1])
	if len(param) < 2 {
		return models.FixResult{}, rejected(f.Title(), "no exception variable in %q", m[1])
	}
	v := param[len(param)-1]

	indent := indentOf(line)
	open := strings.LastIndex(line, "{")
	body := []string{
		line[:open+1],
		fmt.Sprintf(`%s    logger.warning("Exception caught: " + %s.getMessage());`, indent, v),
		fmt.Sprintf(`%s    logger.log(java.util.logging.Level.FINE, "Stack trace:", %s);`, indent, v),
		indent + "}",
	}
	out := make([]string, 0, len(lines)+3)
	out = append(out, lines[:idx]...)
	out = append(out, body...)
	out = append(out, lines[idx+1:]...)

	return models.FixResult{
		Source:      strings.Join(out, "\n"),
		Description: "Add logging to empty catch block",
	}, nil
}
