package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed template.html
var templateFS embed.FS

func (r *Report) RenderData() any {
	return r
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	if err := r.summaryTable().RenderText(w, colored); err != nil {
		return err
	}
	for _, f := range r.Files {
		if !f.HasFindings() {
			continue
		}
		if err := issueTable(f, colored).RenderText(w, colored); err != nil {
			return err
		}
	}
	for _, s := range r.Skipped {
		if colored {
			color.New(color.FgYellow).Fprintf(w, "skipped %s: %s\n", s.Path, s.Reason)
		} else {
			fmt.Fprintf(w, "skipped %s: %s\n", s.Path, s.Reason)
		}
	}
	return nil
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Java Review\n\n")
	if err := r.summaryTable().RenderMarkdown(w); err != nil {
		return err
	}
	for _, f := range r.Files {
		if !f.HasFindings() {
			continue
		}
		if err := issueTable(f, false).RenderMarkdown(w); err != nil {
			return err
		}
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "## Skipped\n\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "- `%s`: %s\n", s.Path, s.Reason)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (r *Report) summaryTable() *output.Table {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{
			f.Path,
			strconv.Itoa(f.Errors),
			strconv.Itoa(f.Suggestions),
			strconv.Itoa(f.MaxCC),
			FormatRanges(f.Hot),
		})
	}
	s := r.Summary
	footer := []string{
		fmt.Sprintf("%d files", s.Files),
		strconv.Itoa(s.Errors),
		strconv.Itoa(s.Suggestions),
		fmt.Sprintf("mean %.1f", s.Complexity.Mean),
		fmt.Sprintf("%d methods", s.Methods),
	}
	return output.NewTable("Summary", []string{"File", "Errors", "Suggestions", "Max CC", "Hot Lines"}, rows, footer, nil)
}

func issueTable(f FileReport, colored bool) *output.Table {
	rows := make([][]string, 0, len(f.Issues))
	for _, issue := range f.Issues {
		sev := string(issue.Severity)
		if colored {
			sev = output.SeverityColor(issue.Severity, sev)
		}
		fix := ""
		if issue.HasQuickFixes() {
			fix = issue.QuickFixes[0].Title()
		}
		rows = append(rows, []string{strconv.Itoa(issue.Line), sev, string(issue.Category), issue.Message, fix})
	}
	return output.NewTable(f.Path, []string{"Line", "Severity", "Category", "Message", "Fix"}, rows, nil, nil)
}

// FormatRanges prints ranges as "3, 7-9".
func FormatRanges(ranges []LineRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if r.Start == r.End {
			parts[i] = strconv.Itoa(r.Start)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", r.Start, r.End)
		}
	}
	return strings.Join(parts, ", ")
}

// Renderer produces the standalone HTML report.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded template.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"severityClass": func(s models.Severity) string {
			switch s {
			case models.SeverityCritical:
				return "danger"
			case models.SeverityWarning:
				return "warning"
			default:
				return "info"
			}
		},
		"lower": strings.ToLower,
		"title": func(s string) string {
			return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
		},
		"num": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"fixed": func(f float64) string {
			return printer.Sprintf("%.1f", f)
		},
		"ranges":       FormatRanges,
		"truncatePath": truncatePath,
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
	}

	content, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the HTML report.
func (r *Renderer) Render(rep *Report, w io.Writer) error {
	return r.tmpl.Execute(w, rep)
}

// RenderToFile writes the HTML report to path.
func (r *Renderer) RenderToFile(rep *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(rep, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func truncatePath(s string, n int) string {
	if len(s) <= n || n < 4 {
		return s
	}
	return "..." + s[len(s)-n+3:]
}
