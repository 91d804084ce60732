package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/revue/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{" toon ", FormatTOON},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_Structured(t *testing.T) {
	if !FormatJSON.Structured() || !FormatTOON.Structured() {
		t.Error("json and toon are structured")
	}
	if FormatText.Structured() || FormatMarkdown.Structured() {
		t.Error("text and markdown are not structured")
	}
}

func TestNewFormatter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("file output must not be colored")
	}
	if err := f.Output(map[string]int{"errors": 2}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("file does not hold JSON: %v\n%s", err, data)
	}
	if got["errors"] != 2 {
		t.Errorf("got %v", got)
	}
}

func TestNewFormatter_BadPath(t *testing.T) {
	if _, err := NewFormatter(FormatText, filepath.Join(t.TempDir(), "missing", "out.txt"), false); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func sampleTable() *Table {
	return NewTable("Issues",
		[]string{"Line", "Category", "Message"},
		[][]string{
			{"3", "poor_name", "Poor variable name found: 'tmp'"},
			{"5", "magic_number", "Magic number found: 42."},
		},
		[]string{"", "Total", "2"},
		nil,
	)
}

func TestTable_Text(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	if err := f.Output(sampleTable()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Issues\n======", "poor_name", "Magic number found: 42.", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTable_Markdown(t *testing.T) {
	table := NewTable("", []string{"A", "B"}, [][]string{{"x|y", "z"}}, nil, nil)
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &buf, false).Output(table); err != nil {
		t.Fatal(err)
	}
	want := "| A | B |\n| --- | --- |\n| x\\|y | z |\n\n"
	if buf.String() != want {
		t.Errorf("markdown = %q, want %q", buf.String(), want)
	}
}

func TestTable_RenderData(t *testing.T) {
	rows, ok := sampleTable().RenderData().([]map[string]string)
	if !ok || len(rows) != 2 {
		t.Fatalf("RenderData() = %#v", sampleTable().RenderData())
	}
	if rows[1]["Category"] != "magic_number" {
		t.Errorf("row = %v", rows[1])
	}

	data := struct{ N int }{3}
	if got := NewTable("", nil, nil, nil, data).RenderData(); got != data {
		t.Errorf("explicit data should win, got %v", got)
	}
}

func TestDocument(t *testing.T) {
	doc := &Document{Title: "Report", Parts: []Renderable{sampleTable(), sampleTable()}}

	var md bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &md, false).Output(doc); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md.String(), "# Report\n\n## Issues\n\n") {
		t.Errorf("markdown = %q", md.String())
	}
	if strings.Count(md.String(), "## Issues") != 2 {
		t.Error("every part is rendered")
	}

	var js bytes.Buffer
	if err := NewWriterFormatter(FormatJSON, &js, false).Output(doc); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Title string `json:"title"`
		Parts []any  `json:"parts"`
	}
	if err := json.Unmarshal(js.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "Report" || len(got.Parts) != 2 {
		t.Errorf("json = %+v", got)
	}
}

func TestOutput_TOON(t *testing.T) {
	type summary struct {
		Errors int    `toon:"errors"`
		File   string `toon:"file"`
	}
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatTOON, &buf, false).Output(summary{Errors: 3, File: "App.java"}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "errors") || !strings.Contains(out, "3") || !strings.Contains(out, "App.java") {
		t.Errorf("toon output = %q", out)
	}
}

func TestOutput_RawMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &buf, false).Output([]int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "```json\n") || !strings.HasSuffix(buf.String(), "```\n") {
		t.Errorf("raw markdown should be fenced: %q", buf.String())
	}
}

func TestMessages_Plain(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	f.Success("applied %d", 1)
	f.Warning("skipped %s", "A.java")
	f.Error("failed")
	f.Info("done")

	want := "applied 1\nWARNING: skipped A.java\nERROR: failed\ndone\n"
	if buf.String() != want {
		t.Errorf("messages = %q, want %q", buf.String(), want)
	}
}

func TestSeverityColor(t *testing.T) {
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityWarning, models.SeverityInfo, ""} {
		if got := SeverityColor(sev, "x"); !strings.Contains(got, "x") {
			t.Errorf("SeverityColor(%q) lost the text: %q", sev, got)
		}
	}
}
