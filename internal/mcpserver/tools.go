package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/quickfix"
	toon "github.com/toon-format/toon-go"
)

// AnalyzeInput selects the Java text to analyze.
type AnalyzeInput struct {
	Source   string `json:"source,omitempty" jsonschema:"Java source text. When empty the file at path is read."`
	Path     string `json:"path,omitempty" jsonschema:"Path of the Java file. Used as the document id when document is empty."`
	Document string `json:"document,omitempty" jsonschema:"Document id for later fix, undo and redo calls."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ApplyInput selects one fix on an analyzed document.
type ApplyInput struct {
	Document string `json:"document" jsonschema:"Document id returned by analyze_java."`
	Line     int    `json:"line" jsonschema:"1-based line of the issue."`
	Category string `json:"category,omitempty" jsonschema:"Issue category, e.g. unused_import or magic_number. Any category when empty."`
	Fix      string `json:"fix,omitempty" jsonschema:"Fix title. The first fix of the issue when empty."`
	Write    bool   `json:"write,omitempty" jsonschema:"Write the fixed text back to the document's file."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// HistoryInput names the document to undo or redo on.
type HistoryInput struct {
	Document string `json:"document" jsonschema:"Document id returned by analyze_java."`
	Write    bool   `json:"write,omitempty" jsonschema:"Write the restored text back to the document's file."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// IssueView is an issue as reported to clients.
type IssueView struct {
	Line     int      `json:"line" toon:"line"`
	Category string   `json:"category" toon:"category"`
	Kind     string   `json:"kind" toon:"kind"`
	Severity string   `json:"severity" toon:"severity"`
	Message  string   `json:"message" toon:"message"`
	Symbol   string   `json:"symbol,omitempty" toon:"symbol,omitempty"`
	Fixes    []string `json:"fixes,omitempty" toon:"fixes,omitempty"`
}

// AnalysisOutput is the analyze_java result.
type AnalysisOutput struct {
	Document    string      `json:"document" toon:"document"`
	Errors      int         `json:"errors" toon:"errors"`
	Suggestions int         `json:"suggestions" toon:"suggestions"`
	Fixable     int         `json:"fixable" toon:"fixable"`
	Issues      []IssueView `json:"issues" toon:"issues"`
}

// EditOutput is the result of a fix, undo or redo.
type EditOutput struct {
	Document    string `json:"document" toon:"document"`
	Description string `json:"description" toon:"description"`
	Written     bool   `json:"written,omitempty" toon:"written,omitempty"`
	CanUndo     bool   `json:"can_undo" toon:"can_undo"`
	CanRedo     bool   `json:"can_redo" toon:"can_redo"`
	Source      string `json:"source" toon:"source"`
}

func getFormat(s string) output.Format {
	switch f := output.ParseFormat(s); f {
	case output.FormatJSON, output.FormatMarkdown:
		return f
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	if format == output.FormatJSON {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	if format == output.FormatMarkdown {
		return "```\n" + string(out) + "\n```", nil
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func documentID(input AnalyzeInput) string {
	switch {
	case input.Document != "":
		return input.Document
	case input.Path != "":
		return input.Path
	default:
		return "untitled"
	}
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	source := input.Source
	if source == "" {
		if input.Path == "" {
			return toolError("either source or path is required")
		}
		data, err := os.ReadFile(input.Path)
		if err != nil {
			return toolError(err.Error())
		}
		source = string(data)
	}

	id := documentID(input)
	s.open(id, input.Path, source)
	result, err := s.analyze(source)
	if err != nil {
		return toolError(err.Error())
	}

	out := AnalysisOutput{
		Document:    id,
		Errors:      len(result.Errors),
		Suggestions: len(result.Suggestions),
		Issues:      make([]IssueView, 0, result.Total()),
	}
	for _, issue := range result.All() {
		view := IssueView{
			Line:     issue.Line,
			Category: string(issue.Category),
			Kind:     string(issue.Kind),
			Severity: string(issue.Severity),
			Message:  issue.Message,
			Symbol:   issue.Symbol,
		}
		for _, fix := range issue.QuickFixes {
			view.Fixes = append(view.Fixes, fix.Title())
		}
		if len(view.Fixes) > 0 {
			out.Fixable++
		}
		out.Issues = append(out.Issues, view)
	}
	s.logger.Debug().Str("document", id).Int("issues", len(out.Issues)).Msg("analyzed document")
	return toolResult(out, getFormat(input.Format))
}

func (s *Server) analyze(source string) (*models.AnalysisResult, error) {
	result, err := s.analyzer.Analyze([]byte(source))
	if err != nil {
		return nil, err
	}
	s.registry.Attach(result, source)
	return result, nil
}

func (s *Server) handleApply(ctx context.Context, req *mcp.CallToolRequest, input ApplyInput) (*mcp.CallToolResult, any, error) {
	doc, ok := s.document(input.Document)
	if !ok {
		return toolError(fmt.Sprintf("unknown document %q, call analyze_java first", input.Document))
	}

	var category models.Category
	if input.Category != "" {
		c, ok := models.ParseCategory(input.Category)
		if !ok {
			return toolError(fmt.Sprintf("unknown category %q", input.Category))
		}
		category = c
	}

	result, err := s.analyze(s.text(doc))
	if err != nil {
		return toolError(err.Error())
	}
	issue, fix, err := quickfix.Select(result, input.Line, category, input.Fix)
	if err != nil {
		return toolError(err.Error())
	}
	res, err := doc.history.Apply(issue, fix)
	if err != nil {
		return toolError(err.Error())
	}
	s.update(doc, res.Source)

	out, err := s.edit(input.Document, doc, res.Source, res.Description, input.Write)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(out, getFormat(input.Format))
}

func (s *Server) handleUndo(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, any, error) {
	return s.step(input, (*quickfix.History).Undo)
}

func (s *Server) handleRedo(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, any, error) {
	return s.step(input, (*quickfix.History).Redo)
}

func (s *Server) step(input HistoryInput, move func(*quickfix.History) (string, quickfix.Change, error)) (*mcp.CallToolResult, any, error) {
	doc, ok := s.document(input.Document)
	if !ok {
		return toolError(fmt.Sprintf("unknown document %q, call analyze_java first", input.Document))
	}
	text, change, err := move(doc.history)
	if errors.Is(err, quickfix.ErrNothingToUndo) || errors.Is(err, quickfix.ErrNothingToRedo) {
		return toolError(err.Error())
	}
	if err != nil {
		return nil, nil, err
	}
	s.update(doc, text)

	out, err := s.edit(input.Document, doc, text, change.Description, input.Write)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(out, getFormat(input.Format))
}

func (s *Server) text(d *document) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return d.source
}

func (s *Server) edit(id string, doc *document, text, description string, write bool) (EditOutput, error) {
	out := EditOutput{
		Document:    id,
		Description: description,
		CanUndo:     doc.history.CanUndo(),
		CanRedo:     doc.history.CanRedo(),
		Source:      text,
	}
	if !write {
		return out, nil
	}
	if doc.path == "" {
		return out, fmt.Errorf("document %q has no file to write", id)
	}
	if err := os.WriteFile(doc.path, []byte(text), 0644); err != nil {
		return out, err
	}
	out.Written = true
	s.logger.Info().Str("path", doc.path).Str("change", description).Msg("wrote document")
	return out, nil
}
