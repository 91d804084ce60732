// Package mcpserver exposes Java analysis and quick fixes as MCP tools.
package mcpserver

import (
	"context"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/quickfix"
	"github.com/rs/zerolog"
)

// Server wraps the MCP server and the documents its clients have analyzed.
type Server struct {
	server   *mcp.Server
	analyzer *analyzer.Analyzer
	registry *quickfix.Registry
	logger   zerolog.Logger
	owned    bool
	tools    []Capability
	prompts  []Capability

	mu   sync.Mutex
	docs map[string]*document
}

// document is the current text of one analyzed file and its fix history.
type document struct {
	path    string
	source  string
	history *quickfix.History
}

// Option configures a Server.
type Option func(*Server)

// WithAnalyzer sets the analyzer used by the tools.
func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(s *Server) {
		s.analyzer = a
	}
}

// WithLogger sets the diagnostic logger. Tool output never goes to it.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "revue", Version: version}, nil),
		logger: zerolog.Nop(),
		docs:   make(map[string]*document),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		s.analyzer = analyzer.New()
		s.owned = true
	}
	s.registry = quickfix.NewRegistry(quickfix.WithDenylist(s.analyzer.Denylist()))

	s.registerTools()
	s.registerPrompts()
	return s
}

// Close releases the analyzer when the server created it.
func (s *Server) Close() {
	if s.owned {
		s.analyzer.Close()
	}
}

// Capability names one registered tool or prompt.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []Capability {
	return s.tools
}

// Prompts lists the registered prompts.
func (s *Server) Prompts() []Capability {
	return s.prompts
}

// QuickFixes maps each issue category to the titles of the fixes
// apply_quick_fix can run for it. Categories without fixes are omitted.
func (s *Server) QuickFixes() map[string][]string {
	out := make(map[string][]string)
	for _, c := range models.Categories {
		for _, fix := range s.registry.Lookup(c) {
			out[string(c)] = append(out[string(c)], fix.Title())
		}
	}
	return out
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	addTool(s, "analyze_java", describeAnalyze(), s.handleAnalyze)
	addTool(s, "apply_quick_fix", describeApply(), s.handleApply)
	addTool(s, "undo_quick_fix", describeUndo(), s.handleUndo)
	addTool(s, "redo_quick_fix", describeRedo(), s.handleRedo)
}

// addTool registers a tool and records it with the first line of its
// description for the manifest.
func addTool[In any](s *Server, name, description string, h mcp.ToolHandlerFor[In, any]) {
	mcp.AddTool(s.server, &mcp.Tool{Name: name, Description: description}, h)
	summary, _, _ := strings.Cut(description, "\n")
	s.tools = append(s.tools, Capability{Name: name, Description: summary})
}

func (s *Server) document(id string) (*document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	return d, ok
}

// open stores source under id. Re-analyzing changed text keeps the history
// only when the text is what the last fix produced.
func (s *Server) open(id, path, source string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[id]; ok {
		if d.source != source {
			d.history = quickfix.NewHistory()
			d.source = source
		}
		if path != "" {
			d.path = path
		}
		return d
	}
	d := &document{path: path, source: source, history: quickfix.NewHistory()}
	s.docs[id] = d
	return d
}

func (s *Server) update(d *document, source string) {
	s.mu.Lock()
	d.source = source
	s.mu.Unlock()
}
