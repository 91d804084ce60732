// Package analyzer runs the Java metric passes over a source file and turns
// their measurements into an ordered list of findings.
package analyzer

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/panbanda/revue/pkg/analyzer/metrics"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/parser"
	"github.com/rs/zerolog"
)

// ErrNilSource is returned when Analyze is called without source text.
var ErrNilSource = errors.New("source cannot be nil")

// Messages for whole-run failures.
const (
	MsgParseFailure    = "Error parsing code."
	MsgAnalysisFailure = "Error analyzing code: "
)

// Thresholds are the strict upper bounds a method may reach before it is flagged.
type Thresholds struct {
	MethodLength int `json:"method_length"`
	Nesting      int `json:"nesting_depth"`
	Complexity   int `json:"cyclomatic_complexity"`
}

// DefaultThresholds returns the built-in limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MethodLength: 10,
		Nesting:      2,
		Complexity:   5,
	}
}

// Analyzer produces findings for Java source. Analyze may be called from
// multiple goroutines; calls are serialized on the analyzer's parser.
type Analyzer struct {
	thresholds  Thresholds
	deny        metrics.Denylist
	logger      zerolog.Logger
	workers     int
	maxFileSize int64

	mu     sync.Mutex
	parser *parser.Parser
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds replaces the default limits.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithPoorNames replaces the variable name denylist. An empty list keeps the default.
func WithPoorNames(names []string) Option {
	return func(a *Analyzer) {
		a.deny = metrics.NewDenylist(names)
	}
}

// WithLogger sets the logger used for per-method debug traces.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithWorkers caps concurrency for batch analysis (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// New creates an analyzer with the default thresholds and denylist.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: DefaultThresholds(),
		deny:       metrics.NewDenylist(nil),
		logger:     zerolog.Nop(),
		parser:     parser.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the limits in effect.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Denylist returns the poor variable names in effect.
func (a *Analyzer) Denylist() metrics.Denylist {
	return a.deny
}

// SettingsKey identifies the thresholds and denylist. Results computed under
// different settings must not share cache entries.
func (a *Analyzer) SettingsKey() string {
	names := make([]string, 0, len(a.deny))
	for n := range a.deny {
		names = append(names, n)
	}
	sort.Strings(names)
	t := a.thresholds
	return fmt.Sprintf("v1|%d|%d|%d|%s", t.MethodLength, t.Nesting, t.Complexity, strings.Join(names, ","))
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// Analyze inspects one Java compilation unit. Parse failures and internal
// faults are reported as a single critical parse_error finding, never as an
// error; the only error is ErrNilSource.
func (a *Analyzer) Analyze(source []byte) (*models.AnalysisResult, error) {
	fr, err := a.analyzeSource(source, "")
	if err != nil {
		return nil, err
	}
	return fr.Result, nil
}

// AnalyzeFile reads and analyzes one file.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return a.analyzeSource(source, path)
}

func (a *Analyzer) analyzeSource(source []byte, path string) (*FileResult, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.analyzeWith(a.parser, source, path), nil
}

// FileResult is the analysis of one file.
type FileResult struct {
	Path    string                  `json:"path" toon:"path"`
	Result  *models.AnalysisResult  `json:"result" toon:"result"`
	Methods []metrics.MethodMetrics `json:"methods" toon:"methods"`
	// Source is the analyzed text, kept so quick fixes can be attached later.
	Source string `json:"-" toon:"-"`
}

// inspectHook runs after a successful parse. Tests replace it to inject faults.
var inspectHook = func(*parser.ParseResult) {}

func failure(message string) *models.AnalysisResult {
	result := models.NewAnalysisResult()
	result.Add(models.NewIssue(0, message, models.CategoryParseError, models.KindError, models.SeverityCritical))
	return result
}

// analyzeWith runs every pass using psr. Panics inside the passes are
// recovered into a single analysis-failure finding.
func (a *Analyzer) analyzeWith(psr *parser.Parser, source []byte, path string) (fr *FileResult) {
	fr = &FileResult{Path: path, Source: string(source)}
	log := a.logger.With().Str("file", path).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("analysis aborted")
			fr.Result = failure(fmt.Sprintf("%s%v", MsgAnalysisFailure, r))
			fr.Methods = nil
		}
	}()

	parsed, err := psr.Parse(source, path)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			log.Debug().Int("line", perr.Line).Int("column", perr.Column).Msg("parse failed")
			fr.Result = failure(MsgParseFailure)
			return fr
		}
		log.Error().Err(err).Msg("parser error")
		fr.Result = failure(MsgAnalysisFailure + err.Error())
		return fr
	}
	defer parsed.Close()
	inspectHook(parsed)

	result := models.NewAnalysisResult()
	for _, m := range parsed.Methods() {
		fr.Methods = append(fr.Methods, a.checkMethod(result, parsed, m, log))
	}
	a.checkImports(result, parsed, log)
	a.checkMagicNumbers(result, parsed)

	log.Debug().
		Int("errors", len(result.Errors)).
		Int("suggestions", len(result.Suggestions)).
		Msg("analysis complete")

	fr.Result = result
	return fr
}
