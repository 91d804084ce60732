package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/revue/internal/cache"
	"github.com/panbanda/revue/internal/logging"
	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/config"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// env is the per-invocation state shared by commands: the loaded config,
// the logger and an analyzer built from both.
type env struct {
	cfg      *config.Config
	source   string
	logger   zerolog.Logger
	analyzer *analyzer.Analyzer
}

// loadEnv resolves configuration, applying global flag overrides.
func loadEnv(c *cli.Context) (*env, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	res, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config

	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if f := c.String("format"); f != "" {
		cfg.Output.Format = f
	}

	level := cfg.Log.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	if c.Bool("verbose") {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, JSON: cfg.Log.JSON, Out: c.App.ErrWriter})
	if err != nil {
		return nil, err
	}
	if res.Source != "" {
		logger.Debug().Str("path", res.Source).Msg("loaded config")
	}

	return &env{cfg: cfg, source: res.Source, logger: logger}, nil
}

// sharedAnalyzer returns the analyzer configured by e.cfg, building it on
// first use. Callers must not close it; env.close releases it.
func (e *env) sharedAnalyzer() *analyzer.Analyzer {
	if e.analyzer != nil {
		return e.analyzer
	}
	e.analyzer = analyzer.New(
		analyzer.WithThresholds(analyzer.Thresholds{
			MethodLength: e.cfg.Thresholds.MethodLength,
			Nesting:      e.cfg.Thresholds.NestingDepth,
			Complexity:   e.cfg.Thresholds.CyclomaticComplexity,
		}),
		analyzer.WithPoorNames(e.cfg.Naming.PoorNames),
		analyzer.WithWorkers(e.cfg.Analysis.Workers),
		analyzer.WithMaxFileSize(e.cfg.Analysis.MaxFileSize),
		analyzer.WithLogger(logging.Component(e.logger, "analyzer")),
	)
	return e.analyzer
}

func (e *env) close() {
	if e.analyzer != nil {
		e.analyzer.Close()
		e.analyzer = nil
	}
}

func (e *env) cache() (*cache.Cache, error) {
	return cache.New(e.cfg.Cache.Dir, e.cfg.Cache.TTL, e.cfg.Cache.Enabled)
}

// colored reports whether output to w should carry ANSI color.
func (e *env) colored(c *cli.Context, w io.Writer) bool {
	if c.Bool("no-color") || !e.cfg.Output.Color || color.NoColor {
		return false
	}
	return w == os.Stdout
}

// formatter opens the output destination selected by --output.
func (e *env) formatter(c *cli.Context) (*output.Formatter, error) {
	format := output.ParseFormat(e.cfg.Output.Format)
	path := c.String("output")
	if path != "" {
		return output.NewFormatter(format, path, false)
	}
	w := c.App.Writer
	return output.NewWriterFormatter(format, w, e.colored(c, w)), nil
}
