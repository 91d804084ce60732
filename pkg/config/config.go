package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for revue.
type Config struct {
	Analysis   AnalysisConfig  `koanf:"analysis" toml:"analysis" json:"analysis"`
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds" json:"thresholds"`
	Naming     NamingConfig    `koanf:"naming" toml:"naming" json:"naming"`
	Exclude    ExcludeConfig   `koanf:"exclude" toml:"exclude" json:"exclude"`
	Cache      CacheConfig     `koanf:"cache" toml:"cache" json:"cache"`
	History    HistoryConfig   `koanf:"history" toml:"history" json:"history"`
	Output     OutputConfig    `koanf:"output" toml:"output" json:"output"`
	Log        LogConfig       `koanf:"log" toml:"log" json:"log"`
}

// AnalysisConfig controls batch analysis.
type AnalysisConfig struct {
	Workers     int   `koanf:"workers" toml:"workers" json:"workers"` // 0 means NumCPU*2
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size" json:"max_file_size"`
}

// ThresholdConfig defines the limits above which a method is flagged.
type ThresholdConfig struct {
	MethodLength         int `koanf:"method_length" toml:"method_length" json:"method_length"`
	NestingDepth         int `koanf:"nesting_depth" toml:"nesting_depth" json:"nesting_depth"`
	CyclomaticComplexity int `koanf:"cyclomatic_complexity" toml:"cyclomatic_complexity" json:"cyclomatic_complexity"`
}

// NamingConfig lists variable names reported as uninformative.
type NamingConfig struct {
	PoorNames []string `koanf:"poor_names" toml:"poor_names" json:"poor_names"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching of analysis results.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" json:"ttl"` // TTL in hours
}

// HistoryConfig controls the analysis history log.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled"`
	Path    string `koanf:"path" toml:"path" json:"path"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" json:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" json:"level"`
	JSON  bool   `koanf:"json" toml:"json" json:"json"`
}

// DefaultConfig returns a config with the standard review thresholds.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize: 1 << 20,
		},
		Thresholds: ThresholdConfig{
			MethodLength:         10,
			NestingDepth:         2,
			CyclomaticComplexity: 5,
		},
		Naming: NamingConfig{
			PoorNames: []string{
				"temp", "tmp", "var", "x", "y", "z", "a", "b", "c", "foo", "bar",
				"data", "obj", "thing", "stuff", "item", "val", "value",
			},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*Test.java",
				"*Tests.java",
				"package-info.java",
				"module-info.java",
			},
			Dirs: []string{
				".git",
				".revue",
				"target",
				"build",
				"out",
				".gradle",
				"node_modules",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".revue/cache",
			TTL:     24,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".revue/history.jsonl",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ValidFormats lists the output formats accepted in output.format.
var ValidFormats = []string{"text", "json", "markdown", "toon"}

// Validate checks the semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Thresholds.MethodLength < 1 {
		errs = append(errs, fmt.Errorf("thresholds.method_length must be positive, got %d", c.Thresholds.MethodLength))
	}
	if c.Thresholds.NestingDepth < 0 {
		errs = append(errs, fmt.Errorf("thresholds.nesting_depth must not be negative, got %d", c.Thresholds.NestingDepth))
	}
	if c.Thresholds.CyclomaticComplexity < 1 {
		errs = append(errs, fmt.Errorf("thresholds.cyclomatic_complexity must be positive, got %d", c.Thresholds.CyclomaticComplexity))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must not be negative, got %d", c.Analysis.Workers))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %d", c.Cache.TTL))
	}
	if !validFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(ValidFormats, ", ")))
	}
	return errors.Join(errs...)
}

func validFormat(f string) bool {
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

// Load loads configuration from a file on top of the defaults.
// The file is checked against the embedded schema before decoding.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := ValidateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Standard config file names, searched in order.
var configNames = []string{
	"revue.toml",
	"revue.yaml",
	"revue.yml",
	"revue.json",
	".revue.toml",
	".revue.yaml",
	".revue.yml",
	".revue.json",
}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is the file path, or "" when defaults were used.
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dirs []string
}

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig loads the explicit file if one was given, otherwise the first
// standard config file found in "." and ".revue". With no file it returns
// the defaults. A file that exists but fails to load is an error.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: []string{".", ".revue"}}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range o.dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault loads from standard locations, falling back to defaults on
// any error.
func LoadOrDefault() *Config {
	res, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return res.Config
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
