package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/panbanda/revue/internal/fileproc"
	"github.com/panbanda/revue/internal/history"
	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/internal/progress"
	"github.com/panbanda/revue/internal/report"
	"github.com/panbanda/revue/internal/scanner"
	"github.com/panbanda/revue/internal/vcs"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/quickfix"
	"github.com/panbanda/revue/pkg/source"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze Java files and report issues",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ref",
				Usage: "Analyze files as of a git revision instead of the working tree",
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: "Also write an HTML report to this file",
			},
			&cli.BoolFlag{
				Name:  "fail-on-error",
				Usage: "Exit with status 2 when any error-kind issue is found",
			},
		},
		Action: runAnalyzeCmd,
	}
}

// target is a resolved batch: the files to analyze and where to read them.
type target struct {
	files []string
	src   source.ContentSource
	ref   string
}

func resolveTarget(e *env, paths []string, ref string) (*target, error) {
	if ref == "" {
		files, err := scanner.NewScanner(e.cfg).Scan(paths)
		if err != nil {
			return nil, err
		}
		return &target{files: files, src: source.NewFilesystem()}, nil
	}

	gs, err := source.NewGit(repoDir(paths[0]), ref)
	if err != nil {
		return nil, err
	}
	all, err := gs.Files()
	if err != nil {
		return nil, err
	}
	prefixes, err := gitPrefixes(paths)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range all {
		if e.cfg.ShouldExclude(filepath.FromSlash(f)) || !underAny(f, prefixes) {
			continue
		}
		files = append(files, f)
	}
	return &target{files: files, src: gs, ref: gs.Revision()}, nil
}

// gitPrefixes converts path arguments to repository-relative prefixes.
// The repository root yields ".", which matches everything.
func gitPrefixes(paths []string) ([]string, error) {
	repo, err := vcs.Open(repoDir(paths[0]))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := repo.RelPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// repoDir returns a directory from which to discover the repository.
func repoDir(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

func underAny(file string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" || p == "." || file == p || strings.HasPrefix(file, p+"/") {
			return true
		}
	}
	return false
}

func runAnalyzeCmd(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	paths := getPaths(c)
	t, err := resolveTarget(e, paths, c.String("ref"))
	if err != nil {
		return err
	}
	if len(t.files) == 0 {
		return fmt.Errorf("no Java files found in %s", strings.Join(paths, ", "))
	}

	a := e.sharedAnalyzer()
	ch, err := e.cache()
	if err != nil {
		return err
	}

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	ctx := context.Background()
	var tracker *progress.Tracker
	if formatter.Format() == output.FormatText && c.String("output") == "" {
		tracker = progress.NewTrackerTo(c.App.ErrWriter, "Analyzing", len(t.files))
		ctx = fileproc.WithTracker(ctx, tracker.FileTracker())
	}

	start := time.Now()
	rep, hits, err := ch.Analyze(ctx, a, t.files, t.src)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return err
	}
	e.logger.Info().
		Int("files", len(rep.Files)).
		Int("cache_hits", hits).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	registry := quickfix.NewRegistry(quickfix.WithDenylist(a.Denylist()))
	for i := range rep.Files {
		registry.Attach(rep.Files[i].Result, rep.Files[i].Source)
	}

	if e.cfg.History.Enabled && t.ref == "" {
		recordHistory(e, rep)
	}

	built := report.Build(rep, report.Metadata{
		GeneratedAt: time.Now().UTC(),
		Version:     version,
		Paths:       paths,
		Ref:         t.ref,
		Thresholds:  a.Thresholds(),
		CacheHits:   hits,
	})
	if err := formatter.Output(built); err != nil {
		return err
	}

	if htmlPath := c.String("html"); htmlPath != "" {
		r, err := report.NewRenderer()
		if err != nil {
			return err
		}
		if err := r.RenderToFile(built, htmlPath); err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "HTML report written to %s\n", htmlPath)
	}

	if c.Bool("fail-on-error") && rep.Summary.Errors > 0 {
		return cli.Exit(fmt.Sprintf("%d errors found", rep.Summary.Errors), 2)
	}
	return nil
}

func recordHistory(e *env, rep *analyzer.Report) {
	now := time.Now()
	records := make([]history.Record, 0, len(rep.Files))
	for _, fr := range rep.Files {
		records = append(records, history.NewRecord(fr.Path, fr.Result, now))
	}
	if err := history.Open(e.cfg.History.Path).Append(records...); err != nil {
		e.logger.Warn().Err(err).Str("path", e.cfg.History.Path).Msg("failed to record history")
	}
}
