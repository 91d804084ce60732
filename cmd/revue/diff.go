package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/internal/vcs"
	"github.com/panbanda/revue/pkg/analyzer"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/watch"
	"github.com/urfave/cli/v2"
)

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare issues in the working tree against a git revision",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ref",
				Value: "HEAD",
				Usage: "Revision to compare against",
			},
		},
		Action: runDiffCmd,
	}
}

// FileDiff lists the issues a file gained and lost relative to the base revision.
type FileDiff struct {
	Path     string         `json:"path" toon:"path"`
	Added    []models.Issue `json:"added" toon:"added"`
	Resolved []models.Issue `json:"resolved" toon:"resolved"`
}

type diffResult struct {
	Ref   string     `json:"ref" toon:"ref"`
	Files []FileDiff `json:"files" toon:"files"`
}

func runDiffCmd(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	paths := getPaths(c)
	work, err := resolveTarget(e, paths, "")
	if err != nil {
		return err
	}
	base, err := resolveTarget(e, paths, c.String("ref"))
	if err != nil {
		return err
	}
	repo, err := vcs.Open(repoDir(paths[0]))
	if err != nil {
		return err
	}

	ctx := context.Background()
	a := e.sharedAnalyzer()
	after, err := a.AnalyzeSources(ctx, work.files, work.src)
	if err != nil {
		return err
	}
	before, err := a.AnalyzeSources(ctx, base.files, base.src)
	if err != nil {
		return err
	}

	// Working tree paths are keyed by their repository-relative form.
	old := issuesByPath(before, func(p string) string { return p })
	cur := issuesByPath(after, func(p string) string {
		if rel, err := repo.RelPath(p); err == nil {
			return rel
		}
		return filepath.ToSlash(p)
	})

	res := diffResult{Ref: base.ref}
	var rows [][]string
	for _, path := range unionKeys(old, cur) {
		added, resolved := watch.Diff(old[path], cur[path])
		if len(added) == 0 && len(resolved) == 0 {
			continue
		}
		res.Files = append(res.Files, FileDiff{Path: path, Added: added, Resolved: resolved})
		rows = append(rows, []string{path, strconv.Itoa(len(added)), strconv.Itoa(len(resolved))})
	}

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if len(res.Files) == 0 && !formatter.Format().Structured() {
		formatter.Success("No issue changes since %s.", shortHash(base.ref))
		return nil
	}
	return formatter.Output(output.NewTable(
		fmt.Sprintf("Changes since %s", shortHash(base.ref)),
		[]string{"File", "Added", "Resolved"},
		rows,
		nil,
		res,
	))
}

func issuesByPath(rep *analyzer.Report, key func(string) string) map[string][]models.Issue {
	out := make(map[string][]models.Issue, len(rep.Files))
	for _, fr := range rep.Files {
		out[key(fr.Path)] = fr.Result.All()
	}
	return out
}

func unionKeys(maps ...map[string][]models.Issue) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
