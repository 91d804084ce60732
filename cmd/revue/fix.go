package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/quickfix"
	"github.com/urfave/cli/v2"
)

// maxAutoFixes bounds --all so a fix that reintroduces its own issue
// cannot loop forever.
const maxAutoFixes = 500

func fixCmd() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "List or apply quick fixes in a Java file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "line",
				Aliases: []string{"l"},
				Usage:   "Line of the issue to fix",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Restrict to an issue category (e.g. unused_import, empty_catch)",
			},
			&cli.StringFlag{
				Name:  "fix",
				Usage: "Title of the fix to apply (default: the issue's first fix)",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List available fixes instead of applying one",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Apply every unused import and empty catch fix",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the fixed source instead of writing the file",
			},
		},
		Action: runFixCmd,
	}
}

type fixView struct {
	Line     int      `json:"line" toon:"line"`
	Category string   `json:"category" toon:"category"`
	Message  string   `json:"message" toon:"message"`
	Fixes    []string `json:"fixes" toon:"fixes"`
}

func runFixCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("fix expects exactly one file")
	}
	path := c.Args().First()

	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	var category models.Category
	if s := c.String("category"); s != "" {
		cat, ok := models.ParseCategory(s)
		if !ok {
			return fmt.Errorf("unknown category %q", s)
		}
		category = cat
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f := &fixer{env: e, registry: quickfix.NewRegistry(quickfix.WithDenylist(e.sharedAnalyzer().Denylist())), history: quickfix.NewHistory()}

	switch {
	case c.Bool("list"):
		return f.list(c, string(content), category)
	case c.Bool("all"):
		return f.all(c, path, string(content))
	case c.Int("line") > 0:
		return f.one(c, path, string(content), c.Int("line"), category, c.String("fix"))
	default:
		return fmt.Errorf("one of --line, --list or --all is required")
	}
}

type fixer struct {
	env      *env
	registry *quickfix.Registry
	history  *quickfix.History
}

func (f *fixer) analyze(src string) (*models.AnalysisResult, error) {
	result, err := f.env.sharedAnalyzer().Analyze([]byte(src))
	if err != nil {
		return nil, err
	}
	f.registry.Attach(result, src)
	return result, nil
}

func (f *fixer) list(c *cli.Context, src string, category models.Category) error {
	result, err := f.analyze(src)
	if err != nil {
		return err
	}

	var views []fixView
	var rows [][]string
	for _, issue := range result.All() {
		if !issue.HasQuickFixes() || (category != "" && issue.Category != category) {
			continue
		}
		titles := make([]string, len(issue.QuickFixes))
		for i, fix := range issue.QuickFixes {
			titles[i] = fix.Title()
		}
		views = append(views, fixView{Line: issue.Line, Category: string(issue.Category), Message: issue.Message, Fixes: titles})
		rows = append(rows, []string{strconv.Itoa(issue.Line), string(issue.Category), strings.Join(titles, "; ")})
	}

	formatter, err := f.env.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()
	if len(views) == 0 && !formatter.Format().Structured() {
		formatter.Info("No quick fixes available.")
		return nil
	}
	return formatter.Output(output.NewTable("Quick Fixes", []string{"Line", "Category", "Fixes"}, rows, nil, views))
}

func (f *fixer) one(c *cli.Context, path, src string, line int, category models.Category, title string) error {
	result, err := f.analyze(src)
	if err != nil {
		return err
	}
	issue, fix, err := quickfix.Select(result, line, category, title)
	if err != nil {
		return err
	}
	res, err := f.history.Apply(issue, fix)
	if err != nil {
		return err
	}
	return f.finish(c, path, res.Source, []string{res.Description})
}

// all applies mechanical fixes one at a time, re-analyzing after each so
// line numbers stay current.
func (f *fixer) all(c *cli.Context, path, src string) error {
	auto := map[string]bool{
		quickfix.ImportRemover{}.Title(): true,
		quickfix.CatchLogger{}.Title():   true,
	}
	var applied []string
	for range maxAutoFixes {
		result, err := f.analyze(src)
		if err != nil {
			return err
		}
		issue, fix := nextAutoFix(result, auto)
		if issue == nil {
			break
		}
		res, err := f.history.Apply(issue, fix)
		if err != nil {
			return err
		}
		src = res.Source
		applied = append(applied, res.Description)
	}
	if len(applied) == 0 {
		fmt.Fprintln(c.App.Writer, "Nothing to fix.")
		return nil
	}
	return f.finish(c, path, src, applied)
}

func nextAutoFix(result *models.AnalysisResult, auto map[string]bool) (*models.Issue, models.QuickFix) {
	for _, list := range [][]models.Issue{result.Errors, result.Suggestions} {
		for i := range list {
			for _, fix := range list[i].QuickFixes {
				if auto[fix.Title()] {
					return &list[i], fix
				}
			}
		}
	}
	return nil, nil
}

func (f *fixer) finish(c *cli.Context, path, src string, applied []string) error {
	if c.Bool("dry-run") {
		fmt.Fprint(c.App.Writer, src)
		if !strings.HasSuffix(src, "\n") {
			fmt.Fprintln(c.App.Writer)
		}
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(src), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	formatter := output.NewWriterFormatter(output.FormatText, c.App.Writer, f.env.colored(c, c.App.Writer))
	for _, d := range applied {
		formatter.Success("%s", d)
	}
	f.env.logger.Debug().Str("path", path).Int("fixes", len(applied)).Msg("wrote fixes")
	return nil
}
