package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/panbanda/revue/internal/history"
	"github.com/panbanda/revue/internal/output"
	"github.com/urfave/cli/v2"
)

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show issue trends recorded by previous analyze runs",
		ArgsUsage: "[file...]",
		Action:    runHistoryCmd,
	}
}

func runHistoryCmd(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}

	records, bad, err := history.Open(e.cfg.History.Path).Read()
	if err != nil {
		return err
	}
	if bad > 0 {
		e.logger.Warn().Int("lines", bad).Str("path", e.cfg.History.Path).Msg("skipped malformed history lines")
	}

	files := history.Files(records)
	if c.Args().Len() > 0 {
		files = nil
		for _, f := range c.Args().Slice() {
			files = append(files, filepath.Clean(f))
		}
	}

	trends := make([]history.Trend, 0, len(files))
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		t := history.ComputeTrend(f, history.ForFile(records, f))
		if t.Runs == 0 {
			continue
		}
		trends = append(trends, t)
		rows = append(rows, []string{
			f,
			strconv.Itoa(t.Runs),
			strconv.Itoa(t.First),
			strconv.Itoa(t.Last),
			fmt.Sprintf("%+.2f", t.Totals.Slope),
			t.Direction(),
		})
	}

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if len(trends) == 0 && !formatter.Format().Structured() {
		formatter.Info("No history recorded in %s.", e.cfg.History.Path)
		return nil
	}
	return formatter.Output(output.NewTable(
		"Issue Trends",
		[]string{"File", "Runs", "First", "Last", "Slope", "Trend"},
		rows,
		nil,
		trends,
	))
}
