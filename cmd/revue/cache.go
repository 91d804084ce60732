package main

import (
	"fmt"
	"time"

	"github.com/panbanda/revue/internal/output"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the analysis cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache statistics",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached results",
				Action: runCacheClear,
			},
		},
	}
}

func runCacheStats(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	ch, err := e.cache()
	if err != nil {
		return err
	}
	stats, err := ch.GetStats()
	if err != nil {
		return err
	}

	formatter, err := e.formatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if !ch.Enabled() && !formatter.Format().Structured() {
		formatter.Warning("Cache is disabled.")
		return nil
	}
	rows := [][]string{
		{"Directory", e.cfg.Cache.Dir},
		{"Entries", fmt.Sprintf("%d", stats.Entries)},
		{"Size", humanBytes(stats.TotalSize)},
		{"Oldest", stats.OldestAge.Round(time.Second).String()},
		{"Newest", stats.NewestAge.Round(time.Second).String()},
	}
	return formatter.Output(output.NewTable("Cache", []string{"Property", "Value"}, rows, nil, stats))
}

func runCacheClear(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	ch, err := e.cache()
	if err != nil {
		return err
	}
	if err := ch.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	output.NewWriterFormatter(output.FormatText, c.App.Writer, e.colored(c, c.App.Writer)).
		Success("Cache cleared: %s", e.cfg.Cache.Dir)
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
