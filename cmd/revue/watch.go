package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/revue/internal/history"
	"github.com/panbanda/revue/internal/logging"
	"github.com/panbanda/revue/internal/output"
	"github.com/panbanda/revue/pkg/models"
	"github.com/panbanda/revue/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Re-analyze Java files as they change",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Wait this long after the last change before re-analyzing",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, e.cfg, e.sharedAnalyzer(), c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.SetLogger(logging.Component(e.logger, "watch"))

	var log *history.Log
	if e.cfg.History.Enabled {
		log = history.Open(e.cfg.History.Path)
	}
	watcher.SetCallback(func(ch watch.Change) {
		rel := displayPath(ch.Path)
		printChange(c, rel, ch)
		if log != nil && ch.Result != nil {
			if err := log.Append(history.NewRecord(rel, ch.Result.Result, time.Now())); err != nil {
				e.logger.Warn().Err(err).Msg("failed to record history")
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(c.App.ErrWriter, "\nStopping watch...")
		cancel()
	}()

	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// displayPath shortens an absolute path to one relative to the working
// directory, matching the paths analyze records.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if r, err := filepath.Rel(wd, path); err == nil {
		return r
	}
	return path
}

func printChange(c *cli.Context, rel string, ch watch.Change) {
	w := c.App.Writer

	stamp := time.Now().Format("15:04:05")
	switch {
	case ch.Err != nil:
		color.New(color.FgRed).Fprintf(w, "[%s] %s: %v\n", stamp, rel, ch.Err)
		return
	case ch.Removed:
		color.New(color.FgCyan).Fprintf(w, "[%s] %s removed, %d issues resolved\n", stamp, rel, len(ch.Resolved))
		return
	case len(ch.New) == 0 && len(ch.Resolved) == 0:
		fmt.Fprintf(w, "[%s] %s: no change\n", stamp, rel)
		return
	}

	fmt.Fprintf(w, "[%s] %s: %d new, %d resolved (%d total)\n",
		stamp, rel, len(ch.New), len(ch.Resolved), ch.Result.Result.Total())
	for _, issue := range ch.New {
		fmt.Fprintf(w, "  %s line %d: %s\n", output.SeverityColor(issue.Severity, "+"), issue.Line, issue.Message)
	}
	for _, issue := range ch.Resolved {
		fmt.Fprintf(w, "  %s line %d: %s\n", color.GreenString("-"), issue.Line, resolvedLabel(issue))
	}
}

func resolvedLabel(issue models.Issue) string {
	return fmt.Sprintf("%s (%s)", issue.Message, issue.Category)
}
