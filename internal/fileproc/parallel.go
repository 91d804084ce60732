// Package fileproc runs per-file work on a bounded worker pool.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panbanda/revue/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier is applied to NumCPU when no worker count is given.
// Parsing is CGO bound with some file I/O, so oversubscribe slightly.
const DefaultWorkerMultiplier = 2

// ErrTooLarge is reported for files over the configured size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// ProcessingError records a file that could not be processed.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects per-file failures.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Options tunes a batch run.
type Options struct {
	// Workers caps concurrency. Zero means NumCPU * DefaultWorkerMultiplier.
	Workers int
	// MaxFileSize skips larger files with ErrTooLarge. Zero disables the limit.
	MaxFileSize int64
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// Result pairs a file with its outcome. Err is set when the file failed.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// ContentSource provides file content.
type ContentSource interface {
	Read(path string) ([]byte, error)
}

// MapFiles reads each file through src and calls fn with a parser owned by the
// calling worker. Results come back in input order, one per file. Once ctx is
// cancelled no new files are started; unstarted files carry ctx.Err().
// Progress is reported through the tracker attached with WithTracker.
func MapFiles[T any](
	ctx context.Context,
	files []string,
	src ContentSource,
	opts Options,
	fn func(psr *parser.Parser, path string, content []byte) (T, error),
) ([]Result[T], *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	tracker := TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	results := make([]Result[T], len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(opts.workers()).WithContext(ctx)
	for i, path := range files {
		results[i].Path = path
		p.Go(func(ctx context.Context) error {
			if tracker != nil {
				defer tracker.Tick(path)
			}

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				errs.Add(path, err)
				return nil
			}

			content, err := src.Read(path)
			if err == nil && opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
				err = ErrTooLarge
			}
			if err != nil {
				results[i].Err = err
				errs.Add(path, err)
				return nil
			}

			psr := parser.New()
			defer psr.Close()

			value, err := fn(psr, path, content)
			if err != nil {
				results[i].Err = err
				errs.Add(path, err)
				return nil
			}
			results[i].Value = value
			return nil
		})
	}
	_ = p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
