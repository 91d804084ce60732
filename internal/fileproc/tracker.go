package fileproc

import (
	"context"
	"sync/atomic"
)

// ProgressFunc receives the number of finished files, the batch size and the
// file that just finished.
type ProgressFunc func(done, total int, path string)

// Tracker counts finished files across workers. It is safe for concurrent use.
type Tracker struct {
	total    atomic.Int32
	done     atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a tracker reporting to callback, which may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add grows the expected total by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int32(n))
}

// Tick records one finished file.
func (t *Tracker) Tick(path string) {
	done := int(t.done.Add(1))
	if t.callback != nil {
		t.callback(done, int(t.total.Load()), path)
	}
}

// Done returns the number of finished files.
func (t *Tracker) Done() int {
	return int(t.done.Load())
}

// Total returns the expected number of files.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker attaches a tracker to ctx for the batch functions in this package.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker attached to ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
