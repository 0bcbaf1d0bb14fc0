// Package watch re-runs a processing pass whenever its input file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/rdsparse/pkg/log"
)

// DefaultDebounce is the quiet period after the last change before a pass runs.
const DefaultDebounce = 250 * time.Millisecond

// RunFunc is one processing pass.
type RunFunc func(ctx context.Context) error

// Watcher watches a single file. Passes run on the goroutine calling Run and
// never overlap.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   log.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Values below 1ms keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= time.Millisecond {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for pass failures and watcher errors.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run runs fn once, then again after every write or re-creation of the
// watched file, until ctx is cancelled. The parent directory is watched so
// files replaced by rename are still picked up. A failing pass is logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context, fn RunFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.pass(ctx, fn)
	w.logger.Info("watching for changes", log.String("path", w.path))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			w.pass(ctx, fn)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) pass(ctx context.Context, fn RunFunc) {
	if err := fn(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("pass failed", log.String("path", w.path), log.Err(err))
	}
}
