// Package watch runs the reconciliation batch on a fixed interval and
// keeps an eye on the mirror file between runs. The mirror is reloaded at
// the start of every batch, so an out-of-band local edit is only logged
// here; the next run picks it up.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/efgnet/wifisync/pkg/logging"
)

// RunFunc performs one reconciliation batch.
type RunFunc func(ctx context.Context) error

// Runner repeats a batch run on an interval until the context is canceled.
type Runner struct {
	interval   time.Duration
	mirrorPath string // empty disables the file watch
	run        RunFunc
}

// New creates a Runner. mirrorPath may be empty when mirroring is
// disabled.
func New(interval time.Duration, mirrorPath string, run RunFunc) *Runner {
	return &Runner{interval: interval, mirrorPath: mirrorPath, run: run}
}

// Run executes the first batch immediately, then keeps running on the
// configured interval. Batch failures are logged and do not stop the loop;
// only context cancellation ends it.
func (r *Runner) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	watcher, err := r.watchMirror(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("mirror file watch unavailable, continuing without it")
	}
	if watcher != nil {
		defer watcher.Close() //nolint:errcheck
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watch loop stopping")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		case event, ok := <-watcherEvents(watcher):
			if !ok {
				continue
			}
			if r.isMirrorEvent(event) {
				log.Info().
					Str("path", event.Name).
					Str("op", event.Op.String()).
					Msg("mirror file changed on disk, next run will reload it")
			}
		case err, ok := <-watcherErrors(watcher):
			if ok && err != nil {
				log.Warn().Err(err).Msg("mirror file watch error")
			}
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info().Msg("starting reconciliation run")
	if err := r.run(ctx); err != nil {
		log.Error().Err(err).Msg("reconciliation run failed")
	}
}

// watchMirror watches the mirror file's directory. Watching the directory
// instead of the file survives the rewrite-on-flush cycle, which replaces
// the file.
func (r *Runner) watchMirror(ctx context.Context) (*fsnotify.Watcher, error) {
	if r.mirrorPath == "" {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(r.mirrorPath)); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, err
	}

	logging.FromContext(ctx).Debug().Str("path", r.mirrorPath).Msg("watching mirror file")
	return watcher, nil
}

func (r *Runner) isMirrorEvent(event fsnotify.Event) bool {
	return filepath.Clean(event.Name) == filepath.Clean(r.mirrorPath) &&
		event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// watcherEvents and watcherErrors tolerate a nil watcher by returning nil
// channels, which block forever in the select.
func watcherEvents(w *fsnotify.Watcher) chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

func watcherErrors(w *fsnotify.Watcher) chan error {
	if w == nil {
		return nil
	}
	return w.Errors
}
