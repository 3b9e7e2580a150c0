// Package dev runs the development loop: build once, serve, and rebuild
// whenever the rendered tree or the static assets change.
package dev

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
)

// Server is the HTTP runtime the loop starts and stops.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Options configures Run.
type Options struct {
	// WatchDirs are watched recursively for changes.
	WatchDirs []string
	// Rebuild runs one build. Errors are recorded in Status, never fatal.
	Rebuild func(ctx context.Context) error
	Status  *Status
	Server  Server
	// Debounce defaults to DefaultDebounce.
	Debounce        time.Duration
	ShutdownTimeout time.Duration
}

// Run performs the initial build, starts the server and rebuilds on change
// until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Status == nil {
		opts.Status = NewStatus()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	rebuild(ctx, opts, "initial")

	if err := opts.Server.Start(ctx); err != nil {
		return err
	}

	watcher, err := newWatcher(opts.WatchDirs)
	if err != nil {
		stopServer(opts)
		return err
	}
	defer func() { _ = watcher.Close() }()

	fire, trigger := newDebouncer(opts.Debounce)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rebuildWorker(ctx, opts, fire)
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down dev server...")
			stopServer(opts)
			wg.Wait()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				stopServer(opts)
				wg.Wait()
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				continue
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// rebuildWorker serializes rebuilds. Requests that arrive while a build runs
// collapse into one follow-up build, since fire holds at most one value.
func rebuildWorker(ctx context.Context, opts Options, fire <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-fire:
			rebuild(ctx, opts, "change")
		}
	}
}

func rebuild(ctx context.Context, opts Options, reason string) {
	start := time.Now()
	slog.Info("Rebuilding site", slog.String("reason", reason))
	if err := opts.Rebuild(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("Rebuild failed; serving last good build", logfields.Error(err))
		opts.Status.setError(err)
		return
	}
	opts.Status.setSuccess()
	slog.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func stopServer(opts Options) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := opts.Server.Stop(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
}
