// Package watch reports changes to the files a running session depends on:
// the config file and the background image.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Event names a watched file that changed.
type Event struct {
	Path string
}

// Watcher forwards changes of a fixed set of files.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]struct{}
	events   chan Event
	debounce time.Duration
	log      *slog.Logger
}

// New watches the directories holding paths. Empty paths are skipped.
// Directories are watched instead of the files so that editors replacing
// a file by rename keep being observed.
func New(logger *slog.Logger, paths ...string) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:       fw,
		files:    make(map[string]struct{}),
		events:   make(chan Event, 8),
		debounce: DefaultDebounce,
		log:      logger.With("component", "watch"),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Events is closed when Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run forwards debounced changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fs.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if _, ok := w.files[path]; !ok {
				continue
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[path] = struct{}{}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		case <-timer.C:
			for path := range pending {
				select {
				case w.events <- Event{Path: path}:
				case <-ctx.Done():
					return
				}
			}
			clear(pending)
		}
	}
}
