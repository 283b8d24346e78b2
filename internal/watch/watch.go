// Package watch notifies when a plan document changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JairoTorregrosa/picopala/internal/logging"
)

// DefaultDebounce is used when a non-positive interval is configured.
const DefaultDebounce = 200 * time.Millisecond

// relevantOps are the operations that can change the plan's content.
// Editors that save atomically produce Create or Rename rather than Write.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher watches a single file through its parent directory.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *logging.Logger

	events chan struct{}
	ready  chan struct{}
}

// New creates a Watcher for path. Call Run to start watching.
func New(path string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logger.With("watch_path", abs),
		events:   make(chan struct{}, 1),
		ready:    make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events receives one value per debounced burst of changes. Notifications
// that arrive while one is still unread are coalesced. The channel is closed
// when Run returns.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. It returns nil on cancellation and an
// error if the watch could not be established or fsnotify shut down.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	close(w.ready)
	w.logger.Debug("watch started", "debounce", w.debounce.String())

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != w.path || event.Op&relevantOps == 0 {
				continue
			}
			// Debounce: many editors emit several events for one save
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.logger.Debug("plan changed")
			select {
			case w.events <- struct{}{}:
			default:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}
