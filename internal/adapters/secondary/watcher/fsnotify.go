package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// FSNotifyWatcher watches files through OS change notifications. It watches
// the parent directory so editors that save by replacing the file are seen.
type FSNotifyWatcher struct {
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	events   chan ports.FileChangeEvent

	mu      sync.Mutex
	targets map[string]bool
	dirs    map[string]bool
	started bool
	stopped bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewFSNotifyWatcher creates a notification-based file watcher
func NewFSNotifyWatcher(debounce time.Duration, logger *slog.Logger) (*FSNotifyWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &FSNotifyWatcher{
		debounce: debounce,
		logger:   logger.With("component", "fsnotify_watcher"),
		watcher:  watcher,
		events:   make(chan ports.FileChangeEvent, 10),
		targets:  make(map[string]bool),
		dirs:     make(map[string]bool),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching a file for changes
func (w *FSNotifyWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil, errors.New("watcher stopped")
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.targets[absPath] = true

	if !w.started {
		w.started = true
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.loop(ctx)
		}()
	}

	w.logger.Debug("watching file", slog.String("path", absPath))
	return w.events, nil
}

// Stop stops the file watcher and closes the event channel
func (w *FSNotifyWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	err := w.watcher.Close()
	close(w.events)

	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}

// loop collects notifications and reports each changed file once it has
// been quiet for the debounce period
func (w *FSNotifyWatcher) loop(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]ports.ChangeType)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isTarget(event.Name) {
				continue
			}
			changeType, relevant := changeTypeOf(event.Op)
			if !relevant {
				continue
			}
			pending[event.Name] = changeType
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timer.C:
			for path, changeType := range pending {
				event := ports.FileChangeEvent{
					Path:      path,
					Type:      changeType,
					Timestamp: time.Now(),
				}
				select {
				case w.events <- event:
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
			clear(pending)
		}
	}
}

func (w *FSNotifyWatcher) isTarget(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.targets[filepath.Clean(name)]
}

// changeTypeOf maps a notification to a change type; attribute changes are
// not reported
func changeTypeOf(op fsnotify.Op) (ports.ChangeType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return ports.Created, true
	case op.Has(fsnotify.Write):
		return ports.Modified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ports.Deleted, true
	default:
		return ports.Modified, false
	}
}

// Ensure FSNotifyWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*FSNotifyWatcher)(nil)
