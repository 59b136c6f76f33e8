package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// LiveReloadService turns file change notifications into reload events for
// the presentation loop
type LiveReloadService struct {
	watcher          ports.FileWatcher
	logger           *slog.Logger
	events           chan entities.Event
	mu               sync.Mutex
	watching         bool
	watchCancel      context.CancelFunc
	presentationPath string
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(watcher ports.FileWatcher, logger *slog.Logger) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher: watcher,
		logger:  logger.With("service", "live_reload"),
		// one pending reload is enough; later changes are coalesced into it
		events: make(chan entities.Event, 1),
	}
}

// Start starts watching the presentation file
func (s *LiveReloadService) Start(ctx context.Context, filePath string) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	s.watching = true
	s.presentationPath = filePath
	s.mu.Unlock()

	// Create a cancellable context for the watcher
	watchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.watchCancel = cancel
	s.mu.Unlock()

	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.watching = false
		s.watchCancel = nil
		s.mu.Unlock()
		return fmt.Errorf("starting watcher: %w", err)
	}

	go s.handleEvents(watchCtx, events)

	return nil
}

// Stop stops the live reload service
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.watching = false
	return s.watcher.Stop()
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// Events returns the reload events
func (s *LiveReloadService) Events() <-chan entities.Event {
	return s.events
}

// Close stops watching
func (s *LiveReloadService) Close() error {
	return s.Stop()
}

// handleEvents handles file change events
func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("file change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			if event.Type == ports.Deleted {
				// editors often delete and recreate; wait for the new file
				continue
			}

			select {
			case s.events <- entities.Event{Command: entities.CommandReload}:
			default:
				s.logger.Debug("reload already pending", slog.String("path", event.Path))
			}
		}
	}
}

// Ensure LiveReloadService implements ports.EventSource
var _ ports.EventSource = (*LiveReloadService)(nil)
