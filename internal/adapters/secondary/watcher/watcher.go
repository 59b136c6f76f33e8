// Package watcher reports changes to presentation files, through OS
// notifications or by polling.
package watcher

import (
	"io"
	"log/slog"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
	"github.com/fredcamaral/slideterm/internal/domain/ports"
)

// New returns the watcher selected by config. When notifications are
// unavailable it falls back to polling.
func New(config entities.WatcherConfig, logger *slog.Logger) ports.FileWatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Mode != "poll" {
		watcher, err := NewFSNotifyWatcher(config.GetDebounce(), logger)
		if err == nil {
			return watcher
		}
		logger.Warn("file notifications unavailable, polling instead", slog.String("error", err.Error()))
	}
	return NewPollingWatcher(config.GetInterval(), config.GetDebounce(), logger)
}
