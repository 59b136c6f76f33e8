package ports

import (
	"context"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// PresentationLoader loads and compiles a presentation file
type PresentationLoader interface {
	// Load reads, parses, resolves the theme and compiles the file at path
	Load(ctx context.Context, path string) (*entities.Presentation, error)
}

// EventSource produces presentation events (keys, resizes, reloads)
type EventSource interface {
	// Events returns the channel of events; it is closed when the source stops
	Events() <-chan entities.Event

	// Close stops the source
	Close() error
}

// SessionRecorder collects statistics about a running presentation
type SessionRecorder interface {
	// RecordRender records one repaint; cached is true when the layout was reused
	RecordRender(duration time.Duration, cached bool)

	// RecordReload records a recompilation triggered by a file change
	RecordReload(duration time.Duration, err error)

	// RecordImageFallback records an image painted as a placeholder
	RecordImageFallback()
}
