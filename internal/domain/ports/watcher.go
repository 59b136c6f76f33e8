package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to the presentation file. Bursts of writes are
// debounced into one event.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// FileChangeEvent is one debounced change to a watched file
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType is what happened to a watched file
type ChangeType int

const (
	Modified ChangeType = iota
	// Created is reported when an editor saves by replacing the file
	Created
	Deleted
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}
