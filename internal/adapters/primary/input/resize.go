package input

import (
	"os"
	"os/signal"
	"sync"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// ResizeSource emits a resize command whenever the window size changes.
// The events carry no size; the presenter queries the terminal.
type ResizeSource struct {
	signals chan os.Signal

	once   sync.Once
	events chan entities.Event
	done   chan struct{}
	closed sync.Once
}

// NewResizeSource creates a resize event source
func NewResizeSource() *ResizeSource {
	return &ResizeSource{
		signals: make(chan os.Signal, 1),
		events:  make(chan entities.Event, 1),
		done:    make(chan struct{}),
	}
}

// Events subscribes to window change notifications on first call
func (s *ResizeSource) Events() <-chan entities.Event {
	s.once.Do(func() {
		notifyResize(s.signals)
		go s.run()
	})
	return s.events
}

// Close stops the source
func (s *ResizeSource) Close() error {
	s.closed.Do(func() {
		signal.Stop(s.signals)
		close(s.done)
	})
	return nil
}

func (s *ResizeSource) run() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case <-s.signals:
			select {
			case s.events <- entities.Event{Command: entities.CommandResize}:
			case <-s.done:
				return
			default:
				// a resize is already pending
			}
		}
	}
}
