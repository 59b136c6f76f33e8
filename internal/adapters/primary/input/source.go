package input

import (
	"io"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slideterm/internal/adapters/secondary/terminal"
	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// KeySource turns raw terminal input into presentation commands
type KeySource struct {
	chunks  <-chan terminal.Chunk
	keymap  *Keymap
	decoder Decoder
	logger  *slog.Logger

	once   sync.Once
	events chan entities.Event
	done   chan struct{}
	closed sync.Once
}

// NewKeySource creates a key event source reading chunks
func NewKeySource(chunks <-chan terminal.Chunk, keymap *Keymap, logger *slog.Logger) *KeySource {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &KeySource{
		chunks: chunks,
		keymap: keymap,
		logger: logger.With("adapter", "keys"),
		events: make(chan entities.Event),
		done:   make(chan struct{}),
	}
}

// Events starts decoding on first call and returns the event stream
func (s *KeySource) Events() <-chan entities.Event {
	s.once.Do(func() {
		go s.run()
	})
	return s.events
}

// Close stops the source
func (s *KeySource) Close() error {
	s.closed.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *KeySource) run() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case chunk, ok := <-s.chunks:
			if !ok {
				return
			}
			if chunk.Err != nil {
				s.send(entities.Event{Err: chunk.Err})
				return
			}
			for _, key := range s.decoder.Decode(chunk.Data) {
				event, ok := s.keymap.Feed(key)
				if !ok {
					continue
				}
				s.logger.Debug("key command", slog.String("key", key), slog.String("command", event.Command.String()))
				if !s.send(event) {
					return
				}
			}
		}
	}
}

func (s *KeySource) send(event entities.Event) bool {
	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	}
}
