package input

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/adapters/secondary/terminal"
	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

func receive(t *testing.T, events <-chan entities.Event) (entities.Event, bool) {
	t.Helper()
	select {
	case event, ok := <-events:
		return event, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an event")
		return entities.Event{}, false
	}
}

func TestKeySource(t *testing.T) {
	t.Run("decodes chunks into commands", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		chunks := make(chan terminal.Chunk, 2)
		chunks <- terminal.Chunk{Data: []byte("l\x1b[D")}
		chunks <- terminal.Chunk{Data: []byte("5Gq")}
		close(chunks)

		source := NewKeySource(chunks, keymap, nil)
		events := source.Events()

		var got []entities.Event
		for event := range events {
			got = append(got, event)
		}
		assert.Equal(t, []entities.Event{entities.Next(), entities.Previous(), entities.JumpTo(5), entities.Quit()}, got)
	})

	t.Run("late terminal replies are not keystrokes", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		chunks := make(chan terminal.Chunk, 3)
		chunks <- terminal.Chunk{Data: []byte("\x1b_Gi=31;O")}
		chunks <- terminal.Chunk{Data: []byte("K\x1b\\\x1b[?62;22c")}
		chunks <- terminal.Chunk{Data: []byte("l")}
		close(chunks)

		source := NewKeySource(chunks, keymap, nil)

		var got []entities.Event
		for event := range source.Events() {
			got = append(got, event)
		}
		assert.Equal(t, []entities.Event{entities.Next()}, got)
	})

	t.Run("read errors are reported", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		chunks := make(chan terminal.Chunk, 1)
		chunks <- terminal.Chunk{Err: errors.New("tty gone")}

		source := NewKeySource(chunks, keymap, nil)
		event, ok := receive(t, source.Events())
		require.True(t, ok)
		assert.EqualError(t, event.Err, "tty gone")

		_, ok = receive(t, source.Events())
		assert.False(t, ok, "stream closes after an error")
	})

	t.Run("close ends the stream", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		source := NewKeySource(make(chan terminal.Chunk), keymap, nil)
		events := source.Events()
		require.NoError(t, source.Close())
		require.NoError(t, source.Close())

		_, ok := receive(t, events)
		assert.False(t, ok)
	})
}

func TestResizeSource(t *testing.T) {
	source := NewResizeSource()
	events := source.Events()

	source.signals <- nil
	event, ok := receive(t, events)
	require.True(t, ok)
	assert.Equal(t, entities.CommandResize, event.Command)

	require.NoError(t, source.Close())
	_, ok = receive(t, events)
	assert.False(t, ok)
}
