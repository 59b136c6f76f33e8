package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

func testBindings() map[entities.Command][]string {
	return map[entities.Command][]string{
		entities.CommandNext:                {"l", "right", "space"},
		entities.CommandPrevious:            {"h", "left"},
		entities.CommandFirst:               {"gg"},
		entities.CommandLast:                {"G"},
		entities.CommandJump:                {"enter"},
		entities.CommandQuit:                {"q", "ctrl+c"},
		entities.CommandRedraw:              {"ctrl+r"},
		entities.CommandRefreshCapabilities: {"ctrl+l"},
		entities.CommandReload:              {"r"},
	}
}

// feed sends keys and collects the commands produced
func feed(t *testing.T, keymap *Keymap, keys ...string) []entities.Event {
	t.Helper()
	var events []entities.Event
	for _, key := range keys {
		if event, ok := keymap.Feed(key); ok {
			events = append(events, event)
		}
	}
	return events
}

func TestKeymap_Feed(t *testing.T) {
	t.Run("single keys", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		events := feed(t, keymap, "l", KeyRight, KeySpace, "h", "q", "ctrl+c", "r", "ctrl+r", "ctrl+l")
		var commands []entities.Command
		for _, event := range events {
			commands = append(commands, event.Command)
		}
		assert.Equal(t, []entities.Command{
			entities.CommandNext, entities.CommandNext, entities.CommandNext,
			entities.CommandPrevious, entities.CommandQuit, entities.CommandQuit,
			entities.CommandReload, entities.CommandRedraw, entities.CommandRefreshCapabilities,
		}, commands)
	})

	t.Run("sequences", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		assert.Empty(t, feed(t, keymap, "g"))
		assert.Equal(t, []entities.Event{{Command: entities.CommandFirst}}, feed(t, keymap, "g"))
	})

	t.Run("broken sequence retries the last key", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		assert.Equal(t, []entities.Event{entities.Next()}, feed(t, keymap, "g", "l"))
	})

	t.Run("number before last jumps", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		assert.Equal(t, []entities.Event{entities.JumpTo(12)}, feed(t, keymap, "1", "2", "G"))
		assert.Equal(t, []entities.Event{{Command: entities.CommandLast}}, feed(t, keymap, "G"))
	})

	t.Run("number before jump key", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		assert.Equal(t, []entities.Event{entities.JumpTo(3)}, feed(t, keymap, "3", KeyEnter))
		assert.Empty(t, feed(t, keymap, KeyEnter), "jump needs a number")
	})

	t.Run("other keys discard the number", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		assert.Equal(t, []entities.Event{entities.Next()}, feed(t, keymap, "4", "l"))
		assert.Equal(t, []entities.Event{{Command: entities.CommandLast}}, feed(t, keymap, "G"))
	})

	t.Run("unbound keys are ignored", func(t *testing.T) {
		keymap, err := NewKeymap(testBindings())
		require.NoError(t, err)

		assert.Empty(t, feed(t, keymap, "x", "y", KeyTab))
	})
}

func TestNewKeymap_Errors(t *testing.T) {
	t.Run("conflicting bindings", func(t *testing.T) {
		_, err := NewKeymap(map[entities.Command][]string{
			entities.CommandNext: {"x"},
			entities.CommandQuit: {"x"},
		})
		assert.Error(t, err)
	})

	t.Run("prefix of a sequence", func(t *testing.T) {
		_, err := NewKeymap(map[entities.Command][]string{
			entities.CommandNext:  {"g"},
			entities.CommandFirst: {"gg"},
		})
		assert.Error(t, err)
	})

	t.Run("empty binding", func(t *testing.T) {
		_, err := NewKeymap(map[entities.Command][]string{entities.CommandNext: {" "}})
		assert.Error(t, err)
	})
}
