package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

// Keymap turns a stream of keys into commands. Bindings are either a named
// key ("left", "ctrl+c") or a sequence of characters ("gg"). A number typed
// before the jump or last binding jumps to that slide.
type Keymap struct {
	bindings map[string]entities.Command
	prefixes map[string]bool

	pending []string
	digits  string
}

// NewKeymap builds a keymap from command bindings
func NewKeymap(bindings map[entities.Command][]string) (*Keymap, error) {
	k := &Keymap{
		bindings: make(map[string]entities.Command),
		prefixes: make(map[string]bool),
	}
	for command, sequences := range bindings {
		for _, sequence := range sequences {
			keys := splitSequence(sequence)
			if len(keys) == 0 {
				return nil, fmt.Errorf("empty key binding for %s", command)
			}
			name := strings.Join(keys, " ")
			if other, ok := k.bindings[name]; ok && other != command {
				return nil, fmt.Errorf("key %q bound to both %s and %s", sequence, other, command)
			}
			k.bindings[name] = command
			for i := 1; i < len(keys); i++ {
				k.prefixes[strings.Join(keys[:i], " ")] = true
			}
		}
	}
	for name := range k.prefixes {
		if command, ok := k.bindings[name]; ok {
			return nil, fmt.Errorf("key %q (%s) is a prefix of another binding", name, command)
		}
	}
	return k, nil
}

// splitSequence splits a binding into keys
func splitSequence(sequence string) []string {
	sequence = strings.TrimSpace(sequence)
	if sequence == "" {
		return nil
	}
	lower := strings.ToLower(sequence)
	if isNamedKey(lower) {
		return []string{lower}
	}
	var keys []string
	for _, r := range sequence {
		keys = append(keys, string(r))
	}
	return keys
}

// Feed consumes one key and returns the resulting event, if any
func (k *Keymap) Feed(key string) (entities.Event, bool) {
	if len(k.pending) == 0 && len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		if _, bound := k.bindings[key]; !bound {
			k.digits += key
			return entities.Event{}, false
		}
	}

	k.pending = append(k.pending, key)
	name := strings.Join(k.pending, " ")

	if command, ok := k.bindings[name]; ok {
		digits := k.digits
		k.reset()
		return k.event(command, digits)
	}
	if k.prefixes[name] {
		return entities.Event{}, false
	}

	retry := len(k.pending) > 1
	k.reset()
	if retry {
		return k.Feed(key)
	}
	return entities.Event{}, false
}

func (k *Keymap) reset() {
	k.pending = nil
	k.digits = ""
}

func (k *Keymap) event(command entities.Command, digits string) (entities.Event, bool) {
	if digits != "" && (command == entities.CommandJump || command == entities.CommandLast) {
		slide, err := strconv.Atoi(digits)
		if err == nil {
			return entities.JumpTo(slide), true
		}
	}
	if command == entities.CommandJump {
		// jumping needs a slide number
		return entities.Event{}, false
	}
	return entities.Event{Command: command}, true
}
