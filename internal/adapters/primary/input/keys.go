package input

import (
	"unicode/utf8"
)

// Named keys
const (
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyPageUp    = "pgup"
	KeyPageDown  = "pgdown"
	KeyHome      = "home"
	KeyEnd       = "end"
	KeySpace     = "space"
	KeyEnter     = "enter"
	KeyTab       = "tab"
	KeyBackspace = "backspace"
	KeyEscape    = "esc"
)

var escapeSequences = map[string]string{
	"\x1b[A":  KeyUp,
	"\x1b[B":  KeyDown,
	"\x1b[C":  KeyRight,
	"\x1b[D":  KeyLeft,
	"\x1bOA":  KeyUp,
	"\x1bOB":  KeyDown,
	"\x1bOC":  KeyRight,
	"\x1bOD":  KeyLeft,
	"\x1b[5~": KeyPageUp,
	"\x1b[6~": KeyPageDown,
	"\x1b[H":  KeyHome,
	"\x1b[F":  KeyEnd,
	"\x1bOH":  KeyHome,
	"\x1bOF":  KeyEnd,
	"\x1b[1~": KeyHome,
	"\x1b[4~": KeyEnd,
	"\x1b[7~": KeyHome,
	"\x1b[8~": KeyEnd,
}

// isNamedKey reports whether name is a single key rather than a sequence
// of characters
func isNamedKey(name string) bool {
	switch name {
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyPageUp, KeyPageDown, KeyHome, KeyEnd,
		KeySpace, KeyEnter, KeyTab, KeyBackspace, KeyEscape:
		return true
	}
	if len(name) == len("ctrl+x") && name[:5] == "ctrl+" && name[5] >= 'a' && name[5] <= 'z' {
		return true
	}
	return false
}

// maxStringSequence bounds how much input an unterminated string sequence
// may swallow
const maxStringSequence = 4096

// DecodeKeys splits raw terminal input into key names. Unknown escape
// sequences and terminal replies are dropped.
func DecodeKeys(data []byte) []string {
	var d Decoder
	return d.Decode(data)
}

// Decoder splits a stream of terminal input chunks into key names. Terminal
// replies sent as string sequences (APC, OSC, DCS, SOS, PM) are dropped,
// even when a reply is split across chunks.
type Decoder struct {
	inString   bool
	stringLen  int
	terminator bool
}

// Decode decodes one chunk
func (d *Decoder) Decode(data []byte) []string {
	var keys []string
	if d.terminator {
		d.terminator = false
		if len(data) > 0 && data[0] == '\\' {
			data = data[1:]
		}
	}
	for len(data) > 0 {
		if d.inString {
			data = d.skipString(data)
			continue
		}
		if len(data) >= 2 && data[0] == 0x1b && isStringIntroducer(data[1]) {
			d.inString = true
			d.stringLen = 0
			data = data[2:]
			continue
		}
		key, n := decodeKey(data)
		data = data[n:]
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// skipString consumes string sequence content up to and including its
// terminator, BEL or ESC \
func (d *Decoder) skipString(data []byte) []byte {
	for i, c := range data {
		switch c {
		case 0x07:
			d.inString = false
			return data[i+1:]
		case 0x1b:
			d.inString = false
			switch {
			case i+1 == len(data):
				d.terminator = true
				return nil
			case data[i+1] == '\\':
				return data[i+2:]
			default:
				// an escape that is not ST aborts the string
				return data[i:]
			}
		}
		d.stringLen++
		if d.stringLen > maxStringSequence {
			d.inString = false
			return data[i+1:]
		}
	}
	return nil
}

func isStringIntroducer(c byte) bool {
	switch c {
	case '_', ']', 'P', 'X', '^':
		return true
	}
	return false
}

func decodeKey(data []byte) (string, int) {
	c := data[0]
	switch {
	case c == 0x1b:
		return decodeEscape(data)
	case c == '\r' || c == '\n':
		return KeyEnter, 1
	case c == '\t':
		return KeyTab, 1
	case c == 0x7f || c == 0x08:
		return KeyBackspace, 1
	case c == ' ':
		return KeySpace, 1
	case c >= 1 && c <= 26:
		return "ctrl+" + string(rune('a'+c-1)), 1
	case c < 0x20:
		return "", 1
	}

	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError {
		return "", size
	}
	return string(r), size
}

func decodeEscape(data []byte) (string, int) {
	if len(data) == 1 {
		return KeyEscape, 1
	}
	switch data[1] {
	case '[':
		// CSI: parameters then a final byte in 0x40-0x7e
		for i := 2; i < len(data); i++ {
			if data[i] >= 0x40 && data[i] <= 0x7e {
				return escapeSequences[string(data[:i+1])], i + 1
			}
		}
		return "", len(data)
	case 'O':
		if len(data) < 3 {
			return "", len(data)
		}
		return escapeSequences[string(data[:3])], 3
	case 0x1b:
		return KeyEscape, 1
	default:
		// alt+key is treated as the key itself
		key, n := decodeKey(data[1:])
		return key, n + 1
	}
}
