package lineedit

import (
	"bufio"
	"fmt"
	"unicode"
)

// Key identifies a decoded key.
type Key uint8

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
	KeyInterrupt // Ctrl+C
	KeyEOF       // Ctrl+D
	KeyControl   // any other control character
	KeyUnknown   // unrecognized escape sequence
)

var keyNames = map[Key]string{
	KeyNone:      "None",
	KeyRune:      "Rune",
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyEscape:    "Escape",
	KeyInterrupt: "Ctrl+C",
	KeyEOF:       "Ctrl+D",
	KeyControl:   "Control",
	KeyUnknown:   "Unknown",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// Modifier is a bit set of modifier keys held with a key.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModAlt   Modifier = 1 << 0
	ModCtrl  Modifier = 1 << 1
	ModShift Modifier = 1 << 2
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// KeyEvent is one decoded keystroke.
type KeyEvent struct {
	Key  Key
	Rune rune // set for KeyRune and KeyControl
	Mod  Modifier
}

// IsPrintable reports whether the event inserts text.
func (e KeyEvent) IsPrintable() bool {
	return e.Key == KeyRune && e.Mod == ModNone && !unicode.IsControl(e.Rune)
}

// String returns a description like "Alt+Left" or "Rune('a')".
func (e KeyEvent) String() string {
	prefix := ""
	if e.Mod.Has(ModCtrl) {
		prefix += "Ctrl+"
	}
	if e.Mod.Has(ModAlt) {
		prefix += "Alt+"
	}
	if e.Mod.Has(ModShift) {
		prefix += "Shift+"
	}
	if e.Key == KeyRune {
		return fmt.Sprintf("%sRune(%q)", prefix, e.Rune)
	}
	return prefix + e.Key.String()
}

// DecodeKey reads one key event from r. Escape sequences are only treated
// as such when their bytes are already buffered; a lone ESC is KeyEscape.
func DecodeKey(r *bufio.Reader) (KeyEvent, error) {
	ch, _, err := r.ReadRune()
	if err != nil {
		return KeyEvent{}, err
	}

	switch ch {
	case '\r':
		// Swallow the LF of a CRLF pair.
		if r.Buffered() > 0 {
			if next, err := r.Peek(1); err == nil && next[0] == '\n' {
				_, _ = r.ReadByte()
			}
		}
		return KeyEvent{Key: KeyEnter}, nil
	case '\n':
		return KeyEvent{Key: KeyEnter}, nil
	case 0x7f, 0x08:
		return KeyEvent{Key: KeyBackspace}, nil
	case 0x03:
		return KeyEvent{Key: KeyInterrupt}, nil
	case 0x04:
		return KeyEvent{Key: KeyEOF}, nil
	case 0x1b:
		return decodeEscape(r)
	}

	if unicode.IsControl(ch) {
		return KeyEvent{Key: KeyControl, Rune: ch}, nil
	}
	return KeyEvent{Key: KeyRune, Rune: ch}, nil
}

func decodeEscape(r *bufio.Reader) (KeyEvent, error) {
	if r.Buffered() == 0 {
		return KeyEvent{Key: KeyEscape}, nil
	}

	next, _, err := r.ReadRune()
	if err != nil {
		return KeyEvent{}, err
	}

	switch next {
	case '[':
		return decodeCSI(r)
	case 'O':
		// SS3: application cursor mode arrows. Without a buffered final
		// byte this is Alt+Shift+O.
		if r.Buffered() == 0 {
			return KeyEvent{Key: KeyRune, Rune: 'O', Mod: ModAlt}, nil
		}
		final, err := r.ReadByte()
		if err != nil {
			return KeyEvent{}, err
		}
		return KeyEvent{Key: arrowKey(final)}, nil
	case 0x1b:
		// ESC ESC [ D: Alt held with an arrow on some terminals.
		ev, err := decodeEscape(r)
		if err != nil {
			return KeyEvent{}, err
		}
		ev.Mod |= ModAlt
		return ev, nil
	case 'b':
		return KeyEvent{Key: KeyLeft, Mod: ModAlt}, nil
	case 'f':
		return KeyEvent{Key: KeyRight, Mod: ModAlt}, nil
	case 0x7f:
		return KeyEvent{Key: KeyBackspace, Mod: ModAlt}, nil
	}

	if unicode.IsControl(next) {
		return KeyEvent{Key: KeyControl, Rune: next, Mod: ModAlt}, nil
	}
	return KeyEvent{Key: KeyRune, Rune: next, Mod: ModAlt}, nil
}

// maxCSIParams caps the parameter bytes kept from one CSI sequence.
const maxCSIParams = 16

// decodeCSI consumes "ESC [ params final" and maps arrows with xterm
// modifier parameters ("1;3D" is Alt+Left). An overlong sequence is
// still consumed up to its final byte and reported as KeyUnknown.
func decodeCSI(r *bufio.Reader) (KeyEvent, error) {
	var (
		params   []byte
		overlong bool
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return KeyEvent{}, err
		}
		if b >= 0x40 && b <= 0x7e {
			if overlong {
				return KeyEvent{Key: KeyUnknown}, nil
			}
			ev := KeyEvent{Key: arrowKey(b)}
			if ev.Key != KeyUnknown {
				ev.Mod = csiModifier(params)
			}
			return ev, nil
		}
		if len(params) >= maxCSIParams {
			overlong = true
			continue
		}
		params = append(params, b)
	}
}

func arrowKey(final byte) Key {
	switch final {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	default:
		return KeyUnknown
	}
}

// csiModifier decodes the xterm modifier parameter: value-1 is a bit set
// of Shift(1), Alt(2), Ctrl(4), Meta(8). Meta is folded into Alt.
func csiModifier(params []byte) Modifier {
	sep := -1
	for i, b := range params {
		if b == ';' {
			sep = i
		}
	}
	if sep < 0 || sep == len(params)-1 {
		return ModNone
	}

	n := 0
	for _, b := range params[sep+1:] {
		if b < '0' || b > '9' {
			return ModNone
		}
		n = n*10 + int(b-'0')
	}
	if n < 2 {
		return ModNone
	}

	bits := n - 1
	var mod Modifier
	if bits&1 != 0 {
		mod |= ModShift
	}
	if bits&2 != 0 || bits&8 != 0 {
		mod |= ModAlt
	}
	if bits&4 != 0 {
		mod |= ModCtrl
	}
	return mod
}
