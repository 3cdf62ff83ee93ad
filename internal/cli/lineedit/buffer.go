package lineedit

import "unicode"

// Buffer is the in-progress input line: runes plus a cursor offset.
// The cursor always satisfies 0 <= cursor <= len.
type Buffer struct {
	text   []rune
	cursor int
}

// String returns the buffer content.
func (b *Buffer) String() string { return string(b.text) }

// Len returns the number of runes in the buffer.
func (b *Buffer) Len() int { return len(b.text) }

// Cursor returns the cursor offset in runes.
func (b *Buffer) Cursor() int { return b.cursor }

// BeforeCursor returns the text left of the cursor.
func (b *Buffer) BeforeCursor() string { return string(b.text[:b.cursor]) }

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
}

// SetText replaces the content and moves the cursor to the end.
func (b *Buffer) SetText(s string) {
	b.text = append(b.text[:0], []rune(s)...)
	b.cursor = len(b.text)
}

// Insert puts r at the cursor and advances it.
func (b *Buffer) Insert(r rune) {
	b.text = append(b.text, 0)
	copy(b.text[b.cursor+1:], b.text[b.cursor:])
	b.text[b.cursor] = r
	b.cursor++
}

// Backspace deletes the rune before the cursor. It reports false at offset 0.
func (b *Buffer) Backspace() bool {
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	return true
}

// Left moves the cursor one rune left; false if already at 0.
func (b *Buffer) Left() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return true
}

// Right moves the cursor one rune right; false if already at the end.
func (b *Buffer) Right() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.cursor++
	return true
}

// WordLeft moves the cursor to the start of the current or previous word.
func (b *Buffer) WordLeft() {
	b.cursor = MoveToPreviousWord(b.text, b.cursor)
}

// WordRight moves the cursor to the start of the next word.
func (b *Buffer) WordRight() {
	b.cursor = MoveToNextWord(b.text, b.cursor)
}

// MoveToPreviousWord skips whitespace immediately before pos, then the
// run of non-whitespace before that, and returns the new offset.
func MoveToPreviousWord(text []rune, pos int) int {
	pos = clamp(pos, len(text))
	for pos > 0 && unicode.IsSpace(text[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(text[pos-1]) {
		pos--
	}
	return pos
}

// MoveToNextWord skips the run of non-whitespace at or after pos, then any
// whitespace following it, and returns the new offset.
func MoveToNextWord(text []rune, pos int) int {
	pos = clamp(pos, len(text))
	for pos < len(text) && !unicode.IsSpace(text[pos]) {
		pos++
	}
	for pos < len(text) && unicode.IsSpace(text[pos]) {
		pos++
	}
	return pos
}

func clamp(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}
