// Package lineedit provides the raw-mode line editor used by the kvsh shell.
//
// This package implements single-line editing without a terminal UI library:
//
//   - key.go: key events and decoding of raw terminal bytes / escape sequences
//   - buffer.go: the rune buffer, cursor and word-wise motion
//   - terminal.go: the Terminal capability and its ANSI implementation
//   - editor.go: the ReadLine loop, history recall and redraw
//
// Every mutation redraws the whole logical line (clear row, prompt, buffer,
// cursor column), so a shorter render never leaves stale characters behind.
package lineedit
