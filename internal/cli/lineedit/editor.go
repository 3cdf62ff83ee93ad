package lineedit

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInterrupted is returned by ReadLine when the user presses Ctrl+C.
var ErrInterrupted = errors.New("lineedit: interrupted")

// Recall supplies history entries for Up/Down navigation.
type Recall interface {
	// Older steps toward the oldest entry; ok is false at the boundary.
	Older() (entry string, ok bool)
	// Newer steps toward the newest entry; ok is false at the boundary.
	Newer() (entry string, ok bool)
}

// Editor reads single lines from a Terminal with in-place editing.
type Editor struct {
	term   Terminal
	prompt string
	recall Recall
	buf    Buffer
	// echo is false when input is piped: the line is never redrawn.
	echo bool
}

// New creates an editor drawing prompt before the input. recall may be nil.
// A terminal that reports IsTerminal() == false gets no cursor escapes.
func New(t Terminal, prompt string, recall Recall) *Editor {
	echo := true
	if it, ok := t.(interface{ IsTerminal() bool }); ok {
		echo = it.IsTerminal()
	}
	return &Editor{
		term:   t,
		prompt: prompt,
		recall: recall,
		echo:   echo,
	}
}

// ReadLine reads keys until Enter and returns the trimmed buffer.
// It returns io.EOF on end of input or Ctrl+D on an empty line, and
// ErrInterrupted on Ctrl+C. The terminal is in raw mode only while
// ReadLine runs.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	restore, err := e.term.Raw()
	if err != nil {
		return "", err
	}
	defer func() { _ = restore() }()

	e.buf.Reset()
	if err := e.term.WriteString(e.prompt); err != nil {
		return "", err
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		ev, err := e.term.ReadKey()
		if err != nil {
			if errors.Is(err, io.EOF) && e.buf.Len() > 0 {
				// Input ended mid-line: submit what was typed.
				return e.finish()
			}
			return "", err
		}

		line, done, err := e.handle(ev)
		if done || err != nil {
			return line, err
		}
	}
}

// handle applies one key event. done reports that the read has ended.
func (e *Editor) handle(ev KeyEvent) (line string, done bool, err error) {
	switch {
	case ev.IsPrintable():
		e.buf.Insert(ev.Rune)
		return "", false, e.redraw()

	case ev.Key == KeyBackspace:
		if e.buf.Backspace() {
			return "", false, e.redraw()
		}

	case ev.Key == KeyLeft && ev.Mod.Has(ModAlt):
		e.buf.WordLeft()
		return "", false, e.redraw()

	case ev.Key == KeyRight && ev.Mod.Has(ModAlt):
		e.buf.WordRight()
		return "", false, e.redraw()

	case ev.Key == KeyLeft:
		if e.buf.Left() {
			return "", false, e.placeCursor()
		}

	case ev.Key == KeyRight:
		if e.buf.Right() {
			return "", false, e.placeCursor()
		}

	case ev.Key == KeyUp:
		if e.recall != nil {
			if entry, ok := e.recall.Older(); ok {
				e.buf.SetText(entry)
				return "", false, e.redraw()
			}
		}

	case ev.Key == KeyDown:
		if e.recall != nil {
			if entry, ok := e.recall.Newer(); ok {
				e.buf.SetText(entry)
				return "", false, e.redraw()
			}
		}

	case ev.Key == KeyEnter:
		line, err := e.finish()
		return line, true, err

	case ev.Key == KeyInterrupt:
		if err := e.term.WriteString("^C\r\n"); err != nil {
			return "", true, err
		}
		return "", true, ErrInterrupted

	case ev.Key == KeyEOF:
		if e.buf.Len() == 0 {
			if err := e.term.WriteString("\r\n"); err != nil {
				return "", true, err
			}
			return "", true, io.EOF
		}
	}

	return "", false, nil
}

func (e *Editor) finish() (string, error) {
	if err := e.term.WriteString("\r\n"); err != nil {
		return "", err
	}
	return strings.TrimSpace(e.buf.String()), nil
}

// redraw re-renders the prompt and buffer on a cleared row and places
// the cursor. Calling it twice with the same state writes the same bytes.
func (e *Editor) redraw() error {
	if !e.echo {
		return nil
	}
	if err := e.term.ClearLine(); err != nil {
		return err
	}
	if err := e.term.WriteString(e.prompt + e.buf.String()); err != nil {
		return err
	}
	return e.placeCursor()
}

func (e *Editor) placeCursor() error {
	if !e.echo {
		return nil
	}
	return e.term.SetColumn(e.column())
}

// column is the terminal column of the cursor: prompt width plus the
// width of the text left of the cursor.
func (e *Editor) column() int {
	return displayWidth(e.prompt) + displayWidth(e.buf.BeforeCursor())
}
