package lineedit

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"sync"

	"golang.org/x/term"
)

// escClearLine returns to column 0 and erases the whole row.
const escClearLine = "\r\x1b[2K"

// Terminal is the raw-mode capability the editor needs: read one key
// event, write text, clear the current row and place the cursor.
type Terminal interface {
	ReadKey() (KeyEvent, error)
	WriteString(s string) error
	ClearLine() error
	// SetColumn moves the cursor to the zero-based column of the current row.
	SetColumn(col int) error
	// Raw switches input to raw mode and returns a function restoring it.
	Raw() (restore func() error, err error)
}

// ANSITerminal implements Terminal with VT100 escape sequences over a
// reader/writer pair. Raw mode is only toggled when the input is a tty.
type ANSITerminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int

	mu    sync.Mutex
	saved *term.State // set while in raw mode
}

// NewTerminal creates a terminal reading keys from in and drawing to out.
func NewTerminal(in io.Reader, out io.Writer) *ANSITerminal {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &ANSITerminal{
		in:  bufio.NewReader(in),
		out: out,
		fd:  fd,
	}
}

// IsTerminal reports whether the input is an interactive terminal.
func (t *ANSITerminal) IsTerminal() bool {
	return t.fd >= 0
}

// ReadKey blocks for the next key event.
func (t *ANSITerminal) ReadKey() (KeyEvent, error) {
	return DecodeKey(t.in)
}

// WriteString writes s unchanged.
func (t *ANSITerminal) WriteString(s string) error {
	_, err := io.WriteString(t.out, s)
	return err
}

// ClearLine returns to column 0 and erases the row.
func (t *ANSITerminal) ClearLine() error {
	return t.WriteString(escClearLine)
}

// SetColumn returns to column 0 and moves right col cells.
func (t *ANSITerminal) SetColumn(col int) error {
	if col <= 0 {
		return t.WriteString("\r")
	}
	return t.WriteString("\r\x1b[" + strconv.Itoa(col) + "C")
}

// Raw puts the tty into raw mode. For non-tty input it is a no-op.
func (t *ANSITerminal) Raw() (func() error, error) {
	if t.fd < 0 {
		return func() error { return nil }, nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.saved = state
	t.mu.Unlock()
	return t.Restore, nil
}

// Restore leaves raw mode if it is active. It is safe to call from a
// signal handler goroutine and more than once.
func (t *ANSITerminal) Restore() error {
	t.mu.Lock()
	state := t.saved
	t.saved = nil
	t.mu.Unlock()

	if state == nil {
		return nil
	}
	return term.Restore(t.fd, state)
}
