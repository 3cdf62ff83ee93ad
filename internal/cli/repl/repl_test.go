package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/kvsh/internal/cli/lineedit"
)

// scriptTerminal feeds typed lines as key events.
type scriptTerminal struct {
	events []lineedit.KeyEvent
	err    error
	out    *bytes.Buffer
}

func newScriptTerminal(out *bytes.Buffer, lines ...string) *scriptTerminal {
	st := &scriptTerminal{out: out}
	for _, line := range lines {
		st.typeLine(line)
	}
	return st
}

func (s *scriptTerminal) typeLine(line string) {
	for _, r := range line {
		s.events = append(s.events, lineedit.KeyEvent{Key: lineedit.KeyRune, Rune: r})
	}
	s.events = append(s.events, lineedit.KeyEvent{Key: lineedit.KeyEnter})
}

func (s *scriptTerminal) ReadKey() (lineedit.KeyEvent, error) {
	if len(s.events) == 0 {
		if s.err != nil {
			return lineedit.KeyEvent{}, s.err
		}
		return lineedit.KeyEvent{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *scriptTerminal) WriteString(str string) error {
	s.out.WriteString(str)
	return nil
}

func (s *scriptTerminal) ClearLine() error    { return nil }
func (s *scriptTerminal) SetColumn(int) error { return nil }
func (s *scriptTerminal) Raw() (func() error, error) {
	return func() error { return nil }, nil
}

func newTestREPL(t *testing.T, term lineedit.Terminal, out io.Writer, store Store) (*REPL, *History) {
	t.Helper()
	h := NewHistory(filepath.Join(t.TempDir(), "history"), 0)
	d := NewDispatcher(store, out, WithHistory(h))
	r := New(Config{
		Terminal:   term,
		Output:     out,
		Dispatcher: d,
		History:    h,
		Label:      "127.0.0.1:6379",
	})
	return r, h
}

func TestPrompt(t *testing.T) {
	assert.Equal(t, "[localhost:6379]> ", Prompt("localhost:6379"))
}

func TestREPL_Run_Quit(t *testing.T) {
	var out bytes.Buffer
	term := newScriptTerminal(&out, "set a 1", "quit", "get a")
	store := newFakeStore()
	r, h := newTestREPL(t, term, &out, store)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{"generic:SET a 1"}, store.calls, "nothing runs after quit")
	assert.Equal(t, []string{"set a 1"}, h.Entries())
	assert.True(t, strings.HasPrefix(out.String(), "Enter commands (type 'quit' to exit):\n"))
	assert.True(t, strings.HasSuffix(out.String(), "Exiting kvsh.\n"))
	assert.Contains(t, out.String(), "[127.0.0.1:6379]> ")
}

func TestREPL_Run_SavesHistoryOnExit(t *testing.T) {
	tests := []struct {
		name string
		end  error
	}{
		{"end of input", io.EOF},
		{"interrupt", lineedit.ErrInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := newScriptTerminal(&out, "ping", "", "dbsize")
			if tt.end == lineedit.ErrInterrupted {
				term.events = append(term.events, lineedit.KeyEvent{Key: lineedit.KeyInterrupt})
			}
			r, h := newTestREPL(t, term, &out, newFakeStore())

			require.NoError(t, r.Run(context.Background()))

			data, err := os.ReadFile(h.File())
			require.NoError(t, err)
			assert.Equal(t, "ping\ndbsize\n", string(data), "blank lines are not recorded")
		})
	}
}

func TestREPL_Run_QuitSavesHistory(t *testing.T) {
	var out bytes.Buffer
	term := newScriptTerminal(&out, "get k", "QUIT")
	r, h := newTestREPL(t, term, &out, newFakeStore())

	require.NoError(t, r.Run(context.Background()))

	data, err := os.ReadFile(h.File())
	require.NoError(t, err)
	assert.Equal(t, "get k\n", string(data))
}

func TestREPL_Run_ErrorsDoNotEndSession(t *testing.T) {
	var out bytes.Buffer
	term := newScriptTerminal(&out, "GET", "GET a b", "quit")
	store := newFakeStore()
	r, h := newTestREPL(t, term, &out, store)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "Usage: GET <key>\n"))
	assert.Equal(t, []string{"GET", "GET a b"}, h.Entries())
}

func TestREPL_Run_HistoryRecall(t *testing.T) {
	var out bytes.Buffer
	term := newScriptTerminal(&out, "echo hi")
	term.events = append(term.events,
		lineedit.KeyEvent{Key: lineedit.KeyUp},
		lineedit.KeyEvent{Key: lineedit.KeyEnter},
	)
	term.typeLine("quit")
	store := newFakeStore()
	r, h := newTestREPL(t, term, &out, store)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"generic:ECHO hi", "generic:ECHO hi"}, store.calls)
	assert.Equal(t, []string{"echo hi", "echo hi"}, h.Entries())
}

func TestREPL_Run_TerminalError(t *testing.T) {
	var out bytes.Buffer
	term := newScriptTerminal(&out)
	term.err = errors.New("read /dev/tty: input/output error")
	r, _ := newTestREPL(t, term, &out, newFakeStore())

	err := r.Run(context.Background())
	assert.EqualError(t, err, "read /dev/tty: input/output error")
	assert.True(t, strings.HasSuffix(out.String(), "Exiting kvsh.\n"))
}

func TestREPL_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	term := newScriptTerminal(&out, "ping")
	store := newFakeStore()
	r, _ := newTestREPL(t, term, &out, store)

	require.NoError(t, r.Run(ctx))
	assert.Empty(t, store.calls)
}
