package repl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory("/tmp/kvsh_history", 0)
	if h == nil {
		t.Fatal("NewHistory returned nil")
	}
	if h.maxSize != DefaultHistorySize {
		t.Errorf("maxSize = %d, want %d", h.maxSize, DefaultHistorySize)
	}
	if h.entries == nil {
		t.Error("entries should be initialized")
	}
	if h.File() != "/tmp/kvsh_history" {
		t.Errorf("File() = %q", h.File())
	}
}

func TestDefaultHistoryFile(t *testing.T) {
	if !strings.HasSuffix(DefaultHistoryFile(), filepath.Join(".kvsh", "history")) {
		t.Errorf("DefaultHistoryFile() = %q", DefaultHistoryFile())
	}
}

func TestHistory_Add(t *testing.T) {
	h := NewHistory("", 0)

	h.Add("command1")
	h.Add("command2")
	h.Add("command3")

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want %d", h.Len(), 3)
	}
	if h.cursor != 3 {
		t.Errorf("cursor = %d, want 3 (fresh line)", h.cursor)
	}
}

func TestHistory_Add_MaxSize(t *testing.T) {
	h := NewHistory("", 3)

	h.Add("cmd1")
	h.Add("cmd2")
	h.Add("cmd3")
	h.Add("cmd4") // Should evict cmd1

	entries := h.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want %d", len(entries), 3)
	}
	if entries[0] != "cmd2" {
		t.Errorf("entries[0] = %q, want %q", entries[0], "cmd2")
	}
}

func TestHistory_OlderNewer(t *testing.T) {
	h := NewHistory("", 0)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	// Down on a fresh line does nothing.
	if _, ok := h.Newer(); ok {
		t.Error("Newer() on a fresh line should report false")
	}

	for _, want := range []string{"c", "b", "a"} {
		got, ok := h.Older()
		if !ok || got != want {
			t.Fatalf("Older() = %q, %v; want %q", got, ok, want)
		}
	}
	if _, ok := h.Older(); ok {
		t.Error("Older() at the oldest entry should report false")
	}
	if h.cursor != 0 {
		t.Errorf("cursor = %d, want 0", h.cursor)
	}

	for _, want := range []string{"b", "c"} {
		got, ok := h.Newer()
		if !ok || got != want {
			t.Fatalf("Newer() = %q, %v; want %q", got, ok, want)
		}
	}
	if _, ok := h.Newer(); ok {
		t.Error("Newer() at the newest entry should report false")
	}
	if h.cursor != 2 {
		t.Errorf("cursor = %d, want 2", h.cursor)
	}
}

func TestHistory_OlderEmpty(t *testing.T) {
	h := NewHistory("", 0)
	if _, ok := h.Older(); ok {
		t.Error("Older() on empty history should report false")
	}
	if _, ok := h.Newer(); ok {
		t.Error("Newer() on empty history should report false")
	}
}

func TestHistory_AddResetsCursor(t *testing.T) {
	h := NewHistory("", 0)
	h.Add("a")
	h.Add("b")
	h.Older()
	h.Older()

	h.Add("c")
	if got, _ := h.Older(); got != "c" {
		t.Errorf("Older() after Add = %q, want %q", got, "c")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "sub", "history")

	h := NewHistory(tmpFile, 0)
	h.Add("SET k v")
	h.Add("GET k")
	h.Add("HSET h f 日本")

	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(tmpFile)
	if err != nil {
		t.Fatalf("history file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history file mode = %o, want 600", perm)
	}

	h2 := NewHistory(tmpFile, 0)
	if err := h2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	entries := h2.Entries()
	want := []string{"SET k v", "GET k", "HSET h f 日本"}
	if len(entries) != len(want) {
		t.Fatalf("loaded %d entries, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i], want[i])
		}
	}
	if got, _ := h2.Older(); got != "HSET h f 日本" {
		t.Errorf("Older() after Load = %q", got)
	}
}

func TestHistory_SaveOverwrites(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(tmpFile, []byte("old1\nold2\nold3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(tmpFile, 0)
	h.Add("new")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, _ := os.ReadFile(tmpFile)
	if string(data) != "new\n" {
		t.Errorf("file = %q, want %q", data, "new\n")
	}
}

func TestHistory_Load_NonExistent(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"), 0)

	if err := h.Load(); err != nil {
		t.Errorf("Load() should not error for non-existent file, got %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_Load_SkipsBlankLines(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(tmpFile, []byte("a\n\n   \r\nb\r\n"), 0600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(tmpFile, 0)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	entries := h.Entries()
	if len(entries) != 2 || entries[0] != "a" || entries[1] != "b" {
		t.Errorf("entries = %q, want [a b]", entries)
	}
}

func TestHistory_Load_TrimsToMaxSize(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(tmpFile, []byte("1\n2\n3\n4\n5\n"), 0600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(tmpFile, 2)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := h.Entries(); len(got) != 2 || got[0] != "4" {
		t.Errorf("entries = %q, want [4 5]", got)
	}
}
