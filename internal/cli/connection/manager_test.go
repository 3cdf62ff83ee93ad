package connection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	m := NewManager(Options{})
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.Current() != nil {
		t.Error("new manager should have no current connection")
	}
	if m.Label() != "" {
		t.Errorf("Label() = %q, want empty", m.Label())
	}
}

func TestManager_Connect(t *testing.T) {
	srv := newTestServer(t, memoryHandler)
	m := NewManager(Options{})
	defer m.Disconnect()

	c, err := m.Connect(context.Background(), tcpEndpoint(t, srv))
	require.NoError(t, err)

	assert.Same(t, c, m.Current())
	assert.Equal(t, srv.Addr(), m.Label())

	store, err := m.Store()
	require.NoError(t, err)
	kind, err := store.ProbeType(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "string", string(kind))
}

func TestManager_ConnectReplacesPrevious(t *testing.T) {
	first := newTestServer(t, memoryHandler)
	second := newTestServer(t, memoryHandler)
	m := NewManager(Options{})
	defer m.Disconnect()

	old, err := m.Connect(context.Background(), tcpEndpoint(t, first))
	require.NoError(t, err)
	_, err = m.Connect(context.Background(), tcpEndpoint(t, second))
	require.NoError(t, err)

	assert.Equal(t, second.Addr(), m.Label())
	_, err = old.Do(context.Background(), "PING")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManager_ConnectFailureKeepsCurrent(t *testing.T) {
	srv := newTestServer(t, memoryHandler)
	m := NewManager(Options{})
	defer m.Disconnect()

	_, err := m.Connect(context.Background(), tcpEndpoint(t, srv))
	require.NoError(t, err)

	bad, _ := ParseEndpoint(srv.Addr())
	bad.Network = "unix"
	bad.Address = t.TempDir() + "/missing.sock"
	_, err = m.Connect(context.Background(), bad)
	require.Error(t, err)

	assert.Equal(t, srv.Addr(), m.Label())
}

func TestManager_Disconnect(t *testing.T) {
	srv := newTestServer(t, memoryHandler)
	m := NewManager(Options{})

	_, err := m.Connect(context.Background(), tcpEndpoint(t, srv))
	require.NoError(t, err)

	require.NoError(t, m.Disconnect())
	assert.Nil(t, m.Current())
	require.NoError(t, m.Disconnect(), "disconnecting twice is fine")

	_, err = m.Store()
	assert.ErrorIs(t, err, ErrNotConnected)
}
