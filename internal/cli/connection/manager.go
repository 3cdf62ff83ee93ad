package connection

import (
	"context"
	"sync"
)

// Manager owns the shell's current connection.
type Manager struct {
	opts Options

	mu      sync.Mutex
	current *Client
}

// NewManager creates a new connection manager.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Connect dials ep and makes it the current connection, closing any
// previous one. On failure the previous connection is kept.
func (m *Manager) Connect(ctx context.Context, ep Endpoint) (*Client, error) {
	c, err := Dial(ctx, ep, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	prev := m.current
	m.current = c
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return c, nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	c := m.current
	m.current = nil
	m.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

// Current returns the current connection, or nil.
func (m *Manager) Current() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Label returns the prompt label of the current connection.
func (m *Manager) Label() string {
	if c := m.Current(); c != nil {
		return c.Endpoint().Label()
	}
	return ""
}

// Store returns a Store over the current connection.
func (m *Manager) Store() (*Store, error) {
	c := m.Current()
	if c == nil {
		return nil, ErrNotConnected
	}
	return NewStore(c), nil
}
