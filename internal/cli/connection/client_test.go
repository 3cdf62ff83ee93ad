package connection

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/kvsh/internal/resp"
	"github.com/yndnr/kvsh/internal/resp/resptest"
)

func tcpEndpoint(t *testing.T, s *resptest.Server) Endpoint {
	t.Helper()
	ep, err := ParseEndpoint(s.Addr())
	require.NoError(t, err)
	return ep
}

func TestDial_PlainTCP(t *testing.T) {
	srv := newTestServer(t, memoryHandler)

	c, err := Dial(context.Background(), tcpEndpoint(t, srv), Options{})
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.Do(context.Background(), "PING")
	require.NoError(t, err)
	assert.Equal(t, resp.String("PONG"), reply)
	assert.Equal(t, [][]string{{"PING"}}, srv.Received(), "no handshake without credentials")
}

func TestDial_Handshake(t *testing.T) {
	srv := newTestServer(t, memoryHandler)

	tests := []struct {
		name string
		ep   func(Endpoint) Endpoint
		want [][]string
	}{
		{
			name: "password only",
			ep:   func(e Endpoint) Endpoint { e.Password = "pw"; return e },
			want: [][]string{{"AUTH", "pw"}},
		},
		{
			name: "user and password with db",
			ep:   func(e Endpoint) Endpoint { e.Username, e.Password, e.DB = "bob", "pw", 3; return e },
			want: [][]string{{"AUTH", "bob", "pw"}, {"SELECT", "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(srv.Received())
			c, err := Dial(context.Background(), tt.ep(tcpEndpoint(t, srv)), Options{})
			require.NoError(t, err)
			defer c.Close()

			assert.Equal(t, tt.want, srv.Received()[before:])
		})
	}
}

func TestDial_AuthRejected(t *testing.T) {
	srv := newTestServer(t, func(args []string) resp.Reply {
		if args[0] == "AUTH" {
			return resp.Error("WRONGPASS invalid username-password pair")
		}
		return resp.String("OK")
	})

	ep := tcpEndpoint(t, srv)
	ep.Password = "bad"
	_, err := Dial(context.Background(), ep, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth: WRONGPASS")
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ep, _ := ParseEndpoint(addr)
	_, err = Dial(context.Background(), ep, Options{ConnectTimeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect "+addr)
}

func TestDial_UnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.sock")
	resptest.NewUnixServer(t, path, resptest.HandlerFunc(memoryHandler))

	ep, err := ParseEndpoint("unix://" + path)
	require.NoError(t, err)

	c, err := Dial(context.Background(), ep, Options{})
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.Do(context.Background(), "DBSIZE")
	require.NoError(t, err)
	assert.Equal(t, resp.Integer(4), reply)
}

func TestClient_ServerErrorIsReply(t *testing.T) {
	srv := newTestServer(t, memoryHandler)
	c, err := Dial(context.Background(), tcpEndpoint(t, srv), Options{})
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.Do(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, resp.Error("ERR unknown command 'NOPE'"), reply)
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	hangup := true
	srv := newTestServer(t, func(args []string) resp.Reply {
		if args[0] == "QUIT" && hangup {
			hangup = false
			return nil
		}
		return memoryHandler(args)
	})

	c, err := Dial(context.Background(), tcpEndpoint(t, srv), Options{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Do(context.Background(), "QUIT")
	require.Error(t, err, "server hung up before replying")

	reply, err := c.Do(context.Background(), "PING")
	require.NoError(t, err)
	assert.Equal(t, resp.String("PONG"), reply)
	assert.Equal(t, 2, srv.Connections())
}

func TestClient_CommandTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(args []string) resp.Reply {
		<-release
		return resp.String("late")
	})
	defer close(release)

	c, err := Dial(context.Background(), tcpEndpoint(t, srv), Options{CommandTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Do(context.Background(), "PING")
	var netErr net.Error
	require.True(t, errors.As(err, &netErr), "err = %v", err)
	assert.True(t, netErr.Timeout())
}

func TestClient_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(args []string) resp.Reply {
		<-release
		return resp.String("late")
	})
	defer close(release)

	c, err := Dial(context.Background(), tcpEndpoint(t, srv), Options{})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err = c.Do(ctx, "PING")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Close(t *testing.T) {
	srv := newTestServer(t, memoryHandler)
	c, err := Dial(context.Background(), tcpEndpoint(t, srv), Options{})
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "second Close is a no-op")

	_, err = c.Do(context.Background(), "PING")
	assert.ErrorIs(t, err, ErrClosed)
}
