package resptest

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/kvsh/internal/resp"
)

// Handler answers one command. Returning nil closes the connection
// without a reply, simulating a server that hangs up.
type Handler interface {
	ServeRESP(args []string) resp.Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(args []string) resp.Reply

// ServeRESP calls f(args).
func (f HandlerFunc) ServeRESP(args []string) resp.Reply {
	return f(args)
}

// Timeouts applied to every connection.
const (
	readTimeout = 5 * time.Second
	idleTimeout = time.Minute
)

// Server is a RESP server listening on a local address.
type Server struct {
	ln      net.Listener
	handler Handler

	mu       sync.Mutex
	commands [][]string
	accepted int
	conns    map[net.Conn]struct{}
	closed   bool

	wg sync.WaitGroup
}

// NewServer starts a server on a random loopback port. It is closed when
// the test ends.
func NewServer(t testing.TB, h Handler) *Server {
	t.Helper()
	return start(t, "tcp", "127.0.0.1:0", h)
}

// NewUnixServer starts a server on the unix socket path.
func NewUnixServer(t testing.TB, path string, h Handler) *Server {
	t.Helper()
	return start(t, "unix", path, h)
}

func start(t testing.TB, network, address string, h Handler) *Server {
	t.Helper()
	ln, err := net.Listen(network, address)
	if err != nil {
		t.Fatalf("resptest: listen %s %s: %v", network, address, err)
	}

	s := &Server{ln: ln, handler: h, conns: make(map[net.Conn]struct{})}
	s.wg.Add(1)
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

// Addr returns the listener address: host:port or the socket path.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Received returns every command received so far, in order.
func (s *Server) Received() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.commands...)
}

// Connections returns the number of accepted connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// CloseClientConnections drops every open connection while the
// listener keeps accepting.
func (s *Server) CloseClientConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}

// Close stops the listener, drops open connections and waits for the
// connection goroutines to exit.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.ln.Close()
	s.CloseClientConnections()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = c.Close()
			return
		}
		s.accepted++
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(c)
		}()
	}
}

func (s *Server) serveConn(c net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = c.Close()
	}()

	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	for {
		// Connections may sit idle between commands.
		if err := c.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if _, err := br.Peek(1); err != nil {
			return
		}
		if err := c.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		args, err := readCommand(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = resp.WriteReply(bw, resp.Error("ERR protocol error: "+err.Error()))
			_ = bw.Flush()
			return
		}

		s.mu.Lock()
		s.commands = append(s.commands, args)
		s.mu.Unlock()

		reply := s.handler.ServeRESP(args)
		if reply == nil {
			return
		}
		if err := resp.WriteReply(bw, reply); err != nil {
			return
		}
		if err := bw.Flush(); err != nil {
			return
		}
	}
}

// readCommand reads one request: a non-empty array of bulk strings.
func readCommand(r *bufio.Reader) ([]string, error) {
	req, err := resp.ReadReply(r)
	if err != nil {
		return nil, err
	}
	arr, ok := req.(resp.Array)
	if !ok || len(arr) == 0 {
		return nil, errors.New("expected a non-empty array")
	}
	args := make([]string, len(arr))
	for i, a := range arr {
		s, ok := a.(resp.String)
		if !ok {
			return nil, errors.New("expected bulk string arguments")
		}
		args[i] = string(s)
	}
	return args, nil
}
