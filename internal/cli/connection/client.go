package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/yndnr/kvsh/internal/core/domain"
	"github.com/yndnr/kvsh/internal/resp"
	"github.com/yndnr/kvsh/internal/telemetry/logger"
)

// Default timeouts.
const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultCommandTimeout = 15 * time.Second
)

// ErrNotConnected is returned when no connection is available.
var ErrNotConnected = domain.ErrNotConnected

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection: client closed")

// Options configures a Client.
type Options struct {
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	TLSConfig      *tls.Config
	Logger         logger.Logger
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

// Client is a single connection to a server. Commands are serialized:
// each Do writes one request and reads exactly one reply.
type Client struct {
	ep   Endpoint
	opts Options

	mu     sync.Mutex
	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	closed bool
}

// Dial connects to ep and runs the AUTH and SELECT handshake.
func Dial(ctx context.Context, ep Endpoint, opts Options) (*Client, error) {
	c := &Client{ep: ep, opts: opts.withDefaults()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Endpoint returns the endpoint the client talks to.
func (c *Client) Endpoint() Endpoint {
	return c.ep
}

// connect dials and prepares the session. Callers hold c.mu.
func (c *Client) connect(ctx context.Context) error {
	d := dialer{timeout: c.opts.ConnectTimeout, tlsConfig: c.opts.TLSConfig}
	conn, err := d.dial(ctx, c.ep)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.ep.Label(), err)
	}
	c.conn = conn
	c.r = bufio.NewReader(conn)
	c.w = bufio.NewWriter(conn)

	if err := c.handshake(ctx); err != nil {
		c.drop()
		return err
	}
	c.opts.Logger.Debug("connected", "server", c.ep.String(), "network", c.ep.Network, "tls", c.ep.TLS)
	return nil
}

func (c *Client) handshake(ctx context.Context) error {
	if c.ep.Password != "" {
		args := []string{"AUTH", c.ep.Password}
		if c.ep.Username != "" {
			args = []string{"AUTH", c.ep.Username, c.ep.Password}
		}
		if err := c.expectOK(ctx, args...); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if c.ep.DB != 0 {
		if err := c.expectOK(ctx, "SELECT", strconv.Itoa(c.ep.DB)); err != nil {
			return fmt.Errorf("select %d: %w", c.ep.DB, err)
		}
	}
	return nil
}

func (c *Client) expectOK(ctx context.Context, args ...string) error {
	reply, err := c.roundTrip(ctx, args)
	if err != nil {
		return err
	}
	if e, ok := reply.(resp.Error); ok {
		return e
	}
	return nil
}

// Do sends one command and returns its reply. A server error is
// returned as a resp.Error reply, not as an error. After a transport
// failure the connection is dropped and the next Do dials again.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.conn == nil {
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
	}

	reply, err := c.roundTrip(ctx, args)
	if err != nil {
		c.opts.Logger.Debug("dropping connection", "server", c.ep.Label(), "error", err)
		c.drop()
		return nil, err
	}
	return reply, nil
}

// roundTrip writes args and reads one reply within the command deadline.
func (c *Client) roundTrip(ctx context.Context, args []string) (resp.Reply, error) {
	deadline := time.Now().Add(c.opts.CommandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	conn := c.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := resp.WriteCommand(c.w, args...); err != nil {
		return nil, contextError(ctx, err)
	}
	reply, err := resp.ReadReply(c.r)
	if err != nil {
		return nil, contextError(ctx, err)
	}
	return reply, nil
}

// contextError prefers the context's error when it caused the failure.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.r, c.w = nil, nil, nil
}

// Close closes the connection. Further commands fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.r, c.w = nil, nil, nil
	return err
}
