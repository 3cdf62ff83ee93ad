package connection

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is used when an address has no port.
const DefaultPort = "6379"

// ErrInvalidAddress is returned for an empty or malformed server address.
var ErrInvalidAddress = errors.New("invalid server address")

// Endpoint describes where and how to reach a server.
type Endpoint struct {
	Network  string // "tcp" or "unix"
	Address  string // host:port or socket path
	TLS      bool
	Username string
	Password string
	DB       int
}

// ParseEndpoint parses host, host:port, redis://[user:pass@]host:port/db,
// rediss://... (TLS) and unix:///path/to/socket.
func ParseEndpoint(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Endpoint{}, ErrInvalidAddress
	}

	switch {
	case strings.HasPrefix(s, "unix://"):
		path := strings.TrimPrefix(s, "unix://")
		if path == "" {
			return Endpoint{}, fmt.Errorf("%w: %q has no socket path", ErrInvalidAddress, s)
		}
		return Endpoint{Network: "unix", Address: path}, nil
	case strings.HasPrefix(s, "/"):
		return Endpoint{Network: "unix", Address: s}, nil
	case strings.HasPrefix(s, "redis://"), strings.HasPrefix(s, "rediss://"):
		return parseURL(s)
	case strings.Contains(s, "://"):
		return Endpoint{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidAddress, s)
	}

	addr, err := hostPort(s)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Network: "tcp", Address: addr}, nil
}

func parseURL(s string) (Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: %q has no host", ErrInvalidAddress, s)
	}

	addr, err := hostPort(u.Host)
	if err != nil {
		return Endpoint{}, err
	}
	ep := Endpoint{Network: "tcp", Address: addr, TLS: u.Scheme == "rediss"}

	if u.User != nil {
		ep.Username = u.User.Username()
		ep.Password, _ = u.User.Password()
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil || n < 0 {
			return Endpoint{}, fmt.Errorf("%w: invalid database %q", ErrInvalidAddress, db)
		}
		ep.DB = n
	}
	return ep, nil
}

// hostPort normalizes s to host:port, adding DefaultPort when missing.
func hostPort(s string) (string, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// Bare host, or a bare IPv6 literal.
		host, port = strings.Trim(s, "[]"), DefaultPort
	}
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidAddress, s)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: invalid port %q", ErrInvalidAddress, port)
	}
	return net.JoinHostPort(host, port), nil
}

// Label is the endpoint as shown in the prompt.
func (e Endpoint) Label() string {
	return e.Address
}

// Host returns the host part of a TCP address.
func (e Endpoint) Host() string {
	if e.Network == "unix" {
		return ""
	}
	host, _, err := net.SplitHostPort(e.Address)
	if err != nil {
		return e.Address
	}
	return host
}

// WithDefaults fills credentials, database and TLS from configuration
// where the address itself left them unset.
func (e Endpoint) WithDefaults(username, password string, db int, useTLS bool) Endpoint {
	if e.Username == "" {
		e.Username = username
	}
	if e.Password == "" {
		e.Password = password
	}
	if e.DB == 0 {
		e.DB = db
	}
	if useTLS && e.Network == "tcp" {
		e.TLS = true
	}
	return e
}

// String renders the endpoint as a URL without the password.
func (e Endpoint) String() string {
	if e.Network == "unix" {
		return "unix://" + e.Address
	}
	scheme := "redis"
	if e.TLS {
		scheme = "rediss"
	}
	u := url.URL{Scheme: scheme, Host: e.Address}
	if e.Username != "" {
		u.User = url.User(e.Username)
	}
	if e.DB != 0 {
		u.Path = "/" + strconv.Itoa(e.DB)
	}
	return u.String()
}
