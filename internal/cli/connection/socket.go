package connection

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// dialer opens the transport for an endpoint.
type dialer struct {
	timeout   time.Duration
	tlsConfig *tls.Config
}

// dial connects over TCP, TLS or a unix socket.
func (d dialer) dial(ctx context.Context, ep Endpoint) (net.Conn, error) {
	nd := &net.Dialer{Timeout: d.timeout, KeepAlive: 30 * time.Second}

	if ep.Network == "unix" {
		return nd.DialContext(ctx, "unix", ep.Address)
	}
	if !ep.TLS {
		return nd.DialContext(ctx, "tcp", ep.Address)
	}

	cfg := d.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = ep.Host()
	}
	td := &tls.Dialer{NetDialer: nd, Config: cfg}
	return td.DialContext(ctx, "tcp", ep.Address)
}
