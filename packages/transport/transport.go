// Package transport performs one raw HTTP round trip over a TCP or
// TLS byte stream: dial, write the request, read the response until
// the peer closes. Requests always declare Connection: close, so EOF
// is the end-of-response signal; there is no content-length based
// early termination.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// Error classes, matched with errors.Is.
var (
	// ErrConnection covers DNS resolution and TCP connect failures.
	ErrConnection = errors.New("connection failed")
	// ErrTLS covers TLS handshake failures.
	ErrTLS = errors.New("tls handshake failed")
	// ErrIO covers read/write failures after the connection was established.
	ErrIO = errors.New("transfer failed")
)

// RoundTripper writes one raw request and reads the full response.
// Implemented by Transport; tests substitute a scripted fake.
type RoundTripper interface {
	RoundTrip(ctx context.Context, host string, port int, scheme string, rawRequest []byte) ([]byte, error)
}

// DialFunc opens the underlying byte stream. The default is a plain
// net.Dialer; tests inject pipes.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type Transport struct {
	timeout   time.Duration
	tlsConfig *tls.Config
	dial      DialFunc
}

type Option func(*Transport)

// WithTimeout bounds the whole round trip, dial included. Zero keeps
// the historical behavior: no deadline, a hung peer blocks the run
// indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.timeout = d
	}
}

// WithTLSConfig overrides the TLS client configuration.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(t *Transport) {
		t.tlsConfig = cfg
	}
}

// WithDialFunc overrides the dialer.
func WithDialFunc(dial DialFunc) Option {
	return func(t *Transport) {
		t.dial = dial
	}
}

func New(opts ...Option) *Transport {
	t := &Transport{}
	for _, opt := range opts {
		opt(t)
	}
	if t.dial == nil {
		d := &net.Dialer{}
		t.dial = d.DialContext
	}
	return t
}

// RoundTrip dials host:port, wraps the stream in TLS when the scheme
// is https, writes rawRequest, and buffers the response until EOF.
func (t *Transport) RoundTrip(ctx context.Context, host string, port int, scheme string, rawRequest []byte) ([]byte, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	rawConn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err)
	}
	defer rawConn.Close()

	if t.timeout > 0 {
		_ = rawConn.SetDeadline(time.Now().Add(t.timeout))
	}

	conn := rawConn
	if scheme == "https" {
		cfg := t.tlsConfig
		if cfg == nil {
			cfg = &tls.Config{}
		}
		if cfg.ServerName == "" {
			cfg = cfg.Clone()
			cfg.ServerName = host
		}
		tlsConn := tls.Client(rawConn, cfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTLS, host, err)
		}
		conn = tlsConn
	}

	if _, err := conn.Write(rawRequest); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrIO, err)
	}

	response, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrIO, err)
	}

	return response, nil
}
