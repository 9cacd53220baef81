// Package message constructs raw HTTP/1.1 request bytes and prepares
// POST bodies.
package message

import (
	"bytes"
	"strconv"

	"github.com/rawnet/httpc/packages/urlparse"
)

// DefaultUserAgent identifies the tool when no override is configured.
const DefaultUserAgent = "httpc/1.0"

// Header is one extra request header. Headers are kept as an ordered
// list because header order is part of the wire format this tool emits.
type Header struct {
	Key   string
	Value string
}

// Builder assembles request messages. Every request declares
// Connection: close so the transport can read the response to EOF.
type Builder struct {
	userAgent string
}

type BuilderOption func(*Builder)

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(ua string) BuilderOption {
	return func(b *Builder) {
		b.userAgent = ua
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the full request message: request line, Host,
// User-Agent, Connection: close, any extra headers, and, when a
// content type is set, Content-Type and Content-Length computed from
// the body's byte length. Header order is fixed and deterministic.
func (b *Builder) Build(method string, u urlparse.URL, extra []Header, contentType string, body []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString(method + " " + u.Path + " HTTP/1.1\r\n")
	buf.WriteString("Host: " + u.Host + "\r\n")
	buf.WriteString("User-Agent: " + b.userAgent + "\r\n")
	buf.WriteString("Connection: close\r\n")
	for _, h := range extra {
		buf.WriteString(h.Key + ": " + h.Value + "\r\n")
	}
	if contentType != "" {
		buf.WriteString("Content-Type: " + contentType + "\r\n")
		buf.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes()
}
