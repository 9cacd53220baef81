// Package urlparse decomposes http/https URLs into scheme, host, port,
// and path. The accepted grammar is deliberately narrow: scheme://host[/path]
// with no userinfo, no query handling beyond passing it through in the
// path, and no explicit port (the scheme fixes the port).
package urlparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned when a URL does not match scheme://host[/path]
// for an http or https scheme.
var ErrInvalidURL = errors.New("invalid URL")

const (
	// PortHTTP is the fixed port for http URLs.
	PortHTTP = 80
	// PortHTTPS is the fixed port for https URLs.
	PortHTTPS = 443
)

// URL is the decomposed form of a request URL. It is immutable once
// parsed; every redirect hop parses a fresh one.
type URL struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

var urlPattern = regexp.MustCompile(`^(https?)://([^/]+)(/.*)?$`)

// Parse splits raw into its components. The path defaults to "/" when
// absent and the port is fixed by the scheme (80/443).
func Parse(raw string) (URL, error) {
	m := urlPattern.FindStringSubmatch(raw)
	if m == nil {
		return URL{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	host := m[2]
	// Explicit ports and userinfo are not part of the grammar.
	if strings.ContainsAny(host, ":@ ") {
		return URL{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	u := URL{
		Scheme: m[1],
		Host:   host,
		Path:   m[3],
	}
	if u.Path == "" {
		u.Path = "/"
	}
	if u.Scheme == "https" {
		u.Port = PortHTTPS
	} else {
		u.Port = PortHTTP
	}

	return u, nil
}

// String reassembles the URL from its components.
func (u URL) String() string {
	return u.Scheme + "://" + u.Host + u.Path
}
