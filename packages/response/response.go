// Package response parses raw HTTP responses as returned by the
// transport: a single buffered byte sequence split at the first blank
// line. It is intentionally not a general HTTP parser; header folding
// and chunked transfer encoding are out of scope.
package response

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// Raw is the parsed form of one buffered response.
type Raw struct {
	// HeaderBlock is everything before the first blank line, status
	// line included.
	HeaderBlock string
	// Body is everything after the first blank line. Nil when the
	// response contains no blank line at all.
	Body []byte
	// StatusCode is 0 when the status line is missing or malformed.
	StatusCode int
	// Location is the value of the Location header, or "".
	Location string
}

var (
	statusPattern   = regexp.MustCompile(`^HTTP/1\.\d\s+(\d{3})`)
	locationPattern = regexp.MustCompile(`(?im)^location:[ \t]*(.+)$`)
)

// Parse splits raw at the first CRLF CRLF and extracts the status code
// and Location header. A missing or unrecognizable status line is not
// an error; StatusCode simply stays 0.
func Parse(raw []byte) Raw {
	var r Raw

	header := raw
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		header = raw[:i]
		r.Body = raw[i+4:]
	}
	r.HeaderBlock = string(header)

	if m := statusPattern.FindStringSubmatch(r.HeaderBlock); m != nil {
		r.StatusCode, _ = strconv.Atoi(m[1])
	}
	if m := locationPattern.FindStringSubmatch(r.HeaderBlock); m != nil {
		r.Location = strings.TrimSpace(strings.TrimSuffix(m[1], "\r"))
	}

	return r
}

// IsRedirect reports whether the status code is in the 3xx range.
func (r Raw) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode <= 399
}
