package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawnet/httpc/packages/cache"
	"github.com/rawnet/httpc/packages/transport"
	"github.com/rawnet/httpc/packages/urlparse"
)

// scriptedTransport serves canned responses by URL and records every
// round trip it performs.
type scriptedTransport struct {
	mu        sync.Mutex
	responses map[string][]byte
	err       error
	calls     []string
	requests  [][]byte
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{responses: make(map[string][]byte)}
}

func (s *scriptedTransport) respond(url string, raw string) {
	s.responses[url] = []byte(raw)
}

func (s *scriptedTransport) RoundTrip(ctx context.Context, host string, port int, scheme string, rawRequest []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	// Reassemble the URL the way the executor parsed it.
	path := requestPath(rawRequest)
	url := scheme + "://" + host + path
	s.calls = append(s.calls, url)
	s.requests = append(s.requests, rawRequest)

	raw, ok := s.responses[url]
	if !ok {
		return []byte("HTTP/1.1 404 Not Found\r\n\r\n"), nil
	}
	return raw, nil
}

func (s *scriptedTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func requestPath(rawRequest []byte) string {
	line := string(rawRequest)
	// METHOD SP path SP HTTP/1.1
	start := 0
	for i, c := range line {
		if c == ' ' {
			start = i + 1
			break
		}
	}
	for i := start; i < len(line); i++ {
		if line[i] == ' ' {
			return line[start:i]
		}
	}
	return "/"
}

func TestExecuteGet(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/", "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nhello")

	e := New(tr)
	out, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/"})
	require.NoError(t, err)

	assert.Equal(t, 200, out.StatusCode)
	assert.Equal(t, "http://example.com/", out.FinalURL)
	assert.Equal(t, []byte("hello"), out.Body)
	assert.Equal(t, 0, out.RedirectCount)
	assert.False(t, out.FromCache)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, 1, tr.callCount())
}

func TestExecuteInvalidURL(t *testing.T) {
	e := New(newScriptedTransport())
	_, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "not-a-url"})
	require.Error(t, err)
	assert.ErrorIs(t, err, urlparse.ErrInvalidURL)
}

func TestExecuteTransportError(t *testing.T) {
	tr := newScriptedTransport()
	tr.err = fmt.Errorf("%w: dial example.com:80: refused", transport.ErrConnection)

	e := New(tr)
	_, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/"})
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrConnection)
}

func TestExecuteCacheHitSkipsNetwork(t *testing.T) {
	tr := newScriptedTransport()
	store := cache.NewMemory()
	stored := []byte("HTTP/1.1 200 OK\r\nX-From: cache\r\n\r\ncached body")
	require.NoError(t, store.Put("http://example.com/", stored))

	e := New(tr, WithCache(store))
	out, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/", UseCache: true})
	require.NoError(t, err)

	assert.True(t, out.FromCache)
	assert.Equal(t, 200, out.StatusCode)
	assert.Equal(t, "http://example.com/", out.FinalURL)
	assert.Equal(t, []byte("cached body"), out.Body)
	assert.Equal(t, 0, tr.callCount(), "cache hit must not touch the network")
}

func TestExecuteCacheIdempotence(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/", "HTTP/1.1 200 OK\r\n\r\nfirst fetch")
	store := cache.NewMemory()
	e := New(tr, WithCache(store))

	req := Request{Method: MethodGet, URL: "http://example.com/", UseCache: true}
	first, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, tr.callCount())

	second, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.callCount(), "second fetch must be served from cache")
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, first.HeaderBlock, second.HeaderBlock)
}

func TestExecuteCacheDisabled(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/", "HTTP/1.1 200 OK\r\n\r\nbody")
	store := cache.NewMemory()
	e := New(tr, WithCache(store))

	req := Request{Method: MethodGet, URL: "http://example.com/"}
	_, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	_, err = e.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.callCount())
	assert.Equal(t, 0, store.Len())
}

func TestExecuteRedirectChain(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/a", "HTTP/1.1 301 Moved Permanently\r\nLocation: http://example.com/b\r\n\r\n")
	tr.respond("http://example.com/b", "HTTP/1.1 302 Found\r\nLocation: http://example.com/final\r\n\r\n")
	tr.respond("http://example.com/final", "HTTP/1.1 200 OK\r\n\r\narrived")

	e := New(tr)
	out, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/a"})
	require.NoError(t, err)

	assert.Equal(t, 200, out.StatusCode)
	assert.Equal(t, "http://example.com/final", out.FinalURL)
	assert.Equal(t, 2, out.RedirectCount)
	assert.Equal(t, []byte("arrived"), out.Body)
	assert.Equal(t, 3, tr.callCount())
}

func TestExecuteRedirectBound(t *testing.T) {
	// A chain of 6 redirects must stop after exactly 5 hops, returning
	// the 6th response unfollowed.
	tr := newScriptedTransport()
	for i := 0; i < 6; i++ {
		tr.respond(
			fmt.Sprintf("http://example.com/hop%d", i),
			fmt.Sprintf("HTTP/1.1 302 Found\r\nLocation: http://example.com/hop%d\r\n\r\n", i+1),
		)
	}

	e := New(tr)
	out, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/hop0"})
	require.NoError(t, err)

	assert.Equal(t, MaxRedirects, out.RedirectCount)
	assert.Equal(t, 302, out.StatusCode)
	assert.Equal(t, "http://example.com/hop5", out.FinalURL)
	assert.Contains(t, out.HeaderBlock, "Location: http://example.com/hop6")
	assert.Equal(t, 6, tr.callCount())
}

func TestExecuteRedirectWithoutLocationStops(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/", "HTTP/1.1 301 Moved Permanently\r\n\r\n")

	e := New(tr)
	out, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, 301, out.StatusCode)
	assert.Equal(t, 0, out.RedirectCount)
	assert.Equal(t, 1, tr.callCount())
}

func TestExecuteGetCachedUnderFinalURL(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/old", "HTTP/1.1 301 Moved Permanently\r\nLocation: http://example.com/new\r\n\r\n")
	tr.respond("http://example.com/new", "HTTP/1.1 200 OK\r\n\r\nmoved here")
	store := cache.NewMemory()

	e := New(tr, WithCache(store))
	out, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/old", UseCache: true})
	require.NoError(t, err)
	require.Equal(t, "http://example.com/new", out.FinalURL)

	_, ok := store.Get("http://example.com/new")
	assert.True(t, ok, "entry keyed by the post-redirect URL")
	_, ok = store.Get("http://example.com/old")
	assert.False(t, ok, "original URL is not cached after a redirect")
}

func TestExecutePostSingleRoundTrip(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/submit", "HTTP/1.1 302 Found\r\nLocation: http://example.com/elsewhere\r\n\r\n")

	e := New(tr)
	out, err := e.Execute(context.Background(), Request{Method: MethodPost, URL: "http://example.com/submit", Data: "a=1&b=2"})
	require.NoError(t, err)

	assert.Equal(t, 302, out.StatusCode)
	assert.Equal(t, 0, out.RedirectCount)
	assert.Equal(t, "http://example.com/submit", out.FinalURL)
	assert.Equal(t, 1, tr.callCount(), "POST never follows redirects")
}

func TestExecutePostBodyTransform(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/submit", "HTTP/1.1 200 OK\r\n\r\nok")

	e := New(tr)
	_, err := e.Execute(context.Background(), Request{Method: MethodPost, URL: "http://example.com/submit", Data: "a=1&b=2"})
	require.NoError(t, err)

	require.Len(t, tr.requests, 1)
	sent := string(tr.requests[0])
	assert.Contains(t, sent, "Content-Type: application/json\r\n")
	assert.Contains(t, sent, fmt.Sprintf("Content-Length: %d\r\n", len(`{"a":"1","b":"2"}`)))
	assert.Contains(t, sent, `{"a":"1","b":"2"}`)
}

func TestExecutePostCachedUnderOriginalURL(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/submit", "HTTP/1.1 201 Created\r\n\r\ncreated")
	store := cache.NewMemory()

	e := New(tr, WithCache(store))
	_, err := e.Execute(context.Background(), Request{Method: MethodPost, URL: "http://example.com/submit", Data: "x=1", UseCache: true})
	require.NoError(t, err)

	_, ok := store.Get("http://example.com/submit")
	assert.True(t, ok)
}

type recordedSample struct {
	method  string
	url     string
	elapsed time.Duration
	err     error
}

type fakeRecorder struct {
	mu      sync.Mutex
	samples []recordedSample
}

func (f *fakeRecorder) Record(method, url string, elapsed time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, recordedSample{method, url, elapsed, err})
}

func TestExecuteRecordsTiming(t *testing.T) {
	tr := newScriptedTransport()
	tr.respond("http://example.com/", "HTTP/1.1 200 OK\r\n\r\nok")
	rec := &fakeRecorder{}

	e := New(tr, WithRecorder(rec))
	_, err := e.Execute(context.Background(), Request{Method: MethodGet, URL: "http://example.com/"})
	require.NoError(t, err)

	_, err = e.Execute(context.Background(), Request{Method: MethodGet, URL: "bogus"})
	require.Error(t, err)

	require.Len(t, rec.samples, 2)
	assert.NoError(t, rec.samples[0].err)
	assert.Error(t, rec.samples[1].err)
}
