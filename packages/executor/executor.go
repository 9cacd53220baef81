// Package executor runs one logical fetch to completion: cache check,
// transport round trip, redirect loop, cache write, outcome emission.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rawnet/httpc/packages/cache"
	"github.com/rawnet/httpc/packages/logging"
	"github.com/rawnet/httpc/packages/message"
	"github.com/rawnet/httpc/packages/response"
	"github.com/rawnet/httpc/packages/transport"
	"github.com/rawnet/httpc/packages/urlparse"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"

	// MaxRedirects caps the redirect hops followed for a GET. Hitting
	// the cap is not an error; the last response is returned unfollowed.
	MaxRedirects = 5
)

// Request describes one logical fetch.
type Request struct {
	Method      string
	URL         string
	Data        string // raw -d value, POST only
	Headers     []message.Header
	UseCache    bool
	HeadersOnly bool
}

// Recorder receives one timing sample per run. Satisfied by
// metrics.Collector.
type Recorder interface {
	Record(method, url string, elapsed time.Duration, err error)
}

// Executor orchestrates fetches. Safe for concurrent use: each run
// owns its URL/request/response chain exclusively, and the cache store
// carries its own (weak) consistency contract.
type Executor struct {
	transport transport.RoundTripper
	builder   *message.Builder
	cache     cache.Store
	log       *logrus.Logger
	recorder  Recorder
}

type Option func(*Executor)

// WithBuilder replaces the default message builder.
func WithBuilder(b *message.Builder) Option {
	return func(e *Executor) {
		e.builder = b
	}
}

// WithCache enables read-through/write-through caching.
func WithCache(s cache.Store) Option {
	return func(e *Executor) {
		e.cache = s
	}
}

// WithLogger sets the request logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// WithRecorder sets the per-run timing recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

func New(rt transport.RoundTripper, opts ...Option) *Executor {
	e := &Executor{
		transport: rt,
		builder:   message.NewBuilder(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logging.Discard()
	}
	return e
}

// Execute runs the fetch. A returned error means the run produced no
// outcome: the URL was malformed, the body could not be prepared, or
// the transport failed. Redirect-cap overflow is not an error.
func (e *Executor) Execute(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{
		ID:     uuid.New().String(),
		Method: req.Method,
		URL:    req.URL,
	}

	u, err := urlparse.Parse(req.URL)
	if err != nil {
		e.fail(req, out, start, err)
		return nil, err
	}

	// Only the original URL is cache-checked; redirect hops are
	// fetched unconditionally, and a hit short-circuits everything
	// including status inspection.
	if req.UseCache && e.cache != nil {
		if data, ok := e.cache.Get(req.URL); ok {
			parsed := response.Parse(data)
			out.FinalURL = req.URL
			out.StatusCode = parsed.StatusCode
			out.HeaderBlock = parsed.HeaderBlock
			out.Body = parsed.Body
			out.FromCache = true
			out.Elapsed = time.Since(start)
			e.log.WithFields(logrus.Fields{
				"id":  out.ID,
				"url": req.URL,
			}).Info("cache hit")
			e.record(req, out.Elapsed, nil)
			return out, nil
		}
	}

	var body []byte
	var contentType string
	if req.Method == MethodPost {
		body, contentType, err = message.PrepareBody(req.Data)
		if err != nil {
			e.fail(req, out, start, err)
			return nil, err
		}
	}

	var raw []byte
	var parsed response.Raw
	for {
		rawRequest := e.builder.Build(req.Method, u, req.Headers, contentType, body)
		e.log.WithFields(logrus.Fields{
			"id":     out.ID,
			"method": req.Method,
			"url":    u.String(),
			"hop":    out.RedirectCount,
		}).Info("request")

		raw, err = e.transport.RoundTrip(ctx, u.Host, u.Port, u.Scheme, rawRequest)
		if err != nil {
			e.fail(req, out, start, err)
			return nil, err
		}
		parsed = response.Parse(raw)

		// POST never follows redirects; GET stops at the hop cap, on a
		// non-3xx status, or when Location is absent.
		if req.Method != MethodGet || !parsed.IsRedirect() || parsed.Location == "" || out.RedirectCount >= MaxRedirects {
			break
		}
		next, perr := urlparse.Parse(parsed.Location)
		if perr != nil {
			// An unparseable Location ends the chain; the response in
			// hand is the result.
			break
		}
		out.RedirectCount++
		u = next
	}

	out.FinalURL = u.String()
	out.StatusCode = parsed.StatusCode
	out.HeaderBlock = parsed.HeaderBlock
	out.Body = parsed.Body
	out.Elapsed = time.Since(start)

	if req.UseCache && e.cache != nil {
		// GET entries land under the URL in effect at completion;
		// POST under the original.
		key := out.FinalURL
		if req.Method == MethodPost {
			key = req.URL
		}
		if err := e.cache.Put(key, raw); err != nil {
			e.log.WithError(err).WithField("url", key).Warn("cache write failed")
		}
	}

	e.log.WithFields(logrus.Fields{
		"id":         out.ID,
		"status":     out.StatusCode,
		"redirects":  out.RedirectCount,
		"elapsed_ms": out.Elapsed.Milliseconds(),
	}).Info("done")
	e.record(req, out.Elapsed, nil)

	return out, nil
}

func (e *Executor) fail(req Request, out *Outcome, start time.Time, err error) {
	elapsed := time.Since(start)
	e.log.WithError(err).WithFields(logrus.Fields{
		"id":     out.ID,
		"method": req.Method,
		"url":    req.URL,
	}).Error("request failed")
	e.record(req, elapsed, err)
}

func (e *Executor) record(req Request, elapsed time.Duration, err error) {
	if e.recorder != nil {
		e.recorder.Record(req.Method, req.URL, elapsed, err)
	}
}
