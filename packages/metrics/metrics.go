// Package metrics aggregates per-request latency into a histogram and
// appends timing and system-resource lines to an append-only metrics
// log. Concurrent appends from separate processes may interleave at
// the line level; no cross-process locking is attempted.
package metrics

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records one sample per completed (or failed) run.
type Collector struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	total     int64
	success   int64
	errors    int64
	sink      io.Writer
}

type CollectorOption func(*Collector)

// WithSink sets the append-only metrics log; each recorded run emits
// one timestamped timing line.
func WithSink(w io.Writer) CollectorOption {
	return func(c *Collector) {
		c.sink = w
	}
}

func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		// 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record registers one run. err nil means the run produced an outcome,
// cache hits included.
func (c *Collector) Record(method, url string, elapsed time.Duration, err error) {
	latencyUs := elapsed.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}

	c.mu.Lock()
	_ = c.histogram.RecordValue(latencyUs)
	c.total++
	if err != nil {
		c.errors++
	} else {
		c.success++
	}
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		fmt.Fprintf(sink, "%s request method=%s url=%s elapsed_ms=%d result=%s\n",
			time.Now().Format(time.RFC3339), method, url, elapsed.Milliseconds(), status)
	}
}

// Summary is a point-in-time aggregate of everything recorded so far.
type Summary struct {
	Total   int64
	Success int64
	Errors  int64
	Min     time.Duration
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
	Max     time.Duration
}

func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{
		Total:   c.total,
		Success: c.success,
		Errors:  c.errors,
	}
	if c.total > 0 {
		s.Min = time.Duration(c.histogram.Min()) * time.Microsecond
		s.P50 = time.Duration(c.histogram.ValueAtQuantile(50)) * time.Microsecond
		s.P95 = time.Duration(c.histogram.ValueAtQuantile(95)) * time.Microsecond
		s.P99 = time.Duration(c.histogram.ValueAtQuantile(99)) * time.Microsecond
		s.Max = time.Duration(c.histogram.Max()) * time.Microsecond
	}
	return s
}
