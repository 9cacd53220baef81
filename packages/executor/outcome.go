package executor

import "time"

// Outcome is the result of one logical request, redirect hops
// included. One is produced per successful run and consumed by the
// caller for output, history, and logging.
type Outcome struct {
	// ID uniquely identifies the run across the log, metrics, and
	// history records.
	ID string
	// Method and URL echo the request as submitted.
	Method string
	URL    string
	// FinalURL is the URL in effect at completion: the original for
	// POST and cache hits, the last redirect target for GET.
	FinalURL string
	// StatusCode is 0 when the response carried no recognizable
	// status line.
	StatusCode  int
	HeaderBlock string
	Body        []byte
	// RedirectCount is the number of hops actually followed, at most
	// MaxRedirects.
	RedirectCount int
	Elapsed       time.Duration
	// FromCache marks outcomes served without a network round trip.
	FromCache bool
}
