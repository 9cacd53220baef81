// Package dispatch fans out logical requests as concurrent executor
// runs and joins on completion. There is no inter-run communication:
// the only coordination is the completion barrier, and completion,
// cache, and output ordering between runs are all unspecified.
package dispatch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/rawnet/httpc/packages/executor"
)

// DefaultMaxConcurrent caps in-flight runs when nothing is configured.
const DefaultMaxConcurrent = 16

// Runner executes one logical request. Satisfied by executor.Executor.
type Runner interface {
	Execute(ctx context.Context, req executor.Request) (*executor.Outcome, error)
}

// Result pairs a request with its outcome or failure. One Result is
// produced per run, success or not; a failing run never aborts its
// siblings.
type Result struct {
	Request executor.Request
	Outcome *executor.Outcome
	Err     error
}

type Dispatcher struct {
	runner        Runner
	maxConcurrent int
	limiter       *rate.Limiter
}

type Option func(*Dispatcher)

// WithMaxConcurrent bounds the number of in-flight runs.
func WithMaxConcurrent(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxConcurrent = n
		}
	}
}

// WithRate paces run starts at rps requests per second.
func WithRate(rps float64) Option {
	return func(d *Dispatcher) {
		if rps > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func New(runner Runner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:        runner,
		maxConcurrent: DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch launches one run per repetition of each request, all
// logically concurrent, and blocks until every run has finished.
// Results arrive in no particular order.
func (d *Dispatcher) Dispatch(ctx context.Context, requests []executor.Request, repeat int) []Result {
	if repeat < 1 {
		repeat = 1
	}

	total := len(requests) * repeat
	resultCh := make(chan Result, total)
	sem := make(chan struct{}, d.maxConcurrent)

	var wg sync.WaitGroup
	for rep := 0; rep < repeat; rep++ {
		for _, req := range requests {
			wg.Add(1)
			go func(req executor.Request) {
				defer wg.Done()

				if d.limiter != nil {
					if err := d.limiter.Wait(ctx); err != nil {
						resultCh <- Result{Request: req, Err: err}
						return
					}
				}

				sem <- struct{}{}
				defer func() { <-sem }()

				out, err := d.runner.Execute(ctx, req)
				resultCh <- Result{Request: req, Outcome: out, Err: err}
			}(req)
		}
	}
	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, total)
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}
