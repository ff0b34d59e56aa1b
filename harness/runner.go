// Package harness runs a fixed set of calls against a reference.Provider and
// reports which of them behaved as expected.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lovromazgon/refimpl/reference"
)

type runnerOptions struct {
	logger  *slog.Logger
	timeout time.Duration
}

var defaultRunnerOptions = runnerOptions{
	logger:  slog.Default(),
	timeout: 2 * time.Second,
}

// Option configures the runner.
type Option func(*runnerOptions)

func WithLogger(l *slog.Logger) Option {
	return func(o *runnerOptions) { o.logger = l }
}

// WithTimeout sets how long the runner waits for a callback.
func WithTimeout(d time.Duration) Option {
	return func(o *runnerOptions) { o.timeout = d }
}

// Result is the outcome of one case.
type Result struct {
	Case   Case
	Pass   bool
	Detail string
}

type Runner struct {
	opts runnerOptions
}

func NewRunner(opt ...Option) *Runner {
	opts := defaultRunnerOptions
	for _, o := range opt {
		o(&opts)
	}
	return &Runner{opts: opts}
}

// Run runs the cases one after another and returns a result per case. It
// stops early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, p reference.Provider, cases []Case) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		res := r.runCase(ctx, p, c)
		r.opts.logger.DebugContext(ctx, "case finished", "case", c.String(), "pass", res.Pass, "detail", res.Detail)
		results = append(results, res)
	}
	return results
}

func (r *Runner) runCase(ctx context.Context, p reference.Provider, c Case) Result {
	if c.Op == SyncToSync {
		got, err := p.SyncToSync(ctx, c.A, c.B)
		return r.check(c, got, err, err != nil)
	}

	type outcome struct {
		result int64
		err    error
	}
	out := make(chan outcome, 2)
	onSuccess := func(v int64) { out <- outcome{result: v} }
	onError := func(err error) { out <- outcome{err: err} }

	var err error
	switch c.Op {
	case SyncToAsync:
		err = p.SyncToAsync(ctx, c.A, c.B, onSuccess, onError)
	case AsyncToAsync:
		err = p.AsyncToAsync(ctx, c.A, c.B, onSuccess, onError)
	default:
		return Result{Case: c, Detail: fmt.Sprintf("unknown operation %q", c.Op)}
	}
	if err != nil {
		return r.check(c, 0, err, true)
	}

	timer := time.NewTimer(r.opts.timeout)
	defer timer.Stop()

	select {
	case o := <-out:
		return r.check(c, o.result, o.err, false)
	case <-timer.C:
		return Result{Case: c, Detail: fmt.Sprintf("no callback within %s", r.opts.timeout)}
	case <-ctx.Done():
		return Result{Case: c, Detail: ctx.Err().Error()}
	}
}

// check compares an outcome with the expectation of c. sync reports whether
// err was returned by the call itself.
func (r *Runner) check(c Case, got int64, err error, sync bool) Result {
	res := Result{Case: c}

	switch {
	case c.Want != nil && err == nil:
		res.Pass = got == *c.Want
		res.Detail = fmt.Sprintf("got %d, want %d", got, *c.Want)
	case c.Want != nil:
		res.Detail = fmt.Sprintf("got error %q, want %d", err, *c.Want)
	case err == nil:
		res.Detail = fmt.Sprintf("got %d, want %s error", got, c.Fail)
	case sync:
		res.Pass = c.Fail == FailSync
		res.Detail = fmt.Sprintf("call returned error %q, want %s error", err, c.Fail)
	default:
		res.Pass = c.Fail == FailCallback
		res.Detail = fmt.Sprintf("error callback got %q, want %s error", err, c.Fail)
	}
	return res
}

// Report writes one PASS or FAIL line per result followed by a summary, and
// returns the number of failed results.
func Report(w io.Writer, results []Result) (failed int, err error) {
	for _, res := range results {
		verdict := "PASS"
		if !res.Pass {
			verdict = "FAIL"
			failed++
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", verdict, res.Case, res.Detail); err != nil {
			return failed, err
		}
	}
	_, err = fmt.Fprintf(w, "%d passed, %d failed\n", len(results)-failed, failed)
	return failed, err
}
