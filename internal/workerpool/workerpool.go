// Package workerpool runs a fixed number of scan jobs concurrently, bounded
// by an errgroup.Group limit — a named pool rather than an ad hoc
// goroutine-per-job fan-out. The scanner creates one Pool per scan pass
// and waits on it before the pass ends.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the fixed worker count spec.md §4.8 specifies for the
// background scanner.
const DefaultWorkers = 16

// Pool runs jobs with bounded concurrency under a single errgroup, so any
// job's error can be observed after Wait and a context cancellation (e.g.
// the worktree shutting down) stops outstanding jobs promptly.
type Pool struct {
	name    string
	workers int
	group   *errgroup.Group
	ctx     context.Context
}

// New creates a Pool named name (used only for diagnostics/logging) with
// workers concurrent slots, derived from ctx.
func New(ctx context.Context, name string, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return &Pool{name: name, workers: workers, group: g, ctx: gctx}
}

// Name returns the pool's diagnostic name.
func (p *Pool) Name() string { return p.name }

// Context returns the pool's derived context, cancelled as soon as any
// submitted job returns a non-nil error.
func (p *Pool) Context() context.Context { return p.ctx }

// Submit schedules job to run on the pool, blocking only if every worker
// slot is currently occupied.
func (p *Pool) Submit(job func(ctx context.Context) error) {
	p.group.Go(func() error {
		return job(p.ctx)
	})
}

// Wait blocks until every submitted job has returned, and returns the first
// non-nil error encountered, if any.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
