// Package pool admits work onto goroutines through a fixed number of permits.
package pool

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool runs functions concurrently, never more than its size at once.
type Pool struct {
	size     int
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New returns a pool with n permits. n < 1 is treated as 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{size: n, sem: semaphore.NewWeighted(int64(n))}
}

// Go blocks until a permit is free, then runs fn on a new goroutine. It
// returns the context error without running fn if ctx ends first.
func (p *Pool) Go(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.wg.Add(1)
	p.track(p.inFlight.Add(1))
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer p.inFlight.Add(-1)
		fn()
	}()
	return nil
}

func (p *Pool) track(cur int64) {
	for {
		old := p.peak.Load()
		if cur <= old || p.peak.CompareAndSwap(old, cur) {
			return
		}
	}
}

// Wait blocks until every admitted function has returned.
func (p *Pool) Wait() { p.wg.Wait() }

// Size is the number of permits.
func (p *Pool) Size() int { return p.size }

// Peak is the largest number of functions observed running at once.
func (p *Pool) Peak() int { return int(p.peak.Load()) }
