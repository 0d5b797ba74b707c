// Package cluster implements the small shared-variable runtime the
// distributed sample-sort engine is built on (spec §9): barriers,
// broadcast, reduction, and asynchronous put, addressed by peer id.
// Node discovery and the real peer-group launcher are out of scope
// (spec §1); LocalCluster stands in for them with goroutines and
// channels sharing one process, so the core sort logic can be exercised
// and tested without a real network.
package cluster

import "sync"

// Barrier is a cyclic (reusable) barrier for n goroutines, used at every
// phase boundary in spec §5 ("Suspension / blocking points").
type Barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   int
}

// NewBarrier returns a barrier that releases once n goroutines have
// called Wait.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until n goroutines (across however many times Wait has
// been called on this Barrier) have all called Wait, then releases all
// of them together. Safe to call repeatedly for successive phases.
func (b *Barrier) Wait() {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}
