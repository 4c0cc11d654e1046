// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package collection

import "sync"

// ThreadPool is the injected worker pool spec.md §1 names as an
// external collaborator with a stated contract: chunked, concurrent
// execution of independent work items. No corpus library implements a
// general worker pool (one is declared out of scope), so the default
// implementation below is goroutines + sync.WaitGroup, the minimal
// idiomatic Go substitute.
type ThreadPool interface {
	// Go schedules fn to run, returning once all scheduled fns from
	// this batch complete when Wait is called.
	Go(fn func())
	// Wait blocks until every fn scheduled since the last Wait
	// returns.
	Wait()
}

// GoPool is the default ThreadPool: an unbounded goroutine-per-task
// pool synchronized with a WaitGroup.
type GoPool struct {
	wg sync.WaitGroup
}

// NewGoPool returns a ready-to-use GoPool.
func NewGoPool() *GoPool { return &GoPool{} }

func (p *GoPool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}

func (p *GoPool) Wait() { p.wg.Wait() }

// chunk splits n items into roughly equal contiguous ranges, one per
// worker, for the partitioned Map/Filter/Reduce variants.
func chunk(n, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers == 0 {
		return nil
	}
	out := make([][2]int, 0, workers)
	base := n / workers
	rem := n % workers
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		out = append(out, [2]int{start, start + size})
		start += size
	}
	return out
}

const defaultParallelWorkers = 8
