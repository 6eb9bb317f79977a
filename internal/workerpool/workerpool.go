// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool runs independent translation jobs on a fixed set of
// goroutines. A Pool is created once per invocation and reused for every
// program it translates.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	errs := pool.Run(len(funcs), func(i int) error {
//	    return translate(funcs[i])
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent set of workers.
type Pool struct {
	numWorkers int
	jobs       chan batch
	closeOnce  sync.Once
	closed     atomic.Bool
}

// batch is one worker's share of a ForEach call.
type batch struct {
	run  func()
	done *sync.WaitGroup
}

// New starts numWorkers workers. If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan batch, numWorkers),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for b := range p.jobs {
		b.run()
		b.done.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers after pending work completes. Calling Close
// multiple times is safe; a closed pool runs jobs on the caller's goroutine.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.jobs)
	})
}

// ForEach calls fn(i) for every i in [0, n) and blocks until all calls
// return. Indices are handed out one at a time, so slow jobs do not hold up
// a whole contiguous range.
func (p *Pool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.numWorkers, n)
	if workers == 1 || p.closed.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.jobs <- batch{
			run: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					fn(i)
				}
			},
			done: &wg,
		}
	}
	wg.Wait()
}

// Run calls job(i) for every i in [0, n) and returns the errors indexed like
// the jobs; the slice is all nil when every job succeeded.
func (p *Pool) Run(n int, job func(i int) error) []error {
	if n <= 0 {
		return nil
	}
	errs := make([]error, n)
	p.ForEach(n, func(i int) {
		errs[i] = job(i)
	})
	return errs
}
