// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestForEach(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)
	pool.ForEach(n, func(i int) {
		results[i] = i * 2
	})

	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestForEachSmallN(t *testing.T) {
	pool := New(8)
	defer pool.Close()

	var count atomic.Int32
	pool.ForEach(3, func(int) {
		count.Add(1)
	})
	if count.Load() != 3 {
		t.Errorf("count = %d, want 3", count.Load())
	}
}

func TestForEachZeroN(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var called bool
	pool.ForEach(0, func(int) {
		called = true
	})
	if called {
		t.Error("ForEach with n=0 should not call fn")
	}
}

func TestRun(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	failure := errors.New("odd")
	errs := pool.Run(10, func(i int) error {
		if i%2 == 1 {
			return failure
		}
		return nil
	})
	if len(errs) != 10 {
		t.Fatalf("len(errs) = %d, want 10", len(errs))
	}
	for i, err := range errs {
		want := error(nil)
		if i%2 == 1 {
			want = failure
		}
		if err != want {
			t.Errorf("errs[%d] = %v, want %v", i, err, want)
		}
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close() // Should not panic
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 100
	results := make([]int, n)
	pool.ForEach(n, func(i int) {
		results[i] = i * 2
	})
	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func BenchmarkForEach(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	for b.Loop() {
		pool.ForEach(1000, func(i int) {
			_ = i * i
		})
	}
}
