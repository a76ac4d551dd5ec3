// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements a soft-limited pool of goroutines, and the parallel-for loop
// used by the CPU backends and by the emulated devices on top of it.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool limits how many goroutines run work concurrently. Goroutines are not reused: the pool
// only keeps count of the ones it started.
//
// The zero value is not valid, use New.
type Pool struct {
	// maxParallelism: 0 disables parallelism, negative values mean unlimited.
	maxParallelism int

	mu      sync.Mutex
	running int
}

// New returns a Pool with parallelism runtime.GOMAXPROCS(0).
func New() *Pool {
	return &Pool{maxParallelism: runtime.GOMAXPROCS(0)}
}

// IsEnabled returns whether parallelism is enabled (MaxParallelism() != 0).
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (MaxParallelism() < 0).
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism returns the limit of goroutines running concurrently, not counting the callers
// of Saturate or ParallelFor, which also do work. 0 means disabled, -1 unlimited.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the limit returned by MaxParallelism.
//
// It must be called before the pool is used.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

// Running returns the number of goroutines started by the pool that are still running.
func (w *Pool) Running() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// StartIfAvailable runs task in a new goroutine if the limit allows it, and returns whether it
// did. Waiting for task to finish is up to the caller.
func (w *Pool) StartIfAvailable(task func()) bool {
	if w.IsUnlimited() {
		go task()
		return true
	}
	w.mu.Lock()
	if w.running >= w.maxParallelism {
		w.mu.Unlock()
		return false
	}
	w.running++
	w.mu.Unlock()

	go func() {
		defer func() {
			w.mu.Lock()
			w.running--
			w.mu.Unlock()
		}()
		task()
	}()
	return true
}

// Saturate runs task in as many workers as the pool currently allows, including the calling
// goroutine, and returns only when every copy of task has returned.
//
// Tasks are expected to pull work from a shared source (a channel or an atomic counter) until it
// is exhausted. If parallelism is disabled, task is run once inline. If it is unlimited,
// runtime.GOMAXPROCS(0) copies are started.
func (w *Pool) Saturate(task func()) {
	if !w.IsEnabled() {
		task()
		return
	}
	numWorkers := w.maxParallelism
	if w.IsUnlimited() {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	for range numWorkers - 1 {
		wg.Add(1)
		if !w.StartIfAvailable(func() {
			defer wg.Done()
			task()
		}) {
			wg.Done()
			break
		}
	}
	task()
	wg.Wait()
}

// ParallelFor calls body(i) for every i in [start, end), distributing chunks of grain
// consecutive indices dynamically over the workers of the pool. It returns once the whole range
// is computed.
//
// If grain <= 0 a grain is picked so that each worker gets about 4 chunks.
func (w *Pool) ParallelFor(start, end, grain int, body func(i int)) {
	if end <= start {
		return
	}
	size := end - start
	if grain <= 0 {
		workers := max(w.maxParallelism, 1)
		if w.IsUnlimited() {
			workers = runtime.GOMAXPROCS(0)
		}
		grain = max((size+4*workers-1)/(4*workers), 1)
	}
	if grain >= size || !w.IsEnabled() {
		for i := start; i < end; i++ {
			body(i)
		}
		return
	}

	var next atomic.Int64
	next.Store(int64(start))
	w.Saturate(func() {
		for {
			chunkStart := int(next.Add(int64(grain))) - grain
			if chunkStart >= end {
				return
			}
			chunkEnd := min(chunkStart+grain, end)
			for i := chunkStart; i < chunkEnd; i++ {
				body(i)
			}
		}
	})
}
