// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"runtime"

	"github.com/gomlx/kernelbench/backends"
	"golang.org/x/sync/errgroup"
)

// StaticName is the device name of the runner using statically scheduled parallel loops.
const StaticName = "cpu_static"

// StaticParallelRange splits [start, end) into one contiguous block per worker, up to
// numWorkers workers, and runs each block on its own goroutine, the way a
// "parallel for, static schedule" loop directive does.
//
// If numWorkers <= 0, runtime.GOMAXPROCS(0) is used.
func StaticParallelRange(numWorkers int) ParallelRange {
	return func(start, end int, body func(i int)) {
		size := end - start
		if size <= 0 {
			return
		}
		workers := numWorkers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		workers = min(workers, size)
		if workers == 1 {
			for i := start; i < end; i++ {
				body(i)
			}
			return
		}

		var g errgroup.Group
		g.SetLimit(workers)
		blockSize, remainder := size/workers, size%workers
		blockStart := start
		for w := range workers {
			blockEnd := blockStart + blockSize
			if w < remainder {
				blockEnd++
			}
			lo, hi := blockStart, blockEnd
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					body(i)
				}
				return nil
			})
			blockStart = blockEnd
		}
		_ = g.Wait()
	}
}

// NewStatic returns a CPU runner with statically scheduled parallel loops (see StaticParallelRange).
//
// The kernelPath is ignored.
func NewStatic(_, kernelName string) (backends.Runner, error) {
	return New(StaticName, "CPU Static Parallel", kernelName, StaticParallelRange(0)), nil
}
