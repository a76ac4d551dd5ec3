// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/internal/workerspool"
)

// PoolName is the device name of the runner using a dynamically scheduled parallel-for over a
// pool of workers.
const PoolName = "cpu_pool"

// NewPool returns a CPU runner that spreads each task over a workerspool.Pool: the range is cut
// in small chunks that idle workers pick up as they go.
//
// The kernelPath is ignored.
func NewPool(_, kernelName string) (backends.Runner, error) {
	pool := workerspool.New()
	return New(PoolName, "CPU Parallel Pool", kernelName, func(start, end int, body func(i int)) {
		pool.ParallelFor(start, end, 0, body)
	}), nil
}
