// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/gomlx/kernelbench/pkg/kernels"
)

// Emitter is the source stage of the pipeline: it owns the data buffers and generates a bounded
// sequence of Tasks over them.
//
// It is pulled by a single goroutine and never blocks.
type Emitter struct {
	a, b, c     []int32
	n           int
	tasksToSend int
	tasksSent   int
}

// NewEmitter allocates the buffers for n elements, initializes the inputs (A[i]=i, B[i]=2i),
// and prepares to emit numTasks tasks.
func NewEmitter(n, numTasks int) *Emitter {
	e := &Emitter{
		a:           make([]int32, n),
		b:           make([]int32, n),
		c:           make([]int32, n),
		n:           n,
		tasksToSend: numTasks,
	}
	kernels.InitInputs(e.a, e.b)
	return e
}

// Next returns the next Task, or false once all tasks were emitted (end-of-stream).
func (e *Emitter) Next() (*Task, bool) {
	if e.tasksSent >= e.tasksToSend {
		return nil, false
	}
	e.tasksSent++
	return &Task{A: e.a, B: e.b, C: e.c, N: e.n, ID: e.tasksSent}, true
}

// TasksSent returns how many tasks were emitted so far.
func (e *Emitter) TasksSent() int {
	return e.tasksSent
}

// Buffers returns the input and output buffers shared by the emitted tasks.
// The returned slices must not be modified.
func (e *Emitter) Buffers() (a, b, c []int32) {
	return e.a, e.b, e.c
}
