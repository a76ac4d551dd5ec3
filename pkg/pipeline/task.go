// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the host side of the accelerator offload: an Emitter producing
// Tasks, an AcceleratorNode that submits them to an Accelerator and aggregates completion
// statistics into a StatsCollector, and the two-stage Pipeline connecting them.
package pipeline

import (
	"fmt"
	"time"
)

// Task is one unit of kernel work.
//
// A, B and C are views over buffers owned by the Emitter that created the Task: a Task never owns
// them, and the Emitter outlives every Task it creates. A and B are read-only once the Emitter
// is built; writes to C are the responsibility of the Accelerator (see Accelerator).
type Task struct {
	A, B, C []int32

	// N is the number of elements to compute.
	N int

	// ID is the sequence number of the task, starting at 1.
	ID int
}

// String implements fmt.Stringer.
func (t *Task) String() string {
	return fmt.Sprintf("Task#%d(n=%d)", t.ID, t.N)
}

// Accelerator is a device that executes Tasks asynchronously.
//
// Implementations must uphold:
//
//   - done is called exactly once for every Submit that returned nil, possibly from another
//     goroutine and in any order with respect to other submissions.
//   - done is not called if Submit returns an error.
//   - Concurrently executing tasks share the output buffer C: the Accelerator must serialize
//     conflicting writes to it.
type Accelerator interface {
	// Name of the accelerator, for logging.
	Name() string

	// Submit enqueues task for execution. It may block if the device has too much outstanding work.
	// When the task finishes, done is called with the device-side execution time, or with an error.
	Submit(task *Task, done func(deviceTime time.Duration, err error)) error

	// Finalize releases the device. No Submit calls are allowed afterward.
	Finalize()
}
