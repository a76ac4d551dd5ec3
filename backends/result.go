// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"
	"time"
)

// ComputeResult holds the raw metrics of one call to Runner.Execute.
//
// CPU runners only fill Elapsed and TasksCompleted.
type ComputeResult struct {
	// Elapsed is the host wall-clock time from the start to the end of the whole run.
	Elapsed time.Duration

	// TasksCompleted is the number of tasks that finished. It equals the requested task count on success.
	TasksCompleted int

	// Computed is the sum of the device-side execution times of every task.
	Computed time.Duration

	// TotalInNodeTime is the sum, over the tasks, of the time each spent inside the accelerator
	// node, from submission to the folding of its completion. It includes Computed.
	TotalInNodeTime time.Duration

	// InterCompletionTime is the mean time between consecutive task completions.
	// It is 0 if fewer than 2 tasks completed.
	InterCompletionTime time.Duration
}

// String implements fmt.Stringer.
func (r ComputeResult) String() string {
	return fmt.Sprintf("{elapsed=%s, tasks=%d, computed=%s, in-node=%s, inter-completion=%s}",
		r.Elapsed, r.TasksCompleted, r.Computed, r.TotalInNodeTime, r.InterCompletionTime)
}
