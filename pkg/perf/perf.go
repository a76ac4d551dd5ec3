// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package perf derives the performance figures reported at the end of a benchmark run from the
// raw backends.ComputeResult.
package perf

import (
	"time"

	"github.com/gomlx/kernelbench/backends"
)

// PerformanceData is derived from a ComputeResult: nothing here is measured directly.
//
// Per-task means are taken over TasksCompleted. Device fields are zero for runners without
// device timing (see backends.Capabilities.DeviceTiming).
type PerformanceData struct {
	ElapsedSeconds float64

	// TasksPerSecond and ElementsPerSecond are the throughput over the whole run.
	TasksPerSecond    float64
	ElementsPerSecond float64

	// HostTimePerTask is Elapsed / TasksCompleted.
	HostTimePerTask time.Duration

	// DeviceTimePerTask is the mean device execution time of a task.
	DeviceTimePerTask time.Duration

	// InNodeTimePerTask is the mean time a task spent in the accelerator node.
	InNodeTimePerTask time.Duration

	// InterCompletionTime is the mean time between consecutive completions.
	InterCompletionTime time.Duration

	// OverheadPerTask is InNodeTimePerTask - DeviceTimePerTask: time a task spent queued or in
	// host bookkeeping.
	OverheadPerTask time.Duration

	// DeviceUtilization is Computed / Elapsed. It is above 1 when tasks overlap on the device.
	DeviceUtilization float64
}

// Calculate derives the PerformanceData of res, a run of tasks with elementsPerTask elements each.
func Calculate(res backends.ComputeResult, elementsPerTask int) PerformanceData {
	var p PerformanceData
	p.ElapsedSeconds = res.Elapsed.Seconds()
	p.InterCompletionTime = res.InterCompletionTime
	if res.TasksCompleted <= 0 {
		return p
	}
	tasks := time.Duration(res.TasksCompleted)
	p.HostTimePerTask = res.Elapsed / tasks
	p.DeviceTimePerTask = res.Computed / tasks
	p.InNodeTimePerTask = res.TotalInNodeTime / tasks
	p.OverheadPerTask = max(p.InNodeTimePerTask-p.DeviceTimePerTask, 0)
	if p.ElapsedSeconds > 0 {
		p.TasksPerSecond = float64(res.TasksCompleted) / p.ElapsedSeconds
		p.ElementsPerSecond = p.TasksPerSecond * float64(elementsPerTask)
		p.DeviceUtilization = res.Computed.Seconds() / p.ElapsedSeconds
	}
	return p
}
