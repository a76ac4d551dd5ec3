// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package offload implements the runner for accelerator backends: tasks are produced on the
// host by a pipeline.Emitter and fed to a pipeline.AcceleratorNode that submits them to the
// device, overlapping host dispatch with device execution.
package offload

import (
	"time"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/pkg/pipeline"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Runner implements backends.Runner by running a two-stage pipeline into an Accelerator.
//
// It owns the Accelerator: it shouldn't be shared with other runners, and it is finalized by
// Runner.Finalize.
type Runner struct {
	name, description string
	accelerator       pipeline.Accelerator
	capabilities      backends.Capabilities
	queueCapacity     int
	onTaskDone        func(taskID int)
	output            []int32
}

// Compile-time check that offload.Runner implements backends.Runner and backends.TaskObserver.
var (
	_ backends.Runner       = &Runner{}
	_ backends.TaskObserver = &Runner{}
)

// New returns a Runner named name (the device name) that takes ownership of accelerator.
func New(name string, accelerator pipeline.Accelerator, capabilities backends.Capabilities) *Runner {
	capabilities = capabilities.Clone()
	capabilities.Family = backends.FamilyAccelerator
	capabilities.DeviceTiming = true
	return &Runner{
		name:          name,
		description:   accelerator.Name(),
		accelerator:   accelerator,
		capabilities:  capabilities,
		queueCapacity: pipeline.DefaultQueueCapacity,
	}
}

// WithQueueCapacity sets the capacity of the channel between the emitter and the accelerator node.
func (r *Runner) WithQueueCapacity(capacity int) *Runner {
	r.queueCapacity = capacity
	return r
}

// Name implements backends.Runner.
func (r *Runner) Name() string { return r.name }

// Description implements backends.Runner.
func (r *Runner) Description() string { return r.description }

// Capabilities implements backends.Runner.
func (r *Runner) Capabilities() backends.Capabilities { return r.capabilities }

// OnTaskDone implements backends.TaskObserver.
func (r *Runner) OnTaskDone(fn func(taskID int)) {
	r.onTaskDone = fn
}

// Execute implements backends.Runner.
//
// Pipeline failures are fatal, see backends.OnFatal.
func (r *Runner) Execute(elementsPerTask, taskCount int) (backends.ComputeResult, error) {
	var res backends.ComputeResult
	if err := backends.ValidateSizes(elementsPerTask, taskCount); err != nil {
		return res, err
	}
	if r.accelerator == nil {
		return res, errors.Wrapf(backends.ErrInvalidConfiguration, "runner %q used after Finalize", r.name)
	}

	stats := pipeline.NewStatsCollector()
	countFuture := stats.CountFuture()
	emitter := pipeline.NewEmitter(elementsPerTask, taskCount)
	node := pipeline.NewAcceleratorNode(r.accelerator, stats)
	if r.onTaskDone != nil {
		node.OnTaskDone(r.onTaskDone)
	}
	pipe := pipeline.New(emitter, node).WithQueueCapacity(r.queueCapacity)

	klog.Infof("[%s] Starting pipeline execution (%d tasks, N=%d)", r.name, taskCount, elementsPerTask)
	start := time.Now()
	if err := pipe.RunAndWait(); err != nil {
		return res, backends.Fatal(errors.Wrapf(backends.ErrPipelineFailure, "%s: %v", r.name, err))
	}
	res.Elapsed = time.Since(start)
	klog.Infof("[%s] Pipeline execution finished", r.name)

	_, _, r.output = emitter.Buffers()
	res.TasksCompleted = countFuture.Get()
	final := stats.Snapshot()
	res.Computed = final.Computed
	res.TotalInNodeTime = final.TotalInNodeTime
	res.InterCompletionTime = final.InterCompletionTime
	return res, nil
}

// Output returns the output buffer of the last successful Execute.
func (r *Runner) Output() []int32 { return r.output }

// Finalize implements backends.Runner. It finalizes the accelerator.
func (r *Runner) Finalize() {
	if r.accelerator == nil {
		return
	}
	r.accelerator.Finalize()
	r.accelerator = nil
}
