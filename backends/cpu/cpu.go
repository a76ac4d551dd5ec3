// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package cpu implements the CPU runners: each task is a data-parallel loop over the elements,
// and tasks run one after the other.
//
// All CPU runners share the same orchestration (Runner): validation, buffer initialization,
// timing and per-element kernel dispatch. They differ only on the ParallelRange used to spread
// the loop over the CPU cores, so results across runners are directly comparable.
package cpu

import (
	"time"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ParallelRange calls body(i) for every i in [start, end), spread over the available CPU
// parallelism, and returns only once the whole range is computed.
type ParallelRange func(start, end int, body func(i int))

// Runner implements backends.Runner for CPU execution, with a pluggable ParallelRange.
type Runner struct {
	name, tag  string
	kernelName string
	parallel   ParallelRange
	onTaskDone func(taskID int)

	a, b, c []int32
}

// Compile-time check that cpu.Runner implements backends.Runner and backends.TaskObserver.
var (
	_ backends.Runner       = &Runner{}
	_ backends.TaskObserver = &Runner{}
)

// New creates a CPU runner named name, with the display tag used in logs, for the given kernel,
// parallelizing each task with parallel.
//
// The kernel name is only validated when Execute is called.
func New(name, tag, kernelName string, parallel ParallelRange) *Runner {
	return &Runner{
		name:       name,
		tag:        tag,
		kernelName: kernelName,
		parallel:   parallel,
	}
}

// Name implements backends.Runner.
func (r *Runner) Name() string { return r.name }

// Description implements backends.Runner.
func (r *Runner) Description() string { return r.tag }

// Capabilities implements backends.Runner.
func (r *Runner) Capabilities() backends.Capabilities {
	return Capabilities.Clone()
}

// Capabilities of every CPU runner.
var Capabilities = backends.Capabilities{
	Family: backends.FamilyCPU,
	Kernels: map[string]bool{
		kernels.VectorAddName:    true,
		kernels.PolynomialName:   true,
		kernels.HeavyComputeName: true,
	},
}

// OnTaskDone implements backends.TaskObserver.
func (r *Runner) OnTaskDone(fn func(taskID int)) {
	r.onTaskDone = fn
}

// Output returns the output buffer of the last Execute.
func (r *Runner) Output() []int32 {
	return r.c
}

// Execute implements backends.Runner.
func (r *Runner) Execute(elementsPerTask, taskCount int) (backends.ComputeResult, error) {
	var res backends.ComputeResult
	if err := backends.ValidateSizes(elementsPerTask, taskCount); err != nil {
		return res, err
	}
	kernel, err := kernels.Parse(r.kernelName)
	if err != nil {
		return res, backends.Fatal(errors.Wrapf(backends.ErrUnsupportedKernel, "%s: %v", r.tag, err))
	}
	klog.Infof("[%s] Running %d tasks in parallel on all CPU cores", r.tag, taskCount)

	r.a = make([]int32, elementsPerTask)
	r.b = make([]int32, elementsPerTask)
	r.c = make([]int32, elementsPerTask)
	kernels.InitInputs(r.a, r.b)
	a, b, c := r.a, r.b, r.c
	body := func(i int) { kernel.Apply(a, b, c, i) }

	start := time.Now()
	for taskID := 1; taskID <= taskCount; taskID++ {
		klog.V(2).Infof("[%s - START] Processing task %d with N=%d", r.tag, taskID, elementsPerTask)
		r.parallel(0, elementsPerTask, body)
		klog.V(2).Infof("[%s - END] Task %d finished", r.tag, taskID)
		res.TasksCompleted++
		if r.onTaskDone != nil {
			r.onTaskDone(taskID)
		}
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Finalize implements backends.Runner. It releases the buffers.
func (r *Runner) Finalize() {
	r.a, r.b, r.c = nil, nil, nil
}
