// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package emulator implements an asynchronous device queue executed on the host, used by the
// accelerator backends.
//
// A Device has a number of compute units, each executing one task at a time: with a single
// compute unit tasks complete in submission order, with more they may complete out of order.
// Each compute unit owns its device memory: inputs are copied in before the kernel runs and
// the output is copied back to the host buffer afterward, serialized with the other compute
// units, so concurrently completing tasks never race on the shared output buffer.
//
// Only the kernel execution itself is accounted as device time.
package emulator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/kernelbench/internal/workerspool"
	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/gomlx/kernelbench/pkg/pipeline"
	"github.com/gomlx/kernelbench/pkg/support/xsync"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config of an emulated device.
type Config struct {
	// Name of the device, used in logs and errors.
	Name string

	// ComputeUnits is the number of tasks executing concurrently. Values < 1 are taken as 1.
	ComputeUnits int

	// QueueDepth is the maximum number of outstanding (queued or executing) tasks: Submit blocks
	// beyond it. If <= 0 it defaults to 2*ComputeUnits.
	QueueDepth int

	// Lanes is the number of parallel workers used to run one kernel inside a compute unit.
	// Values < 1 are taken as 1 (sequential).
	Lanes int
}

// ErrFinalized is returned by Submit after Finalize was called.
var ErrFinalized = errors.New("device finalized")

// Device is an emulated accelerator. It implements pipeline.Accelerator.
type Device struct {
	config Config
	kernel kernels.Kernel

	slots *xsync.Semaphore
	queue chan job
	lanes *workerspool.Pool

	muQueue   sync.RWMutex
	finalized bool

	// muHost serializes writes into host buffers.
	muHost sync.Mutex

	computeUnits  sync.WaitGroup
	tasksExecuted atomic.Int64
}

// Compile-time check that emulator.Device implements pipeline.Accelerator.
var _ pipeline.Accelerator = &Device{}

type job struct {
	task *pipeline.Task
	done func(time.Duration, error)
}

// New creates the device and starts its compute units. Call Finalize to stop them.
func New(config Config, kernel kernels.Kernel) *Device {
	config.ComputeUnits = max(config.ComputeUnits, 1)
	config.Lanes = max(config.Lanes, 1)
	if config.QueueDepth <= 0 {
		config.QueueDepth = 2 * config.ComputeUnits
	}
	d := &Device{
		config: config,
		kernel: kernel,
		slots:  xsync.NewSemaphore(config.QueueDepth),
		queue:  make(chan job, config.QueueDepth),
	}
	if config.Lanes > 1 {
		d.lanes = workerspool.New()
		d.lanes.SetMaxParallelism(config.Lanes)
	}
	for unit := range config.ComputeUnits {
		d.computeUnits.Add(1)
		go d.runComputeUnit(unit)
	}
	klog.V(1).Infof("emulated device %q: %d compute units, queue depth %d, %d lanes, kernel %s",
		config.Name, config.ComputeUnits, config.QueueDepth, config.Lanes, kernel)
	return d
}

// Name implements pipeline.Accelerator.
func (d *Device) Name() string { return d.config.Name }

// Config returns the effective configuration of the device.
func (d *Device) Config() Config { return d.config }

// Kernel executed by the device.
func (d *Device) Kernel() kernels.Kernel { return d.kernel }

// TasksExecuted returns the number of tasks whose execution finished, successfully or not.
func (d *Device) TasksExecuted() int { return int(d.tasksExecuted.Load()) }

// Outstanding returns the number of tasks queued or executing.
func (d *Device) Outstanding() int { return d.slots.InUse() }

// Submit implements pipeline.Accelerator. It blocks while QueueDepth tasks are outstanding.
func (d *Device) Submit(task *pipeline.Task, done func(deviceTime time.Duration, err error)) error {
	if task == nil || done == nil {
		return errors.Errorf("%s: Submit requires a task and a completion function", d.config.Name)
	}
	if task.N < 0 || task.N > len(task.A) || task.N > len(task.B) || task.N > len(task.C) {
		return errors.Errorf("%s: %s has N=%d, larger than its buffers (%d, %d, %d)",
			d.config.Name, task, task.N, len(task.A), len(task.B), len(task.C))
	}
	d.muQueue.RLock()
	defer d.muQueue.RUnlock()
	if d.finalized {
		return errors.Wrapf(ErrFinalized, "%s: can't submit %s", d.config.Name, task)
	}
	d.slots.Acquire()
	d.queue <- job{task: task, done: done}
	return nil
}

// Finalize implements pipeline.Accelerator: it waits for the queued tasks to finish and stops
// the compute units.
func (d *Device) Finalize() {
	d.muQueue.Lock()
	if d.finalized {
		d.muQueue.Unlock()
		return
	}
	d.finalized = true
	close(d.queue)
	d.muQueue.Unlock()
	d.computeUnits.Wait()
}

// deviceMemory of one compute unit.
type deviceMemory struct {
	a, b, c []int32
}

func (m *deviceMemory) reserve(n int) {
	if cap(m.a) < n {
		m.a, m.b, m.c = make([]int32, n), make([]int32, n), make([]int32, n)
	}
	m.a, m.b, m.c = m.a[:n], m.b[:n], m.c[:n]
}

func (d *Device) runComputeUnit(unit int) {
	defer d.computeUnits.Done()
	var mem deviceMemory
	for j := range d.queue {
		deviceTime, err := d.execute(j.task, &mem)
		if err != nil {
			err = errors.WithMessagef(err, "%s compute unit #%d", d.config.Name, unit)
		}
		d.tasksExecuted.Add(1)
		d.slots.Release()
		j.done(deviceTime, err)
	}
}

// execute task on the compute unit owning mem, and returns the kernel execution time.
// Panics while executing are returned as errors.
func (d *Device) execute(task *pipeline.Task, mem *deviceMemory) (deviceTime time.Duration, err error) {
	err = exceptions.TryCatch[error](func() {
		n := task.N
		mem.reserve(n)
		copy(mem.a, task.A[:n])
		copy(mem.b, task.B[:n])

		start := time.Now()
		if d.lanes != nil {
			if laneErr := d.runOnLanes(mem, n); laneErr != nil {
				panic(laneErr)
			}
		} else {
			d.kernel.ApplyRange(mem.a, mem.b, mem.c, 0, n)
		}
		deviceTime = time.Since(start)

		d.muHost.Lock()
		defer d.muHost.Unlock()
		copy(task.C[:n], mem.c)
	})
	return
}

// runOnLanes spreads the kernel over the lanes of the device in chunks. A panic in any lane is
// returned as an error once every lane has stopped.
func (d *Device) runOnLanes(mem *deviceMemory, n int) error {
	lanes := d.config.Lanes
	grain := max((n+4*lanes-1)/(4*lanes), 1)
	var next atomic.Int64
	var muErr sync.Mutex
	var firstErr error
	d.lanes.Saturate(func() {
		err := exceptions.TryCatch[error](func() {
			for {
				chunkStart := int(next.Add(int64(grain))) - grain
				if chunkStart >= n {
					return
				}
				d.kernel.ApplyRange(mem.a, mem.b, mem.c, chunkStart, min(chunkStart+grain, n))
			}
		})
		if err != nil {
			muErr.Lock()
			if firstErr == nil {
				firstErr = err
			}
			muErr.Unlock()
		}
	})
	return firstErr
}
