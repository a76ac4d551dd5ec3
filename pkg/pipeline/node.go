// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"time"

	"github.com/gomlx/kernelbench/pkg/support/xsync"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// completionsBufferSize is the capacity of the channel between device callbacks and the
// completion side of the node.
const completionsBufferSize = 64

// AcceleratorNode is the second stage of the pipeline: it submits the Tasks it receives to an
// Accelerator and aggregates their completions into a StatsCollector.
//
// Internally it runs two goroutines: the submission side pulls tasks and submits them, so the
// host can dispatch task k+1 while task k is still executing on the device; the completion side
// folds each completion into the statistics.
type AcceleratorNode struct {
	accelerator Accelerator
	stats       *StatsCollector
	inFlight    *xsync.DynamicWaitGroup
	onTaskDone  func(taskID int)
}

// completion of one task, as reported by the device.
type completion struct {
	task       *Task
	entry      time.Duration // Offset (StatsCollector.now) when the task entered the node.
	deviceTime time.Duration
	err        error
}

// NewAcceleratorNode creates a node submitting to accelerator and publishing into stats.
func NewAcceleratorNode(accelerator Accelerator, stats *StatsCollector) *AcceleratorNode {
	return &AcceleratorNode{
		accelerator: accelerator,
		stats:       stats,
		inFlight:    xsync.NewDynamicWaitGroup(),
	}
}

// OnTaskDone sets a function called (from the completion goroutine) after each task completion
// was folded into the statistics.
func (n *AcceleratorNode) OnTaskDone(fn func(taskID int)) {
	n.onTaskDone = fn
}

// InFlight returns the number of tasks submitted whose completion was not yet reported by the device.
func (n *AcceleratorNode) InFlight() int {
	return n.inFlight.Count()
}

// Run consumes tasks from in until it is closed, and returns after every submitted task completed.
//
// On success the StatsCollector completion channel is fulfilled with the number of tasks
// processed. On the first error (a failed submission or a task failing on the device) no new
// tasks are submitted, the ones already on the device are drained, and the error is returned;
// the completion channel is then left unfulfilled.
func (n *AcceleratorNode) Run(ctx context.Context, in <-chan *Task) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	completions := make(chan completion, completionsBufferSize)
	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			// Only close after every accepted submission has reported back.
			n.inFlight.Wait()
			close(completions)
		}()
		err := n.submitAll(ctx, in, completions)
		if err != nil {
			cancel(err)
		}
		return err
	})
	g.Go(func() error {
		return n.completeAll(completions, cancel)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	count := n.stats.complete()
	klog.V(1).Infof("accelerator node for %s finished: %d tasks processed", n.accelerator.Name(), count)
	return nil
}

// submitAll is the submission side.
func (n *AcceleratorNode) submitAll(ctx context.Context, in <-chan *Task, completions chan<- completion) error {
	for {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		var task *Task
		var ok bool
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case task, ok = <-in:
		}
		if !ok {
			return nil
		}

		entry := n.stats.now()
		n.inFlight.Add(1)
		klog.V(2).Infof("[%s - START] submitting %s", n.accelerator.Name(), task)
		err := n.accelerator.Submit(task, func(deviceTime time.Duration, err error) {
			completions <- completion{task: task, entry: entry, deviceTime: deviceTime, err: err}
			n.inFlight.Done()
		})
		if err != nil {
			n.inFlight.Done()
			return errors.WithMessagef(err, "failed to submit %s to %s", task, n.accelerator.Name())
		}
	}
}

// completeAll is the completion side. It always drains completions until it is closed, and calls
// abort with the first device failure so the submission side stops.
func (n *AcceleratorNode) completeAll(completions <-chan completion, abort context.CancelCauseFunc) error {
	var firstErr error
	for c := range completions {
		if firstErr != nil {
			continue
		}
		if c.err != nil {
			firstErr = errors.WithMessagef(c.err, "%s failed on %s", c.task, n.accelerator.Name())
			abort(firstErr)
			continue
		}
		n.stats.recordCompletion(c.entry, n.stats.now(), c.deviceTime)
		klog.V(2).Infof("[%s - END] %s finished, device time %s", n.accelerator.Name(), c.task, c.deviceTime)
		if n.onTaskDone != nil {
			n.onTaskDone(c.task.ID)
		}
	}
	return firstErr
}
