// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// DefaultQueueCapacity is the default capacity of the channel between the Emitter and the AcceleratorNode.
const DefaultQueueCapacity = 64

// Pipeline connects an Emitter to an AcceleratorNode.
type Pipeline struct {
	emitter       *Emitter
	node          *AcceleratorNode
	queueCapacity int
}

// New returns a two-stage pipeline. Call RunAndWait to execute it.
func New(emitter *Emitter, node *AcceleratorNode) *Pipeline {
	return &Pipeline{
		emitter:       emitter,
		node:          node,
		queueCapacity: DefaultQueueCapacity,
	}
}

// WithQueueCapacity sets the capacity of the channel between the two stages.
// A capacity of 0 makes each hand-off synchronous.
func (p *Pipeline) WithQueueCapacity(capacity int) *Pipeline {
	p.queueCapacity = max(capacity, 0)
	return p
}

// RunAndWait runs both stages and waits for them to finish.
//
// It returns an error if the node failed. The pipeline can only be run once.
func (p *Pipeline) RunAndWait() error {
	g, ctx := errgroup.WithContext(context.Background())
	tasks := make(chan *Task, p.queueCapacity)

	// Emitter stage.
	g.Go(func() error {
		defer close(tasks)
		for {
			task, ok := p.emitter.Next()
			if !ok {
				klog.V(1).Infof("emitter: end-of-stream after %d tasks", p.emitter.TasksSent())
				return nil
			}
			select {
			case tasks <- task:
			case <-ctx.Done():
				return nil
			}
		}
	})

	// Accelerator node stage.
	g.Go(func() error {
		return p.node.Run(ctx, tasks)
	})

	if err := g.Wait(); err != nil {
		return errors.WithMessage(err, "pipeline execution failed")
	}
	return nil
}
