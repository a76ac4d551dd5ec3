// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/kernelbench/pkg/support/xsync"
)

// StatsCollector aggregates the statistics produced by the goroutines of an AcceleratorNode.
//
// It is created for one run and must not be reused. The live counters are atomics, and can be
// read at any time with Snapshot. The final task count is delivered once through the Future
// returned by CountFuture.
type StatsCollector struct {
	tasksProcessed     atomic.Int64
	computed           atomic.Int64 // nanoseconds
	totalInNode        atomic.Int64 // nanoseconds
	interCompletionSum atomic.Int64 // nanoseconds

	// lastCompletion is the offset from origin of the last completion, or -1 before the first one.
	lastCompletion atomic.Int64
	origin         time.Time

	countPromise  *xsync.Promise[int]
	countFuture   *xsync.Future[int]
	futureHandout atomic.Bool
}

// NewStatsCollector returns an empty StatsCollector.
func NewStatsCollector() *StatsCollector {
	s := &StatsCollector{origin: time.Now()}
	s.lastCompletion.Store(-1)
	s.countPromise, s.countFuture = xsync.NewPromise[int]()
	return s
}

// CountFuture returns the consuming end of the completion channel, delivering the final number
// of tasks processed. It can be called only once.
func (s *StatsCollector) CountFuture() *xsync.Future[int] {
	if !s.futureHandout.CompareAndSwap(false, true) {
		exceptions.Panicf("StatsCollector.CountFuture called more than once")
	}
	return s.countFuture
}

// now returns the monotonic offset since the creation of the collector.
func (s *StatsCollector) now() time.Duration {
	return time.Since(s.origin)
}

// recordCompletion folds one task completion into the aggregates.
// entry and completion are offsets returned by now.
func (s *StatsCollector) recordCompletion(entry, completion, deviceTime time.Duration) {
	s.totalInNode.Add(int64(completion - entry))
	s.computed.Add(int64(deviceTime))
	if previous := s.lastCompletion.Swap(int64(completion)); previous >= 0 {
		s.interCompletionSum.Add(max(int64(completion)-previous, 0))
	}
	s.tasksProcessed.Add(1)
}

// complete fulfills the completion channel with the current count of processed tasks.
func (s *StatsCollector) complete() int {
	count := int(s.tasksProcessed.Load())
	s.countPromise.Fulfill(count)
	return count
}

// Stats is a point-in-time view of a StatsCollector.
type Stats struct {
	TasksProcessed      int
	Computed            time.Duration
	TotalInNodeTime     time.Duration
	InterCompletionTime time.Duration // Mean time between consecutive completions.
}

// Snapshot reads the live counters.
//
// The mean inter-completion time is the sum of the deltas between consecutive completions
// divided by TasksProcessed-1, and 0 while TasksProcessed <= 1.
func (s *StatsCollector) Snapshot() Stats {
	processed := int(s.tasksProcessed.Load())
	stats := Stats{
		TasksProcessed:  processed,
		Computed:        time.Duration(s.computed.Load()),
		TotalInNodeTime: time.Duration(s.totalInNode.Load()),
	}
	if processed > 1 {
		stats.InterCompletionTime = time.Duration(s.interCompletionSum.Load() / int64(processed-1))
	}
	return stats
}
