// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"sync"

	"github.com/pkg/errors"
)

// DynamicWaitGroup counts outstanding work like sync.WaitGroup, but new work may be added while
// another goroutine is blocked in Wait.
//
// The accelerator node uses it to track submissions accepted by a device whose completion
// callback has not run yet.
type DynamicWaitGroup struct {
	mu      sync.Mutex
	drained *sync.Cond
	pending int
}

// NewDynamicWaitGroup creates a DynamicWaitGroup with a zero count.
func NewDynamicWaitGroup() *DynamicWaitGroup {
	wg := &DynamicWaitGroup{}
	wg.drained = sync.NewCond(&wg.mu)
	return wg
}

// Add delta to the count. It panics if the count becomes negative.
func (wg *DynamicWaitGroup) Add(delta int) {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	wg.pending += delta
	switch {
	case wg.pending < 0:
		panic(errors.Errorf("DynamicWaitGroup: count went negative (%d)", wg.pending))
	case wg.pending == 0:
		wg.drained.Broadcast()
	}
}

// Done is Add(-1).
func (wg *DynamicWaitGroup) Done() {
	wg.Add(-1)
}

// Count returns the current count.
func (wg *DynamicWaitGroup) Count() int {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return wg.pending
}

// Wait blocks until the count is zero.
func (wg *DynamicWaitGroup) Wait() {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	for wg.pending > 0 {
		wg.drained.Wait()
	}
}
