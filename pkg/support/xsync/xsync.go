// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xsync implements the synchronization tools used by the pipeline and the emulated
// devices: one-shot signals (Latch, LatchWithValue, Promise/Future), a counting Semaphore and a
// DynamicWaitGroup.
package xsync

import "sync"

// Latch is a one-shot signal: once triggered it stays triggered.
type Latch struct {
	mu        sync.Mutex
	triggered chan struct{}
}

// NewLatch returns an un-triggered Latch.
func NewLatch() *Latch {
	return &Latch{triggered: make(chan struct{})}
}

// Trigger the latch. It returns false if it was already triggered.
func (l *Latch) Trigger() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockedTrigger()
}

func (l *Latch) lockedTrigger() bool {
	if l.Test() {
		return false
	}
	close(l.triggered)
	return true
}

// Wait blocks until the latch is triggered.
func (l *Latch) Wait() {
	<-l.triggered
}

// Test returns whether the latch was triggered, without blocking.
func (l *Latch) Test() bool {
	select {
	case <-l.triggered:
		return true
	default:
		return false
	}
}

// WaitChan returns a channel closed when the latch is triggered, to be used in a select.
func (l *Latch) WaitChan() <-chan struct{} {
	return l.triggered
}

// LatchWithValue is a Latch that carries the value given when it was triggered.
type LatchWithValue[T any] struct {
	latch *Latch
	value T
}

// NewLatchWithValue returns an un-triggered LatchWithValue.
func NewLatchWithValue[T any]() *LatchWithValue[T] {
	return &LatchWithValue[T]{latch: NewLatch()}
}

// Trigger the latch with value. It returns false, discarding value, if it was already triggered.
func (l *LatchWithValue[T]) Trigger(value T) bool {
	l.latch.mu.Lock()
	defer l.latch.mu.Unlock()
	if l.latch.Test() {
		return false
	}
	l.value = value
	return l.latch.lockedTrigger()
}

// Wait blocks until the latch is triggered and returns its value.
func (l *LatchWithValue[T]) Wait() T {
	l.latch.Wait()
	return l.value
}

// Test returns whether the latch was triggered, without blocking.
func (l *LatchWithValue[T]) Test() bool {
	return l.latch.Test()
}

// WaitChan returns a channel closed when the latch is triggered.
func (l *LatchWithValue[T]) WaitChan() <-chan struct{} {
	return l.latch.WaitChan()
}

// Semaphore limits the number of simultaneous acquisitions, e.g. the outstanding submissions to
// a device queue. Waiters are woken one at a time, in no particular order.
type Semaphore struct {
	mu       sync.Mutex
	released *sync.Cond
	capacity int
	inUse    int
}

// NewSemaphore returns a Semaphore that allows at most capacity simultaneous acquisitions.
// If capacity <= 0 there is no limit.
func NewSemaphore(capacity int) *Semaphore {
	s := &Semaphore{capacity: capacity}
	s.released = sync.NewCond(&s.mu)
	return s
}

// Acquire blocks until a slot is free and takes it.
// It must be matched by exactly one call to Release.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.capacity > 0 && s.inUse >= s.capacity {
		s.released.Wait()
	}
	s.inUse++
}

// Release a slot taken with Acquire.
func (s *Semaphore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse--
	if s.capacity > 0 {
		s.released.Signal()
	}
}

// InUse returns the number of acquisitions not yet released.
func (s *Semaphore) InUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inUse
}

// Capacity returns the limit of simultaneous acquisitions, <= 0 meaning unlimited.
func (s *Semaphore) Capacity() int {
	return s.capacity
}
