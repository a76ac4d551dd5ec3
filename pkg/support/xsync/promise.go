// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"sync/atomic"

	"github.com/gomlx/exceptions"
)

// Promise is the producing end of a one-shot completion channel: it delivers a single value to
// the matching Future.
//
// Fulfilling a Promise twice is a programming error and panics.
type Promise[T any] struct {
	latch     *LatchWithValue[T]
	fulfilled atomic.Bool
}

// Future is the consuming end of a one-shot completion channel created by NewPromise.
//
// Get blocks until the value is available and may be called only once.
type Future[T any] struct {
	latch    *LatchWithValue[T]
	consumed atomic.Bool
}

// NewPromise returns a connected Promise/Future pair.
// The Promise should be handed to exactly one producer and the Future to exactly one consumer.
func NewPromise[T any]() (*Promise[T], *Future[T]) {
	latch := NewLatchWithValue[T]()
	return &Promise[T]{latch: latch}, &Future[T]{latch: latch}
}

// Fulfill delivers value to the Future. It panics if called more than once.
func (p *Promise[T]) Fulfill(value T) {
	if !p.fulfilled.CompareAndSwap(false, true) {
		exceptions.Panicf("xsync.Promise fulfilled more than once")
	}
	p.latch.Trigger(value)
}

// IsFulfilled reports whether Fulfill was already called.
func (p *Promise[T]) IsFulfilled() bool {
	return p.fulfilled.Load()
}

// Get waits for the Promise to be fulfilled and returns its value.
// It panics if called more than once.
func (f *Future[T]) Get() T {
	if !f.consumed.CompareAndSwap(false, true) {
		exceptions.Panicf("xsync.Future.Get called more than once")
	}
	return f.latch.Wait()
}

// Ready reports, without consuming the Future, whether the value is available.
func (f *Future[T]) Ready() bool {
	return f.latch.Test()
}

// WaitChan returns a channel closed once the value is available. Reading the value still requires Get.
func (f *Future[T]) WaitChan() <-chan struct{} {
	return f.latch.WaitChan()
}
