// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

// Family of execution strategies.
type Family int

const (
	// FamilyCPU runners execute each task as a host parallel loop, one task at a time.
	FamilyCPU Family = iota

	// FamilyAccelerator runners offload tasks to a device queue, possibly overlapping them.
	FamilyAccelerator
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case FamilyCPU:
		return "cpu"
	case FamilyAccelerator:
		return "accelerator"
	default:
		return "unknown"
	}
}

// Capabilities holds what is measured and supported by a runner.
type Capabilities struct {
	Family Family

	// DeviceTiming is true if ComputeResult.Computed, TotalInNodeTime and InterCompletionTime are
	// filled in by the runner.
	DeviceTiming bool

	// OverlappingTasks is true if tasks may execute concurrently, and hence complete out of order.
	OverlappingTasks bool

	// Kernels supported by the runner, by name.
	// If not listed, it's assumed to be false, hence not supported.
	Kernels map[string]bool
}

// Clone makes a deep copy of the Capabilities.
func (c Capabilities) Clone() Capabilities {
	c2 := c
	c2.Kernels = make(map[string]bool, len(c.Kernels))
	for name, supported := range c.Kernels {
		c2.Kernels[name] = supported
	}
	return c2
}
