// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package metal implements the "gpu_metal" runner: tasks are encoded as command buffers on a
// Metal-style GPU command queue.
//
// The kernel artifact is a Metal Shading Language source file that must declare the entry point
// as `kernel void <name>(...)`. The device itself is emulated on the host (see internal/emulator).
package metal

import (
	"runtime"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/backends/offload"
	"github.com/gomlx/kernelbench/internal/emulator"
)

// BackendName to be used with backends.New to specify this runner.
const BackendName = "gpu_metal"

// DefaultKernelPath is the Metal source used if none is given.
const DefaultKernelPath = "kernels/sources/kernels.metal"

// `kernel` must not be the tail of OpenCL's `__kernel`.
const declaration = `(^|[^_\w])kernel\s+void\s+%s\s*\(`

// MaxCommandBuffersInFlight is the number of command buffers that may be outstanding at once.
const MaxCommandBuffersInFlight = 3

// Config of the emulated GPU: command buffers execute concurrently up to
// MaxCommandBuffersInFlight, each spreading its threads over half of the host cores.
func Config() emulator.Config {
	return emulator.Config{
		Name:         "GPU Metal",
		ComputeUnits: MaxCommandBuffersInFlight,
		QueueDepth:   MaxCommandBuffersInFlight,
		Lanes:        max(runtime.GOMAXPROCS(0)/2, 1),
	}
}

// NewAccelerator loads the kernel source and creates the device.
func NewAccelerator(kernelPath, kernelName string) (*emulator.Device, error) {
	artifact, err := emulator.LoadSource(kernelPath, kernelName, declaration)
	if err != nil {
		return nil, backends.InvalidConfigurationf(err, "GPU Metal accelerator")
	}
	return emulator.New(Config(), artifact.Kernel), nil
}

// New constructs the "gpu_metal" runner.
func New(kernelPath, kernelName string) (backends.Runner, error) {
	device, err := NewAccelerator(kernelPath, kernelName)
	if err != nil {
		return nil, err
	}
	return offload.New(BackendName, device, backends.Capabilities{
		OverlappingTasks: true,
		Kernels:          map[string]bool{kernelName: true},
	}), nil
}
