// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package opencl implements the "gpu_opencl" runner: tasks are offloaded to an OpenCL-style GPU
// command queue with out-of-order execution.
//
// The kernel artifact is an OpenCL C source file that must declare the entry point as
// `__kernel void <name>(...)`. The device itself is emulated on the host (see internal/emulator).
package opencl

import (
	"runtime"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/backends/offload"
	"github.com/gomlx/kernelbench/internal/emulator"
)

// BackendName to be used with backends.New to specify this runner.
const BackendName = "gpu_opencl"

// DefaultKernelPath is the OpenCL C source used if none is given.
const DefaultKernelPath = "kernels/sources/kernels.cl"

const declaration = `__kernel\s+void\s+%s\s*\(`

// Config of the emulated GPU: one compute unit per 4 host cores (at least 2), each running its
// work-items on 4 lanes, and a queue of up to 4 commands per compute unit.
func Config() emulator.Config {
	computeUnits := max(runtime.GOMAXPROCS(0)/4, 2)
	return emulator.Config{
		Name:         "GPU OpenCL",
		ComputeUnits: computeUnits,
		QueueDepth:   4 * computeUnits,
		Lanes:        4,
	}
}

// NewAccelerator loads the kernel source and creates the device.
func NewAccelerator(kernelPath, kernelName string) (*emulator.Device, error) {
	artifact, err := emulator.LoadSource(kernelPath, kernelName, declaration)
	if err != nil {
		return nil, backends.InvalidConfigurationf(err, "GPU OpenCL accelerator")
	}
	return emulator.New(Config(), artifact.Kernel), nil
}

// New constructs the "gpu_opencl" runner.
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
