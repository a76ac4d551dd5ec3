// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fpga implements the "fpga" runner: tasks are streamed through a single pipelined
// FPGA kernel, so they complete in submission order.
//
// The kernel artifact is a precompiled bitstream container (".xclbin" or ".aocx"). The device
// itself is emulated on the host (see internal/emulator).
package fpga

import (
	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/backends/offload"
	"github.com/gomlx/kernelbench/internal/emulator"
)

// BackendName to be used with backends.New to specify this runner.
const BackendName = "fpga"

// DefaultKernelPath is the bitstream used if none is given.
const DefaultKernelPath = "kernels/sources/kernels.xclbin"

// Extensions accepted for the bitstream container.
var Extensions = []string{".xclbin", ".aocx"}

// Config of the emulated FPGA: one compute unit, in-order, with a queue of 8 tasks.
func Config() emulator.Config {
	return emulator.Config{
		Name:         "FPGA",
		ComputeUnits: 1,
		QueueDepth:   8,
		Lanes:        1,
	}
}

// NewAccelerator loads the bitstream and creates the device.
func NewAccelerator(kernelPath, kernelName string) (*emulator.Device, error) {
	artifact, err := emulator.LoadBinary(kernelPath, kernelName, Extensions...)
	if err != nil {
		return nil, backends.InvalidConfigurationf(err, "FPGA accelerator")
	}
	return emulator.New(Config(), artifact.Kernel), nil
}

// New constructs the "fpga" runner.
func New(kernelPath, kernelName string) (backends.Runner, error) {
	device, err := NewAccelerator(kernelPath, kernelName)
	if err != nil {
		return nil, err
	}
	return offload.New(BackendName, device, backends.Capabilities{
		Kernels: map[string]bool{kernelName: true},
	}), nil
}
