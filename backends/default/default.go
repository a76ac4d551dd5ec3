// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package _default includes all the runners available on the platform.
//
// To use it simply include:
//
//	import _ "github.com/gomlx/kernelbench/backends/default"
//
// Each package only registers the devices of its platform family: "cpu_pool" everywhere,
// "cpu_static" and "fpga" outside of macOS, "gpu_opencl" and "gpu_metal" on macOS.
package _default

import (
	_ "github.com/gomlx/kernelbench/backends/cpu"
	_ "github.com/gomlx/kernelbench/backends/fpga"
	_ "github.com/gomlx/kernelbench/backends/metal"
	_ "github.com/gomlx/kernelbench/backends/opencl"
)
