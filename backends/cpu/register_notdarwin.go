//go:build !darwin

// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import "github.com/gomlx/kernelbench/backends"

// The statically scheduled runner shares the platform family of the FPGA backend.
func init() {
	backends.Register(StaticName, NewStatic)
}
