//go:build darwin

// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package opencl

import "github.com/gomlx/kernelbench/backends"

func init() {
	backends.Register(BackendName, New)
}
