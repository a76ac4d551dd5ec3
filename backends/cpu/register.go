// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import "github.com/gomlx/kernelbench/backends"

// Registers NewPool as the constructor for "cpu_pool", available on every platform.
func init() {
	backends.Register(PoolName, NewPool)
}
