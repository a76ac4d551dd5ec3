// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fpga

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBitstream(t *testing.T, name string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("xclbin2\x00opaque"), 0o644))
	return path
}

func TestNew(t *testing.T) {
	runner, err := New(writeBitstream(t, "kernels.xclbin"), "heavy_compute_kernel")
	require.NoError(t, err)
	defer runner.Finalize()
	assert.Equal(t, BackendName, runner.Name())
	assert.False(t, runner.Capabilities().OverlappingTasks)

	var mu sync.Mutex
	var order []int
	runner.(backends.TaskObserver).OnTaskDone(func(taskID int) {
		mu.Lock()
		order = append(order, taskID)
		mu.Unlock()
	})
	res, err := runner.Execute(100, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, res.TasksCompleted)
	for ii, id := range order {
		assert.Equal(t, ii+1, id, "FPGA tasks complete in submission order")
	}
}

func TestNew_Errors(t *testing.T) {
	runner, err := New(writeBitstream(t, "kernels.aocx"), "vecAdd")
	require.NoError(t, err)
	runner.Finalize()

	runner, err = New(writeBitstream(t, "kernels.bin"), "vecAdd")
	assert.Nil(t, runner)
	assert.ErrorIs(t, err, backends.ErrInvalidConfiguration)
	assert.ErrorContains(t, err, "extension")

	empty := filepath.Join(t.TempDir(), "empty.xclbin")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = New(empty, "vecAdd")
	assert.ErrorIs(t, err, backends.ErrInvalidConfiguration)
	assert.ErrorContains(t, err, "empty")
}

func TestNewAccelerator(t *testing.T) {
	path := writeBitstream(t, "kernels.aocx")
	for kernelName, want := range map[string]kernels.Kernel{
		"vecAdd":               kernels.VectorAdd,
		"polynomial_op":        kernels.Polynomial,
		"heavy_compute_kernel": kernels.HeavyCompute,
	} {
		device, err := NewAccelerator(path, kernelName)
		require.NoError(t, err)
		assert.Equal(t, want, device.Kernel())
		assert.Equal(t, 1, device.Config().ComputeUnits)
		device.Finalize()
	}
}
