// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var constructors = map[string]backends.Constructor{
	PoolName:   NewPool,
	StaticName: NewStatic,
}

func expectedOutput(kernel kernels.Kernel, n int) []int32 {
	a, b, c := make([]int32, n), make([]int32, n), make([]int32, n)
	kernels.InitInputs(a, b)
	for i := range n {
		kernel.Apply(a, b, c, i)
	}
	return c
}

func TestExecute(t *testing.T) {
	for name, constructor := range constructors {
		for _, kernelName := range kernels.Names() {
			kernel, err := kernels.Parse(kernelName)
			require.NoError(t, err)
			for _, n := range []int{1, 4, 1000} {
				runner, err := constructor("", kernelName)
				require.NoError(t, err)
				assert.Equal(t, name, runner.Name())

				var reported []int
				runner.(backends.TaskObserver).OnTaskDone(func(taskID int) { reported = append(reported, taskID) })
				res, err := runner.Execute(n, 3)
				require.NoError(t, err)
				assert.Equal(t, 3, res.TasksCompleted)
				assert.GreaterOrEqual(t, res.Elapsed, time.Duration(0))
				assert.Zero(t, res.Computed)
				assert.Zero(t, res.TotalInNodeTime)
				assert.Zero(t, res.InterCompletionTime)
				assert.Equal(t, []int{1, 2, 3}, reported, "CPU tasks complete in order")
				assert.Equalf(t, expectedOutput(kernel, n), runner.(*Runner).Output(), "%s with kernel %s, n=%d", name, kernelName, n)
				runner.Finalize()
			}
		}
	}
}

func TestExecute_CrossRunnerEquivalence(t *testing.T) {
	const n = 4097
	for _, kernelName := range kernels.Names() {
		var outputs [][]int32
		for _, constructor := range []backends.Constructor{NewPool, NewStatic} {
			runner, err := constructor("", kernelName)
			require.NoError(t, err)
			_, err = runner.Execute(n, 2)
			require.NoError(t, err)
			outputs = append(outputs, runner.(*Runner).Output())
		}
		assert.Equal(t, outputs[0], outputs[1], "kernel %s", kernelName)
	}
}

func TestExecute_VectorAddScenario(t *testing.T) {
	runner, err := NewStatic("", kernels.VectorAddName)
	require.NoError(t, err)
	res, err := runner.Execute(4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TasksCompleted)
	assert.Equal(t, []int32{0, 3, 6, 9}, runner.(*Runner).Output())
}

func TestExecute_PolynomialSingleElement(t *testing.T) {
	runner, err := NewPool("", kernels.PolynomialName)
	require.NoError(t, err)
	res, err := runner.Execute(1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.TasksCompleted)
	assert.Equal(t, []int32{0}, runner.(*Runner).Output())
}

func TestExecute_InvalidConfiguration(t *testing.T) {
	var calls atomic.Int32
	runner := New("test", "Test", kernels.VectorAddName, func(start, end int, body func(int)) {
		calls.Add(1)
	})
	for _, sizes := range [][2]int{{4, 0}, {0, 4}, {-1, 1}, {1, -1}} {
		res, err := runner.Execute(sizes[0], sizes[1])
		require.Error(t, err)
		assert.True(t, errors.Is(err, backends.ErrInvalidConfiguration))
		assert.Equal(t, backends.ComputeResult{}, res)
	}
	assert.Nil(t, runner.Output(), "no buffers should be allocated")
	assert.Zero(t, calls.Load())
}

func TestExecute_UnsupportedKernel(t *testing.T) {
	var fatalErr error
	previous := backends.OnFatal
	backends.OnFatal = func(err error) { fatalErr = err }
	defer func() { backends.OnFatal = previous }()

	runner, err := NewPool("", "fft")
	require.NoError(t, err, "kernels are only validated on Execute")
	_, err = runner.Execute(4, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, backends.ErrUnsupportedKernel))
	assert.Equal(t, err, fatalErr, "unsupported kernels go through the fail-fast policy")
	assert.Nil(t, runner.(*Runner).Output())
}

func TestCapabilities(t *testing.T) {
	first, err := NewPool("", kernels.VectorAddName)
	require.NoError(t, err)
	second, err := NewStatic("", kernels.VectorAddName)
	require.NoError(t, err)

	caps := first.Capabilities()
	assert.Equal(t, backends.FamilyCPU, caps.Family)
	assert.False(t, caps.DeviceTiming)
	for _, name := range kernels.Names() {
		assert.Truef(t, caps.Kernels[name], "kernel %q", name)
	}

	// Changes to the returned value are not shared with other runners.
	caps.Kernels[kernels.VectorAddName] = false
	caps.Kernels["fft"] = true
	assert.True(t, second.Capabilities().Kernels[kernels.VectorAddName])
	assert.False(t, first.Capabilities().Kernels["fft"])
	assert.True(t, Capabilities.Kernels[kernels.VectorAddName])
}

func TestStaticParallelRange(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 64, runtime.GOMAXPROCS(0)} {
		for _, size := range []int{1, 2, 63, 64, 65, 1000} {
			hits := make([]atomic.Int32, size+5)
			StaticParallelRange(workers)(5, size+5, func(i int) { hits[i].Add(1) })
			for i := range hits {
				want := int32(1)
				if i < 5 {
					want = 0
				}
				require.Equalf(t, want, hits[i].Load(), "workers=%d, size=%d, index=%d", workers, size, i)
			}
		}
	}
}
