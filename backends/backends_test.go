// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct{ name string }

func (r *fakeRunner) Name() string               { return r.name }
func (r *fakeRunner) Description() string        { return "fake " + r.name }
func (r *fakeRunner) Capabilities() Capabilities { return Capabilities{Family: FamilyCPU} }
func (r *fakeRunner) Execute(elementsPerTask, taskCount int) (ComputeResult, error) {
	if err := ValidateSizes(elementsPerTask, taskCount); err != nil {
		return ComputeResult{}, err
	}
	return ComputeResult{TasksCompleted: taskCount}, nil
}
func (r *fakeRunner) Finalize() {}

func registerFakes(t *testing.T) {
	Register("fake_ok", func(kernelPath, kernelName string) (Runner, error) {
		return &fakeRunner{name: "fake_ok"}, nil
	})
	Register("fake_broken", func(kernelPath, kernelName string) (Runner, error) {
		return nil, errors.Errorf("can't open %q", kernelPath)
	})
	Register("fake_invalid", func(kernelPath, kernelName string) (Runner, error) {
		return nil, InvalidConfigurationf(nil, "kernel %q not in artifact", kernelName)
	})
	t.Cleanup(func() {
		muRegistry.Lock()
		defer muRegistry.Unlock()
		delete(registeredConstructors, "fake_ok")
		delete(registeredConstructors, "fake_broken")
		delete(registeredConstructors, "fake_invalid")
	})
}

func TestNew(t *testing.T) {
	registerFakes(t)
	assert.True(t, IsRegistered("fake_ok"))
	assert.Subset(t, List(), []string{"fake_broken", "fake_invalid", "fake_ok"})

	runner, err := New("fake_ok", "", "vecAdd")
	require.NoError(t, err)
	assert.Equal(t, "fake_ok", runner.Name())

	runner, err = New("fake_broken", "/tmp/kernel.cl", "vecAdd")
	assert.Nil(t, runner)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.ErrorContains(t, err, `can't open "/tmp/kernel.cl"`)
	assert.ErrorContains(t, err, `device "fake_broken"`)

	runner, err = New("fake_invalid", "", "matmul")
	assert.Nil(t, runner)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.ErrorContains(t, err, `kernel "matmul" not in artifact`)
}

func TestNew_UnknownBackend(t *testing.T) {
	registerFakes(t)
	var runner Runner
	var err error
	require.NotPanics(t, func() { runner, err = New("quantum", "", "vecAdd") })
	assert.Nil(t, runner)
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.ErrorContains(t, err, "quantum")
	assert.False(t, IsRegistered("quantum"))
}

func TestDefaultDeviceName(t *testing.T) {
	t.Setenv(KERNELBENCH_DEVICE, "")
	assert.Equal(t, DefaultDevice, DefaultDeviceName())
	t.Setenv(KERNELBENCH_DEVICE, "fake_ok")
	assert.Equal(t, "fake_ok", DefaultDeviceName())

	registerFakes(t)
	runner, err := NewDefault("", "vecAdd")
	require.NoError(t, err)
	assert.Equal(t, "fake_ok", runner.Name())
}

func TestValidateSizes(t *testing.T) {
	assert.NoError(t, ValidateSizes(1, 1))
	for _, sizes := range [][2]int{{0, 1}, {1, 0}, {-1, 10}, {10, -1}} {
		err := ValidateSizes(sizes[0], sizes[1])
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "sizes %v", sizes)
	}
}

func TestFatal(t *testing.T) {
	previous := OnFatal
	defer func() { OnFatal = previous }()
	var calls []error
	OnFatal = func(err error) { calls = append(calls, err) }

	assert.NoError(t, Fatal(nil))
	invalid := errors.Wrap(ErrInvalidConfiguration, "bad N")
	assert.Equal(t, invalid, Fatal(invalid))
	assert.Empty(t, calls, "configuration errors are returned, not fatal")

	unsupported := errors.Wrapf(ErrUnsupportedKernel, "kernel %q", "matmul")
	pipelineErr := fmt.Errorf("run: %w", ErrPipelineFailure)
	assert.Equal(t, unsupported, Fatal(unsupported))
	assert.Equal(t, pipelineErr, Fatal(pipelineErr))
	assert.Equal(t, []error{unsupported, pipelineErr}, calls)

	OnFatal = nil
	assert.Equal(t, unsupported, Fatal(unsupported))
}

func TestInvalidConfigurationf(t *testing.T) {
	err := InvalidConfigurationf(errors.New("file not found"), "loading %s", "kernels.cl")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "file not found")
	assert.Contains(t, err.Error(), "loading kernels.cl")
}

func TestCapabilities_Clone(t *testing.T) {
	caps := Capabilities{Family: FamilyAccelerator, DeviceTiming: true, Kernels: map[string]bool{"vecAdd": true}}
	clone := caps.Clone()
	clone.Kernels["polynomial_op"] = true
	assert.Len(t, caps.Kernels, 1)
	assert.Equal(t, "accelerator", caps.Family.String())
	assert.Equal(t, "cpu", FamilyCPU.String())
}

func TestComputeResult_String(t *testing.T) {
	res := ComputeResult{Elapsed: 2 * time.Second, TasksCompleted: 10, Computed: time.Second}
	assert.Contains(t, res.String(), "tasks=10")
}
