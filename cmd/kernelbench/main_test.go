// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/backends/cpu"
	"github.com/gomlx/kernelbench/backends/fpga"
	"github.com/gomlx/kernelbench/backends/metal"
	"github.com/gomlx/kernelbench/backends/opencl"
	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/gomlx/kernelbench/pkg/perf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlags(t *testing.T, n, tasks int, device, kernelPath, kernelName string) {
	previous := []any{*flagN, *flagTasks, *flagDevice, *flagKernelPath, *flagKernelName}
	t.Cleanup(func() {
		*flagN, *flagTasks = previous[0].(int), previous[1].(int)
		*flagDevice, *flagKernelPath, *flagKernelName = previous[2].(string), previous[3].(string), previous[4].(string)
	})
	*flagN, *flagTasks, *flagDevice, *flagKernelPath, *flagKernelName = n, tasks, device, kernelPath, kernelName
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Setenv(backends.KERNELBENCH_DEVICE, "")
	setFlags(t, 10, 2, "", "", "")
	config, err := parseConfig()
	require.NoError(t, err)
	assert.Equal(t, backends.DefaultDevice, config.Device)
	assert.Equal(t, kernels.VectorAddName, config.KernelName)
	assert.Empty(t, config.KernelPath, "CPU devices take no kernel artifact")
	assert.NotEmpty(t, config.RunID)

	for device, path := range map[string]string{
		opencl.BackendName: "kernels/sources/kernels.cl",
		metal.BackendName:  "kernels/sources/kernels.metal",
		fpga.BackendName:   "kernels/sources/kernels.xclbin",
	} {
		setFlags(t, 10, 2, device, "", "heavy_compute_kernel")
		config, err = parseConfig()
		require.NoError(t, err)
		assert.Equal(t, path, config.KernelPath)
		assert.Equal(t, "heavy_compute_kernel", config.KernelName)
	}

	t.Setenv(backends.KERNELBENCH_DEVICE, fpga.BackendName)
	setFlags(t, 10, 2, "", "/opt/bench.aocx", "")
	config, err = parseConfig()
	require.NoError(t, err)
	assert.Equal(t, fpga.BackendName, config.Device)
	assert.Equal(t, "/opt/bench.aocx", config.KernelPath)
}

func TestParseConfig_Invalid(t *testing.T) {
	for _, sizes := range [][2]int{{0, 20}, {100, 0}, {-1, -1}} {
		setFlags(t, sizes[0], sizes[1], cpu.PoolName, "", "")
		_, err := parseConfig()
		assert.ErrorIs(t, err, backends.ErrInvalidConfiguration)
	}
}

func TestRunEndToEnd(t *testing.T) {
	setFlags(t, 4, 2, cpu.PoolName, "", kernels.VectorAddName)
	config, err := parseConfig()
	require.NoError(t, err)
	runner, err := backends.New(config.Device, config.KernelPath, config.KernelName)
	require.NoError(t, err)
	defer runner.Finalize()
	res, err := runner.Execute(config.N, config.Tasks)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 3, 6, 9}, runner.(*cpu.Runner).Output())

	metrics := perf.Calculate(res, config.N)
	assert.NotPanics(t, func() {
		printConfiguration(config)
		printMetrics(config, runner.Capabilities(), res, metrics)
		printPrometheus(config, runner.Capabilities(), res, metrics)
	})
}

func TestProgressBar_Disabled(t *testing.T) {
	bar := newProgressBar(10, false)
	assert.Nil(t, bar)
	assert.NotPanics(t, bar.finish)
}
