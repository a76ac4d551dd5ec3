// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// kernelbench measures the throughput and latency of a fixed numeric kernel executed repeatedly
// on one of the devices available on this platform.
//
// Usage:
//
//	kernelbench -device=cpu_pool -n=1000000 -tasks=20 -kernel_name=polynomial_op
//
// Accelerator devices also take a -kernel_path to the kernel source or bitstream; if empty a
// per-device default under kernels/sources/ is used.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/kernelbench/backends"
	_ "github.com/gomlx/kernelbench/backends/default"
	"github.com/gomlx/kernelbench/backends/fpga"
	"github.com/gomlx/kernelbench/backends/metal"
	"github.com/gomlx/kernelbench/backends/opencl"
	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/gomlx/kernelbench/pkg/perf"
	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagN      = flag.Int("n", 1_000_000, "Number of elements per task.")
	flagTasks  = flag.Int("tasks", 20, "Number of tasks to execute.")
	flagDevice = flag.String("device", "", fmt.Sprintf(
		"Device to run on, one of %q. If empty, it uses $%s, or %q if that is not set.",
		backends.List(), backends.KERNELBENCH_DEVICE, backends.DefaultDevice))
	flagKernelPath = flag.String("kernel_path", "",
		"Path to the kernel source (GPU) or bitstream (FPGA). If empty a per-device default is used. Ignored by CPU devices.")
	flagKernelName = flag.String("kernel_name", "", fmt.Sprintf(
		"Kernel to execute, one of %q. Defaults to %q.", kernels.Names(), kernels.VectorAddName))
	flagProgress   = flag.Bool("progress", true, "Display a progress bar while tasks complete.")
	flagPrometheus = flag.Bool("prometheus", false, "Print the results in Prometheus text exposition format at the end.")
)

// defaultKernelPaths per accelerator device.
var defaultKernelPaths = map[string]string{
	opencl.BackendName: opencl.DefaultKernelPath,
	metal.BackendName:  metal.DefaultKernelPath,
	fpga.BackendName:   fpga.DefaultKernelPath,
}

// Config of one benchmark run, after defaults are applied.
type Config struct {
	RunID                  string
	N, Tasks               int
	Device                 string
	KernelPath, KernelName string
}

func usage() {
	out := flag.CommandLine.Output()
	_, _ = fmt.Fprintf(out, "Usage: %s [flags]\n\nDevices available on this platform: %s\n\nFlags:\n",
		os.Args[0], strings.Join(backends.List(), ", "))
	flag.PrintDefaults()
}

// parseConfig applies the defaults and validates the flags.
func parseConfig() (*Config, error) {
	config := &Config{
		RunID:      uuid.NewString(),
		N:          *flagN,
		Tasks:      *flagTasks,
		Device:     *flagDevice,
		KernelPath: *flagKernelPath,
		KernelName: *flagKernelName,
	}
	if config.N <= 0 {
		return nil, backends.InvalidConfigurationf(nil, "-n must be > 0, got %d", config.N)
	}
	if config.Tasks <= 0 {
		return nil, backends.InvalidConfigurationf(nil, "-tasks must be > 0, got %d", config.Tasks)
	}
	if config.Device == "" {
		config.Device = backends.DefaultDeviceName()
	}
	if config.KernelName == "" {
		config.KernelName = kernels.VectorAddName
	}
	if config.KernelPath == "" {
		config.KernelPath = defaultKernelPaths[config.Device]
	}
	return config, nil
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q. See 'kernelbench -help'.", flag.Args())
		os.Exit(1)
	}

	config, err := parseConfig()
	if err != nil {
		klog.Errorf("%v", err)
		usage()
		os.Exit(1)
	}
	configureTerminal()
	printConfiguration(config)

	runner, err := backends.New(config.Device, config.KernelPath, config.KernelName)
	if err != nil {
		klog.Errorf("%v", err)
		if errors.Is(err, backends.ErrUnknownBackend) {
			usage()
		}
		os.Exit(1)
	}
	defer runner.Finalize()

	bar := newProgressBar(config.Tasks, *flagProgress)
	if observer, ok := runner.(backends.TaskObserver); ok && bar != nil {
		observer.OnTaskDone(bar.onTaskDone)
	}
	klog.V(1).Infof("run %s: %d tasks of %d elements on %s", config.RunID, config.Tasks, config.N, runner.Name())
	res := must.M1(runner.Execute(config.N, config.Tasks))
	bar.finish()

	metrics := perf.Calculate(res, config.N)
	printMetrics(config, runner.Capabilities(), res, metrics)
	if *flagPrometheus {
		printPrometheus(config, runner.Capabilities(), res, metrics)
	}
}
