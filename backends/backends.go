// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface an execution strategy ("device runner") needs to implement
// to be measured by kernelbench, and the registry mapping device names to their constructors.
//
// There are two families of runners: CPU runners (package backends/cpu) that run each task as a
// parallel loop on the host, and accelerator runners (package backends/offload) that feed tasks
// through a two-stage pipeline into a device queue.
//
// Runners register themselves during package initialization, conditioned on the platform, so
// usually one simply imports them all with:
//
//	import _ "github.com/gomlx/kernelbench/backends/default"
package backends

import (
	"os"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Runner is the API that needs to be implemented by an execution strategy.
type Runner interface {
	// Name returns the short name of the runner. E.g.: "cpu_pool".
	Name() string

	// Description is a longer description of the Runner that can be used to pretty-print.
	Description() string

	// Capabilities returns what the Runner measures.
	Capabilities() Capabilities

	// Execute runs taskCount tasks of elementsPerTask elements each and returns the collected metrics.
	//
	// Both arguments must be > 0, otherwise an error matching ErrInvalidConfiguration is returned
	// before any buffer is allocated or any timing starts.
	// Errors matching ErrUnsupportedKernel or ErrPipelineFailure are fatal, see OnFatal.
	Execute(elementsPerTask, taskCount int) (ComputeResult, error)

	// Finalize releases all the associated resources immediately, and makes the runner invalid.
	Finalize()
}

// TaskObserver is implemented by runners that can report progress.
//
// The function set with OnTaskDone is called once per completed task, with the task sequence
// number (starting at 1). It may be called from any goroutine, and should be fast.
type TaskObserver interface {
	OnTaskDone(fn func(taskID int))
}

// Constructor takes the kernel artifact path (ignored by CPU runners) and the kernel name, and
// returns a Runner.
type Constructor func(kernelPath, kernelName string) (Runner, error)

var (
	muRegistry             sync.Mutex
	registeredConstructors = make(map[string]Constructor)
)

// Register runner with the given device name.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := registeredConstructors[name]; found {
		klog.Warningf("backends.Register(%q): replacing previously registered runner", name)
	}
	registeredConstructors[name] = constructor
}

// List returns the sorted names of the runners registered on this platform.
func List() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered returns whether a runner named name is available on this platform.
func IsRegistered(name string) bool {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	_, found := registeredConstructors[name]
	return found
}

// DefaultDevice is the name of the default device to use, if KERNELBENCH_DEVICE is not set.
var DefaultDevice = "cpu_pool"

// KERNELBENCH_DEVICE is the environment variable with the default device to use.
const KERNELBENCH_DEVICE = "KERNELBENCH_DEVICE"

// DefaultDeviceName returns the device name used by NewDefault:
//
// 1. The environment KERNELBENCH_DEVICE if defined and not empty.
// 2. DefaultDevice otherwise.
func DefaultDeviceName() string {
	if device, found := os.LookupEnv(KERNELBENCH_DEVICE); found && device != "" {
		return device
	}
	return DefaultDevice
}

// NewDefault returns a new Runner for DefaultDeviceName.
func NewDefault(kernelPath, kernelName string) (Runner, error) {
	return New(DefaultDeviceName(), kernelPath, kernelName)
}

// New creates the Runner registered under device.
//
// If device is not registered on this platform, it returns a nil Runner and an error matching
// ErrUnknownBackend; it never panics. Failures constructing the runner (e.g. a kernel artifact
// that can't be loaded) are returned matching ErrInvalidConfiguration.
func New(device, kernelPath, kernelName string) (Runner, error) {
	muRegistry.Lock()
	constructor, found := registeredConstructors[device]
	muRegistry.Unlock()
	if !found {
		return nil, errors.Wrapf(ErrUnknownBackend, "device %q is not available on this platform (available: %q)",
			device, List())
	}
	runner, err := constructor(kernelPath, kernelName)
	if err != nil {
		if !errors.Is(err, ErrInvalidConfiguration) {
			err = InvalidConfigurationf(err, "failed to create runner for device %q", device)
		}
		return nil, err
	}
	klog.V(1).Infof("created runner %s (%s)", runner.Name(), runner.Description())
	return runner, nil
}
