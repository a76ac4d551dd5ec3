// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// ErrInvalidConfiguration is matched (errors.Is) by errors about malformed or missing parameters,
	// detected before any work starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedKernel is matched by errors about a kernel name not in the supported set.
	// It is fatal, see OnFatal.
	ErrUnsupportedKernel = errors.New("unsupported kernel")

	// ErrUnknownBackend is matched by the error returned by New for device names not registered
	// on this platform.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrPipelineFailure is matched by errors reported by an accelerator pipeline while running.
	// It is fatal, see OnFatal.
	ErrPipelineFailure = errors.New("pipeline failure")
)

// InvalidConfigurationf returns an error that matches ErrInvalidConfiguration and keeps cause
// (if not nil) in its message.
func InvalidConfigurationf(cause error, format string, args ...any) error {
	err := errors.Wrapf(ErrInvalidConfiguration, format, args...)
	if cause != nil {
		err = errors.WithMessagef(err, "%v", cause)
	}
	return err
}

// ValidateSizes checks the arguments of Runner.Execute.
func ValidateSizes(elementsPerTask, taskCount int) error {
	if elementsPerTask <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "elements per task must be > 0, got %d", elementsPerTask)
	}
	if taskCount <= 0 {
		return errors.Wrapf(ErrInvalidConfiguration, "task count must be > 0, got %d", taskCount)
	}
	return nil
}

// IsFatal returns whether err is one of the errors that end a benchmark run by default:
// ErrUnsupportedKernel or ErrPipelineFailure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnsupportedKernel) || errors.Is(err, ErrPipelineFailure)
}

// OnFatal is called by Fatal with fatal errors.
//
// The default logs the error and terminates the process, since a benchmark can't report
// partial results. Reassign it (or set it to nil) to have runners simply return fatal errors
// to the caller.
var OnFatal = func(err error) {
	klog.Fatalf("Fatal error: %+v", err)
}

// Fatal applies the fail-fast policy to err: if IsFatal(err) and OnFatal is set, it calls OnFatal.
// It returns err, for the cases where OnFatal returns.
func Fatal(err error) error {
	if err != nil && IsFatal(err) && OnFatal != nil {
		OnFatal(err)
	}
	return err
}
