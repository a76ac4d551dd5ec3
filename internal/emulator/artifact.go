// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package emulator

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gomlx/kernelbench/pkg/kernels"
	"github.com/gomlx/kernelbench/pkg/support/fsutil"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Artifact is a kernel program loaded from disk.
type Artifact struct {
	Path       string
	EntryPoint string
	Kernel     kernels.Kernel
	Size       int
}

// LoadSource reads the kernel source file at path and checks that it declares the function
// entryPoint, using declaration: a regular expression format where "%s" is replaced by the quoted
// entry point name (e.g. `__kernel\s+void\s+%s\s*\(` for OpenCL C).
//
// The entry point must also be one of the kernels the emulator can execute.
func LoadSource(path, entryPoint, declaration string) (*Artifact, error) {
	artifact, content, err := load(path, entryPoint)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(strings.ReplaceAll(declaration, "%s", regexp.QuoteMeta(entryPoint)))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid declaration pattern %q", declaration)
	}
	if !re.Match(content) {
		return nil, errors.Errorf("kernel source %q doesn't declare the entry point %q", path, entryPoint)
	}
	klog.V(1).Infof("loaded kernel source %q (%d bytes), entry point %q", path, artifact.Size, entryPoint)
	return artifact, nil
}

// LoadBinary reads a precompiled kernel container at path, whose extension must be one of
// extensions (e.g. ".xclbin"). The content is opaque: it only has to be non-empty.
func LoadBinary(path, entryPoint string, extensions ...string) (*Artifact, error) {
	if ext := strings.ToLower(filepath.Ext(path)); len(extensions) > 0 && !slices.Contains(extensions, ext) {
		return nil, errors.Errorf("kernel binary %q has extension %q, expected one of %q", path, ext, extensions)
	}
	artifact, _, err := load(path, entryPoint)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("loaded kernel binary %q (%d bytes), entry point %q", path, artifact.Size, entryPoint)
	return artifact, nil
}

func load(path, entryPoint string) (*Artifact, []byte, error) {
	if path == "" {
		return nil, nil, errors.New("missing kernel path")
	}
	if entryPoint == "" {
		return nil, nil, errors.New("missing kernel name")
	}
	kernel, err := kernels.Parse(entryPoint)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "no device implementation for kernel")
	}
	content, err := fsutil.ReadArtifact(path)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "failed to read kernel")
	}
	if len(content) == 0 {
		return nil, nil, errors.Errorf("kernel file %q is empty", path)
	}
	return &Artifact{Path: path, EntryPoint: entryPoint, Kernel: kernel, Size: len(content)}, content, nil
}
