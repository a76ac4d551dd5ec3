// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil contains utilities for locating kernel artifacts on the file system.
package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileExists returns whether path exists and is a regular file, or an error if something went
// wrong in the filesystem.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat %q", path)
	}
	return info.Mode().IsRegular(), nil
}

// ExpandHome replaces a leading "~" or "~user" by the corresponding home directory.
// Other paths are returned unchanged.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	userName, rest, _ := strings.Cut(path[1:], "/")
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for %q", path)
	}
	return filepath.Join(usr.HomeDir, rest), nil
}

// ReadArtifact reads the whole file at path, after ExpandHome. Missing files and
// non-regular files (e.g. directories) are reported with distinct messages.
func ReadArtifact(path string) ([]byte, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	exists, err := FileExists(expanded)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, statErr := os.Stat(expanded); statErr == nil {
			return nil, errors.Errorf("%q is not a regular file", path)
		}
		return nil, errors.Errorf("file %q not found", path)
	}
	content, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", path)
	}
	return content, nil
}
