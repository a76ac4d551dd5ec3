// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// progressBar reports completed tasks. A nil *progressBar is valid and does nothing.
type progressBar struct {
	bar *progressbar.ProgressBar
}

// newProgressBar returns nil if disabled or if stderr is not a terminal.
func newProgressBar(numTasks int, enabled bool) *progressBar {
	if !enabled || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return &progressBar{
		bar: progressbar.NewOptions(numTasks,
			progressbar.OptionSetDescription("tasks"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("tasks"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// onTaskDone is called from the runner goroutines: progressbar.ProgressBar is safe for concurrent use.
func (p *progressBar) onTaskDone(taskID int) {
	if err := p.bar.Add(1); err != nil {
		klog.V(1).Infof("progress bar: %v", err)
	}
}

func (p *progressBar) finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
