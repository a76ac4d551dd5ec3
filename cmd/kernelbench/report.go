// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/kernelbench/backends"
	kbprom "github.com/gomlx/kernelbench/pkg/observability/prometheus"
	"github.com/gomlx/kernelbench/pkg/perf"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sys/cpu"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

// configureTerminal drops colors when stdout is not a capable terminal.
func configureTerminal() {
	output := termenv.NewOutput(os.Stdout)
	if output.Profile == termenv.Ascii {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func newPlainTable(alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row < 0 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			}
			return s.Align(alignment)
		})
}

// cpuFeatures lists the SIMD extensions of the host relevant to the CPU devices.
func cpuFeatures() string {
	var features []string
	add := func(has bool, name string) {
		if has {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "neon")
		add(cpu.ARM64.HasFPHP, "fp16")
		add(cpu.ARM64.HasSVE, "sve")
	}
	if len(features) == 0 {
		return "-"
	}
	return strings.Join(features, ", ")
}

func printConfiguration(config *Config) {
	fmt.Println(titleStyle.Render("Configuration"))
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Row("run id", config.RunID)
	table.Row("device", config.Device)
	table.Row("kernel", config.KernelName)
	if config.KernelPath != "" {
		table.Row("kernel path", config.KernelPath)
	}
	table.Row("elements per task (N)", humanize.Comma(int64(config.N)))
	table.Row("tasks", humanize.Comma(int64(config.Tasks)))
	table.Row("buffers", humanize.Bytes(uint64(3*4*config.N)))
	table.Row("host", fmt.Sprintf("%s/%s, %d cores", runtime.GOOS, runtime.GOARCH, runtime.GOMAXPROCS(0)))
	table.Row("cpu features", cpuFeatures())
	fmt.Println(table.Render())
}

func printMetrics(config *Config, caps backends.Capabilities, res backends.ComputeResult, metrics perf.PerformanceData) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Results (%s, %s)", config.Device, config.KernelName)))
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Headers("Metric", "Value")
	table.Row("tasks completed", fmt.Sprintf("%s / %s",
		humanize.Comma(int64(res.TasksCompleted)), humanize.Comma(int64(config.Tasks))))
	table.Row("elapsed", res.Elapsed.String())
	table.Row("throughput", fmt.Sprintf("%s tasks/s", humanize.FormatFloat("#,###.##", metrics.TasksPerSecond)))
	table.Row("", humanize.SIWithDigits(metrics.ElementsPerSecond, 2, "elements/s"))
	table.Row("host time per task", metrics.HostTimePerTask.String())
	if caps.DeviceTiming {
		table.Row("device time per task", metrics.DeviceTimePerTask.String())
		table.Row("in-node time per task", metrics.InNodeTimePerTask.String())
		table.Row("host overhead per task", metrics.OverheadPerTask.String())
		table.Row("inter-completion time", metrics.InterCompletionTime.String())
		table.Row("device utilization", fmt.Sprintf("%.1f%%", 100*metrics.DeviceUtilization))
	}
	fmt.Println(table.Render())
}

// printPrometheus prints the run in the Prometheus text exposition format.
func printPrometheus(config *Config, caps backends.Capabilities, res backends.ComputeResult, metrics perf.PerformanceData) {
	reg := prom.NewRegistry()
	exporter := must.M1(kbprom.NewExporter("", reg, kbprom.ExporterOptions{}))
	exporter.Observe(config.Device, config.KernelName, caps, res, metrics)
	for _, family := range must.M1(reg.Gather()) {
		_ = must.M1(expfmt.MetricFamilyToText(os.Stdout, family))
	}
}
