// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package prometheus exports the results of benchmark runs as Prometheus collectors.
package prometheus

import (
	"github.com/gomlx/kernelbench/backends"
	"github.com/gomlx/kernelbench/pkg/perf"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// HostTimeBuckets of the per-task host time histogram, in seconds. Defaults to prom.DefBuckets.
	HostTimeBuckets []float64
}

// Exporter records benchmark runs into Prometheus collectors, labeled by device and kernel.
type Exporter struct {
	runsTotal           *prom.CounterVec
	tasksCompletedTotal *prom.CounterVec
	elapsedSeconds      *prom.GaugeVec
	throughput          *prom.GaugeVec
	deviceSeconds       *prom.GaugeVec
	inNodeSeconds       *prom.GaugeVec
	interCompletion     *prom.GaugeVec
	utilization         *prom.GaugeVec
	hostTimePerTask     *prom.HistogramVec
}

var labels = []string{"device", "kernel"}

// NewExporter creates and registers the collectors into reg (prom.DefaultRegisterer if nil).
// Collectors already registered by a previous Exporter with the same namespace are reused.
func NewExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if namespace == "" {
		namespace = "kernelbench"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.HostTimeBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	e := &Exporter{
		runsTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of benchmark runs.",
		}, labels),
		tasksCompletedTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of completed tasks.",
		}, labels),
		elapsedSeconds:  gauge("elapsed_seconds", "Host wall-clock time of the last run, in seconds."),
		throughput:      gauge("throughput_tasks_per_second", "Tasks completed per second in the last run."),
		deviceSeconds:   gauge("device_time_per_task_seconds", "Mean device execution time per task in the last run."),
		inNodeSeconds:   gauge("in_node_time_per_task_seconds", "Mean time per task inside the accelerator node in the last run."),
		interCompletion: gauge("inter_completion_seconds", "Mean time between consecutive task completions in the last run."),
		utilization:     gauge("device_utilization_ratio", "Device time over elapsed time in the last run."),
		hostTimePerTask: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "host_time_per_task_seconds",
			Help:      "Mean host time per task, one sample per run.",
			Buckets:   buckets,
		}, labels),
	}

	var err error
	if e.runsTotal, err = registerCollector(reg, e.runsTotal); err != nil {
		return nil, err
	}
	if e.tasksCompletedTotal, err = registerCollector(reg, e.tasksCompletedTotal); err != nil {
		return nil, err
	}
	for _, g := range []**prom.GaugeVec{&e.elapsedSeconds, &e.throughput, &e.deviceSeconds, &e.inNodeSeconds,
		&e.interCompletion, &e.utilization} {
		if *g, err = registerCollector(reg, *g); err != nil {
			return nil, err
		}
	}
	if e.hostTimePerTask, err = registerCollector(reg, e.hostTimePerTask); err != nil {
		return nil, err
	}
	return e, nil
}

// Observe records one run on device with kernel. Device timing gauges are only set if the
// runner measures them.
func (e *Exporter) Observe(device, kernel string, caps backends.Capabilities, res backends.ComputeResult, p perf.PerformanceData) {
	if e == nil {
		return
	}
	lv := []string{normalizeLabel(device, "unknown"), normalizeLabel(kernel, "unknown")}
	e.runsTotal.WithLabelValues(lv...).Inc()
	e.tasksCompletedTotal.WithLabelValues(lv...).Add(float64(res.TasksCompleted))
	e.elapsedSeconds.WithLabelValues(lv...).Set(p.ElapsedSeconds)
	e.throughput.WithLabelValues(lv...).Set(p.TasksPerSecond)
	e.hostTimePerTask.WithLabelValues(lv...).Observe(p.HostTimePerTask.Seconds())
	if !caps.DeviceTiming {
		return
	}
	e.deviceSeconds.WithLabelValues(lv...).Set(p.DeviceTimePerTask.Seconds())
	e.inNodeSeconds.WithLabelValues(lv...).Set(p.InNodeTimePerTask.Seconds())
	e.interCompletion.WithLabelValues(lv...).Set(p.InterCompletionTime.Seconds())
	e.utilization.WithLabelValues(lv...).Set(p.DeviceUtilization)
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, errors.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}
	return collector, errors.Wrap(err, "failed to register collector")
}
