// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	looperQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tvinput_looper_queue_depth",
		Help: "Number of tasks waiting on a looper",
	}, []string{"looper"})

	looperPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_looper_task_panics_total",
		Help: "Total number of recovered looper task panics",
	}, []string{"looper"})
)

// SetLooperQueueDepth records the current queue length of a looper.
func SetLooperQueueDepth(looper string, depth int) {
	looperQueueDepth.WithLabelValues(looper).Set(float64(depth))
}

// IncLooperPanic records a recovered task panic.
func IncLooperPanic(looper string) {
	looperPanicsTotal.WithLabelValues(looper).Inc()
}
