// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BusDroppedTotal counts session events that reached no subscriber.
	BusDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_bus_dropped_total",
		Help: "Session events not delivered, by topic and reason (no_subscriber, timeout, canceled)",
	}, []string{"topic", "reason"})

	busPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_bus_published_total",
		Help: "Session events delivered to every subscriber of their topic",
	}, []string{"topic"})
)

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// IncBusDropReason records an undelivered event.
func IncBusDropReason(topic, reason string) {
	BusDroppedTotal.WithLabelValues(orUnknown(topic), orUnknown(reason)).Inc()
}

func IncBusPublished(topic string) {
	busPublishedTotal.WithLabelValues(orUnknown(topic)).Inc()
}
