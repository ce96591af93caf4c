// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// breakerStates lists every state label so exactly one series per breaker is 1.
var breakerStates = [...]string{"closed", "half-open", "open"}

var (
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tvinput_breaker_state",
		Help: "1 for the current state of each upstream breaker, 0 for the others",
	}, []string{"breaker", "state"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_breaker_trips_total",
		Help: "Transitions of an upstream breaker into the open state",
	}, []string{"breaker", "reason"})

	breakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_breaker_rejections_total",
		Help: "Upstream calls refused without being attempted because the breaker was open",
	}, []string{"breaker"})
)

// SetCircuitBreakerState marks state as the active one for breaker.
func SetCircuitBreakerState(breaker, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		circuitBreakerState.WithLabelValues(breaker, s).Set(v)
	}
}

func RecordCircuitBreakerTrip(breaker, reason string) {
	breakerTrips.WithLabelValues(breaker, reason).Inc()
}

func RecordCircuitBreakerRejection(breaker string) {
	breakerRejections.WithLabelValues(breaker).Inc()
}
