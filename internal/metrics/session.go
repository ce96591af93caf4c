// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification dispositions.
const (
	DispositionQueued    = "queued"
	DispositionInline    = "inline"
	DispositionPosted    = "posted"
	DispositionDropped   = "dropped"
	DispositionDelivered = "delivered"
)

var (
	sessionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tvinput_sessions_active",
		Help: "Number of live sessions by kind",
	}, []string{"kind"})

	sessionCreateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_session_create_total",
		Help: "Session creation attempts by kind and outcome",
	}, []string{"kind", "outcome"}) // outcome=created|failed|unknown_input

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_notifications_total",
		Help: "Session notifications by name and disposition",
	}, []string{"notification", "disposition"})

	notificationDeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_notification_delivery_failures_total",
		Help: "Callback invocations that returned an error",
	}, []string{"notification"})

	observerBroadcastFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_observer_broadcast_failures_total",
		Help: "Topology broadcasts that failed for a single observer",
	}, []string{"change"})

	overlayWatchdogTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_overlay_watchdog_total",
		Help: "Overlay detach watchdog transitions",
	}, []string{"action"}) // action=started|cancelled|escalated

	timeShiftClampsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvinput_timeshift_position_clamps_total",
		Help: "Time-shift current positions clamped to the start position",
	})

	inputEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvinput_input_events_total",
		Help: "Input events dispatched by session by result",
	}, []string{"result"})
)

// SetSessionsActive records the number of live sessions of a kind.
func SetSessionsActive(kind string, n int) {
	sessionsActive.WithLabelValues(kind).Set(float64(n))
}

// RecordSessionCreate records a session creation outcome.
func RecordSessionCreate(kind, outcome string) {
	sessionCreateTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordNotification records what happened to one notification.
func RecordNotification(name, disposition string) {
	notificationsTotal.WithLabelValues(name, disposition).Inc()
}

// IncNotificationDeliveryFailure records a failed callback delivery.
func IncNotificationDeliveryFailure(name string) {
	notificationDeliveryFailures.WithLabelValues(name).Inc()
}

// IncObserverBroadcastFailure records one failed observer delivery.
func IncObserverBroadcastFailure(change string) {
	observerBroadcastFailures.WithLabelValues(change).Inc()
}

// RecordOverlayWatchdog records a watchdog action.
func RecordOverlayWatchdog(action string) {
	overlayWatchdogTotal.WithLabelValues(action).Inc()
}

// IncTimeShiftClamp records a clamped time-shift position.
func IncTimeShiftClamp() {
	timeShiftClampsTotal.Inc()
}

// RecordInputEvent records the result of an input dispatch.
func RecordInputEvent(result string) {
	inputEventsTotal.WithLabelValues(result).Inc()
}
