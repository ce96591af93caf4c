// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "time"

// EventType names a bus topic.
type EventType string

const (
	EventSessionCreated  EventType = "session.created"
	EventSessionFailed   EventType = "session.create_failed"
	EventSessionReleased EventType = "session.released"
	EventOverlayLeak     EventType = "session.overlay_leak"
	EventTopology        EventType = "topology.changed"
)

// SessionCreatedEvent is published once a requester received a live session.
type SessionCreatedEvent struct {
	Handle          Handle
	HardwareSession Handle
	InputID         string
	Kind            SessionKind
	At              time.Time
}

// SessionFailedEvent is published when creation yielded no session.
type SessionFailedEvent struct {
	InputID string
	Kind    SessionKind
	Reason  string
	At      time.Time
}

// SessionReleasedEvent is published after a session's teardown ran.
type SessionReleasedEvent struct {
	Handle Handle
	At     time.Time
}

// OverlayLeakFault reports an overlay window that failed to detach within its bound.
// It is the supervisory replacement for killing the hosting process.
type OverlayLeakFault struct {
	Handle  Handle
	Timeout time.Duration
	At      time.Time
}

// TopologyChange enumerates broadcast kinds.
type TopologyChange string

const (
	TopologyHardwareAdded   TopologyChange = "hardware_added"
	TopologyHardwareRemoved TopologyChange = "hardware_removed"
	TopologyHdmiAdded       TopologyChange = "hdmi_added"
	TopologyHdmiRemoved     TopologyChange = "hdmi_removed"
)

// TopologyEvent mirrors a broadcast onto the bus.
type TopologyEvent struct {
	Change    TopologyChange
	ID        int
	InputID   string
	Observers int
	Failures  int
	At        time.Time
}
