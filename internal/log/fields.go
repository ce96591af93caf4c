// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID       = "session_id"
	FieldHardwareSession = "hardware_session_id"
	FieldCorrelationID   = "correlation_id"
	FieldInputID         = "input_id"
	FieldHardwareInputID = "hardware_input_id"
	FieldDeviceID        = "device_id"
	FieldObserver        = "observer"

	// Process fields
	FieldEvent        = "event"
	FieldComponent    = "component"
	FieldNotification = "notification"
	FieldOperation    = "op"
	FieldKind         = "kind"

	// Media fields
	FieldChannelURI = "channel_uri"
	FieldTrackType  = "track_type"
	FieldTrackID    = "track_id"
	FieldReason     = "reason"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
