// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "math"

// TimeShiftInvalidTime marks an unknown time-shift position.
const TimeShiftInvalidTime int64 = math.MinInt64

// SessionKind distinguishes the session variants a host can produce.
type SessionKind string

const (
	KindTv          SessionKind = "tv"
	KindPassthrough SessionKind = "passthrough"
	KindRecording   SessionKind = "recording"
)

// TrackType is the category of a media track.
type TrackType int

const (
	TrackAudio TrackType = iota
	TrackVideo
	TrackSubtitle
)

func (t TrackType) String() string {
	switch t {
	case TrackAudio:
		return "audio"
	case TrackVideo:
		return "video"
	case TrackSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known track type.
func (t TrackType) Valid() bool {
	return t >= TrackAudio && t <= TrackSubtitle
}

// VideoUnavailableReason explains why video cannot be shown.
type VideoUnavailableReason int

const (
	VideoUnavailableUnknown VideoUnavailableReason = iota
	VideoUnavailableTuning
	VideoUnavailableWeakSignal
	VideoUnavailableBuffering
	VideoUnavailableAudioOnly
)

// Valid reports whether r lies in the defined reason range.
func (r VideoUnavailableReason) Valid() bool {
	return r >= VideoUnavailableUnknown && r <= VideoUnavailableAudioOnly
}

func (r VideoUnavailableReason) String() string {
	switch r {
	case VideoUnavailableUnknown:
		return "unknown"
	case VideoUnavailableTuning:
		return "tuning"
	case VideoUnavailableWeakSignal:
		return "weak_signal"
	case VideoUnavailableBuffering:
		return "buffering"
	case VideoUnavailableAudioOnly:
		return "audio_only"
	default:
		return "invalid"
	}
}

// TimeShiftStatus reports whether time-shift controls are usable.
type TimeShiftStatus int

const (
	TimeShiftStatusUnknown TimeShiftStatus = iota
	TimeShiftStatusUnsupported
	TimeShiftStatusUnavailable
	TimeShiftStatusAvailable
)

func (s TimeShiftStatus) String() string {
	switch s {
	case TimeShiftStatusUnknown:
		return "unknown"
	case TimeShiftStatusUnsupported:
		return "unsupported"
	case TimeShiftStatusUnavailable:
		return "unavailable"
	case TimeShiftStatusAvailable:
		return "available"
	default:
		return "invalid"
	}
}

// RecordingError is reported by recording sessions.
type RecordingError int

const (
	RecordingErrorUnknown RecordingError = iota
	RecordingErrorInsufficientSpace
	RecordingErrorResourceBusy
)

// Valid reports whether e lies in the defined error range.
func (e RecordingError) Valid() bool {
	return e >= RecordingErrorUnknown && e <= RecordingErrorResourceBusy
}

// DispatchResult is the outcome of input event dispatch.
type DispatchResult int

const (
	DispatchNotHandled DispatchResult = iota
	DispatchHandled
	DispatchInProgress
)

func (d DispatchResult) String() string {
	switch d {
	case DispatchHandled:
		return "handled"
	case DispatchInProgress:
		return "in_progress"
	default:
		return "not_handled"
	}
}
