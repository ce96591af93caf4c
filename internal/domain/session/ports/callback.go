// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import "github.com/ManuGH/tvinput/internal/domain/session/model"

// SessionCallback is the requester side of a session. Every method crosses the
// process boundary; a returned error is a delivery failure, which the service logs
// and swallows.
type SessionCallback interface {
	// OnSessionCreated delivers the creation result. session is nil and
	// hardwareSession is model.NoHandle when creation failed.
	OnSessionCreated(session Session, hardwareSession model.Handle) error

	OnChannelRetuned(channelURI string) error
	OnTracksChanged(tracks []model.TrackInfo) error
	OnTrackSelected(trackType model.TrackType, trackID string) error
	OnVideoAvailable() error
	OnVideoUnavailable(reason model.VideoUnavailableReason) error
	OnContentAllowed() error
	OnContentBlocked(rating model.ContentRating) error
	OnLayoutSurface(left, top, right, bottom int) error
	OnSessionEvent(eventType string, args model.Bundle) error
	OnTimeShiftStatusChanged(status model.TimeShiftStatus) error
	OnTimeShiftStartPositionChanged(timeMs int64) error
	OnTimeShiftCurrentPositionChanged(timeMs int64) error

	// Recording sessions.
	OnTuned(channelURI string) error
	OnRecordingStopped(recordedProgramURI string) error
	OnError(code model.RecordingError) error
}

// ServiceObserver receives hardware topology broadcasts.
type ServiceObserver interface {
	AddHardwareInput(deviceID int, info model.InputInfo) error
	RemoveHardwareInput(inputID string) error
	AddHdmiInput(id int, info model.InputInfo) error
	RemoveHdmiInput(inputID string) error
}
