// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
)

// Session is what a requester receives from a successful creation.
type Session interface {
	Handle() model.Handle
	Release()
}

// TvSession is the operation surface of a playback session.
type TvSession interface {
	Session
	SetMain(isMain bool)
	SetSurface(surface Surface)
	DispatchSurfaceChanged(format, width, height int)
	SetStreamVolume(volume float64)
	Tune(channelURI string, params model.Bundle)
	SetCaptionEnabled(enabled bool)
	SelectTrack(trackType model.TrackType, trackID string)
	UnblockContent(ratingToken string)
	AppPrivateCommand(action string, data model.Bundle)
	CreateOverlayView(token model.WindowToken, frame model.Rect)
	RelayoutOverlayView(frame model.Rect)
	RemoveOverlayView()
	TimeShiftPlay(recordedProgramURI string)
	TimeShiftPause()
	TimeShiftResume()
	TimeShiftSeekTo(timeMs int64)
	TimeShiftSetPlaybackParams(params model.PlaybackParams)
	DispatchInputEvent(ctx context.Context, ev model.InputEvent) model.DispatchResult
}

// RecordingSession is the operation surface of a record-only session.
type RecordingSession interface {
	Session
	Tune(channelURI string, params model.Bundle)
	StartRecording(programURI string)
	StopRecording()
	AppPrivateCommand(action string, data model.Bundle)
}

// Surface is a render target owned by exactly one session at a time.
type Surface interface {
	Release()
}
