// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"
	"fmt"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

// Notification names, used for metrics and logs.
const (
	NotifyNameSessionEvent           = "session_event"
	NotifyNameChannelRetuned         = "channel_retuned"
	NotifyNameTracksChanged          = "tracks_changed"
	NotifyNameTrackSelected          = "track_selected"
	NotifyNameVideoAvailable         = "video_available"
	NotifyNameVideoUnavailable       = "video_unavailable"
	NotifyNameContentAllowed         = "content_allowed"
	NotifyNameContentBlocked         = "content_blocked"
	NotifyNameLayoutSurface          = "layout_surface"
	NotifyNameTimeShiftStatus        = "time_shift_status_changed"
	NotifyNameTimeShiftStartPosition = "time_shift_start_position_changed"
	NotifyNameTimeShiftCurrent       = "time_shift_current_position_changed"
	NotifyNameTuned                  = "tuned"
	NotifyNameRecordingStopped       = "recording_stopped"
	NotifyNameError                  = "error"
)

// NotifySessionEvent sends a custom event to the requester.
func (b *base) NotifySessionEvent(ctx context.Context, eventType string, args model.Bundle) error {
	if eventType == "" {
		return fmt.Errorf("notify session event: %w: empty event type", ErrInvalidArgument)
	}
	args = args.Clone()
	b.notify(ctx, NotifyNameSessionEvent, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnSessionEvent(eventType, args)
	})
	return nil
}

func (s *Session) NotifyChannelRetuned(ctx context.Context, channelURI string) {
	s.notify(ctx, NotifyNameChannelRetuned, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnChannelRetuned(channelURI)
	})
}

// NotifyTracksChanged reports the available tracks. The slice is copied.
func (s *Session) NotifyTracksChanged(ctx context.Context, tracks []model.TrackInfo) {
	tracks = append([]model.TrackInfo(nil), tracks...)
	s.notify(ctx, NotifyNameTracksChanged, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnTracksChanged(tracks)
	})
}

// NotifyTrackSelected reports a selected track. An empty trackID unselects.
func (s *Session) NotifyTrackSelected(ctx context.Context, trackType model.TrackType, trackID string) {
	s.notify(ctx, NotifyNameTrackSelected, func(_ context.Context, cb ports.SessionCallback) error {
		if trackID == "" {
			delete(s.selected, trackType)
		} else {
			s.selected[trackType] = trackID
		}
		return cb.OnTrackSelected(trackType, trackID)
	})
}

func (s *Session) NotifyVideoAvailable(ctx context.Context) {
	s.notify(ctx, NotifyNameVideoAvailable, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnVideoAvailable()
	})
}

// NotifyVideoUnavailable reports that video cannot be shown. Unknown reasons are
// logged and still delivered.
func (s *Session) NotifyVideoUnavailable(ctx context.Context, reason model.VideoUnavailableReason) {
	if !reason.Valid() {
		s.logger.Error().Int(log.FieldReason, int(reason)).Msg("notify video unavailable: unknown reason")
	}
	s.notify(ctx, NotifyNameVideoUnavailable, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnVideoUnavailable(reason)
	})
}

func (s *Session) NotifyContentAllowed(ctx context.Context) {
	s.notify(ctx, NotifyNameContentAllowed, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnContentAllowed()
	})
}

func (s *Session) NotifyContentBlocked(ctx context.Context, rating model.ContentRating) {
	s.notify(ctx, NotifyNameContentBlocked, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnContentBlocked(rating)
	})
}

// NotifyTimeShiftStatusChanged reports the time-shift status. Position tracking
// runs while the status is available.
func (s *Session) NotifyTimeShiftStatusChanged(ctx context.Context, status model.TimeShiftStatus) {
	s.notify(ctx, NotifyNameTimeShiftStatus, func(_ context.Context, cb ports.SessionCallback) error {
		if status == model.TimeShiftStatusAvailable {
			s.tracker.enable()
		} else {
			s.tracker.disable()
		}
		return cb.OnTimeShiftStatusChanged(status)
	})
}

// LayoutSurface asks the requester to lay out the media surface at the given
// bounds, relative to the overlay.
func (s *Session) LayoutSurface(ctx context.Context, left, top, right, bottom int) error {
	if left > right || top > bottom {
		return fmt.Errorf("layout surface (%d, %d, %d, %d): %w", left, top, right, bottom, ErrInvalidArgument)
	}
	s.notify(ctx, NotifyNameLayoutSurface, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnLayoutSurface(left, top, right, bottom)
	})
	return nil
}

func (s *Session) notifyTimeShiftStartPosition(ctx context.Context, timeMs int64) {
	s.notify(ctx, NotifyNameTimeShiftStartPosition, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnTimeShiftStartPositionChanged(timeMs)
	})
}

func (s *Session) notifyTimeShiftCurrentPosition(ctx context.Context, timeMs int64) {
	s.notify(ctx, NotifyNameTimeShiftCurrent, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnTimeShiftCurrentPositionChanged(timeMs)
	})
}
