// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package refinput

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

var referenceTracks = []model.TrackInfo{
	{Type: model.TrackVideo, ID: "v0", Width: 1920, Height: 1080, FrameRate: 50},
	{Type: model.TrackAudio, ID: "a0", Language: "en", Channels: 2, SampleRate: 48000},
	{Type: model.TrackAudio, ID: "a1", Language: "de", Channels: 6, SampleRate: 48000},
	{Type: model.TrackSubtitle, ID: "s0", Language: "en"},
}

// tunerSession is a synthetic broadcast tuner. Every tune succeeds.
type tunerSession struct {
	s      *actor.Session
	logger zerolog.Logger

	channel  string
	volume   float64
	captions bool
}

var (
	_ actor.TrackSelector         = (*tunerSession)(nil)
	_ actor.ContentUnblocker      = (*tunerSession)(nil)
	_ actor.PrivateCommandHandler = (*tunerSession)(nil)
	_ actor.OverlayProvider       = (*tunerSession)(nil)
)

func (t *tunerSession) OnRelease(context.Context) {
	t.logger.Debug().Str(log.FieldChannelURI, t.channel).Msg("tuner released")
}

func (t *tunerSession) OnSetSurface(_ context.Context, surface ports.Surface) {
	t.logger.Debug().Bool("surface", surface != nil).Msg("surface changed")
}

func (t *tunerSession) OnSetStreamVolume(_ context.Context, volume float64) {
	t.volume = volume
}

// OnSetCaptionEnabled rebuilds the overlay so the caption layer follows the setting.
func (t *tunerSession) OnSetCaptionEnabled(_ context.Context, enabled bool) {
	if t.captions == enabled {
		return
	}
	t.captions = enabled
	t.s.SetOverlayViewEnabled(false)
	if enabled {
		t.s.SetOverlayViewEnabled(true)
	}
}

// OnCreateOverlayView supplies the caption layer while captions are on.
func (t *tunerSession) OnCreateOverlayView(context.Context) ports.OverlayView {
	if !t.captions {
		return nil
	}
	return captionView{}
}

func (t *tunerSession) OnTune(ctx context.Context, channelURI string, _ model.Bundle) {
	t.tune(ctx, channelURI)
	t.s.NotifyTimeShiftStatusChanged(ctx, model.TimeShiftStatusUnsupported)
}

func (t *tunerSession) tune(ctx context.Context, channelURI string) {
	t.channel = channelURI
	t.logger.Info().Str(log.FieldChannelURI, channelURI).Msg("tuning")
	t.s.NotifyVideoUnavailable(ctx, model.VideoUnavailableTuning)
	t.s.NotifyTracksChanged(ctx, referenceTracks)
	t.s.NotifyTrackSelected(ctx, model.TrackVideo, "v0")
	t.s.NotifyTrackSelected(ctx, model.TrackAudio, "a0")
	t.s.NotifyVideoAvailable(ctx)
	t.s.NotifyContentAllowed(ctx)
}

func (t *tunerSession) OnSelectTrack(ctx context.Context, trackType model.TrackType, trackID string) {
	for _, tr := range referenceTracks {
		if tr.Type == trackType && tr.ID == trackID {
			t.s.NotifyTrackSelected(ctx, trackType, trackID)
			return
		}
	}
	if trackID == "" {
		t.s.NotifyTrackSelected(ctx, trackType, "")
		return
	}
	t.logger.Warn().
		Stringer(log.FieldTrackType, trackType).
		Str(log.FieldTrackID, trackID).
		Msg("unknown track ignored")
}

func (t *tunerSession) OnUnblockContent(ctx context.Context, rating model.ContentRating) {
	t.logger.Info().Str("rating", rating.Flatten()).Msg("content unblocked")
	t.s.NotifyContentAllowed(ctx)
}

func (t *tunerSession) OnAppPrivateCommand(ctx context.Context, action string, data model.Bundle) {
	// Echo commands back as session events so clients can check the round trip.
	if err := t.s.NotifySessionEvent(ctx, action, data); err != nil {
		t.logger.Debug().Err(err).Str("action", action).Msg("private command not echoed")
	}
}

// timeShiftSession is a tuner with a live pause buffer.
type timeShiftSession struct {
	*tunerSession
	buf *timeShiftBuffer
}

var _ actor.TimeShifter = (*timeShiftSession)(nil)

func (t *timeShiftSession) OnTune(ctx context.Context, channelURI string, _ model.Bundle) {
	t.tune(ctx, channelURI)
	t.buf.reset()
	t.s.NotifyTimeShiftStatusChanged(ctx, model.TimeShiftStatusAvailable)
}

func (t *timeShiftSession) OnTimeShiftPlay(ctx context.Context, recordedProgramURI string) {
	t.logger.Info().Str("program", recordedProgramURI).Msg("time-shift playback of recorded program")
	t.buf.reset()
	t.s.NotifyTimeShiftStatusChanged(ctx, model.TimeShiftStatusAvailable)
}

func (t *timeShiftSession) OnTimeShiftPause(context.Context)  { t.buf.pause() }
func (t *timeShiftSession) OnTimeShiftResume(context.Context) { t.buf.resume() }

func (t *timeShiftSession) OnTimeShiftSeekTo(_ context.Context, timeMs int64) {
	t.buf.seekTo(timeMs)
}

func (t *timeShiftSession) OnTimeShiftSetPlaybackParams(_ context.Context, params model.PlaybackParams) {
	t.logger.Debug().Float64("speed", params.Speed).Msg("playback params ignored")
}

func (t *timeShiftSession) OnTimeShiftGetStartPosition(context.Context) int64 {
	return t.buf.start()
}

func (t *timeShiftSession) OnTimeShiftGetCurrentPosition(context.Context) int64 {
	return t.buf.current()
}
