// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package actor implements the session actors. A Session funnels every inbound
// operation onto its looper and routes every outbound notification through a
// lifecycle gate, so notifications issued before the requester is bound are
// queued and delivered in order once it is.
package actor

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/ManuGH/tvinput/internal/domain/session/looper"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
	"github.com/ManuGH/tvinput/internal/log"
)

// DefaultPositionInterval is the time-shift position sampling period.
const DefaultPositionInterval = time.Second

// Config wires a Session to its collaborators.
type Config struct {
	InputID string
	// Loop is the shared main looper all sessions run on.
	Loop *looper.Looper
	// Watchdog supervises overlay teardown. Nil disables supervision.
	Watchdog *watchdog.Watchdog
	// Windows places overlay windows. Nil disables overlays.
	Windows ports.WindowManager
	// Input is the raw input event source. Nil means the session receives no input.
	Input            ports.InputChannel
	PositionInterval time.Duration
	// OnReleased runs on the looper once teardown finished.
	OnReleased func(model.Handle)
}

// Session is a playback session actor.
type Session struct {
	base

	hooks    Hooks
	hw       *hardwareBridge
	windows  ports.WindowManager
	watchdog *watchdog.Watchdog

	// Looper-confined state.
	surface  ports.Surface
	overlay  overlayState
	tracker  positionTracker
	selected map[model.TrackType]string

	overlayMu sync.Mutex
	window    ports.OverlayWindow // guarded by overlayMu
	cleanup   *watchdog.Task      // guarded by overlayMu

	input     ports.InputChannel
	stopInput chan struct{}
	inputDone chan struct{}
	stopOnce  sync.Once
	doneOnce  sync.Once
}

var _ ports.TvSession = (*Session)(nil)

// NewSession creates an unbound session. Hooks must be attached before Bind.
func NewSession(cfg Config) *Session {
	interval := cfg.PositionInterval
	if interval <= 0 {
		interval = DefaultPositionInterval
	}
	s := &Session{
		base:      newBase(model.KindTv, cfg.InputID, cfg.Loop, cfg.OnReleased),
		windows:   cfg.Windows,
		watchdog:  cfg.Watchdog,
		overlay:   overlayState{enabled: true},
		selected:  make(map[model.TrackType]string),
		input:     cfg.Input,
		stopInput: make(chan struct{}),
		inputDone: make(chan struct{}),
	}
	s.tracker = newPositionTracker(s, interval)
	return s
}

// Attach installs the implementation hooks. A hooks value implementing
// HardwarePassthrough turns the session into a passthrough session.
func (s *Session) Attach(hooks Hooks) error {
	if hooks == nil {
		return ErrInvalidArgument
	}
	if s.hooks != nil {
		return errors.New("session hooks already attached")
	}
	s.hooks = hooks
	if hp, ok := hooks.(HardwarePassthrough); ok {
		s.kind = model.KindPassthrough
		s.logger = s.logger.With().Str(log.FieldKind, string(s.kind)).Logger()
		s.hw = newHardwareBridge(s, hp)
	}
	if s.input != nil {
		go s.receiveInput(s.input)
	} else {
		s.markInputDone()
	}
	return nil
}

// Hooks returns the attached implementation.
func (s *Session) Hooks() Hooks { return s.hooks }

// SetMain tells the session whether it drives the main display.
func (s *Session) SetMain(isMain bool) {
	s.post("set_main", func(ctx context.Context) {
		if h, ok := s.hooks.(MainSetter); ok {
			h.OnSetMain(ctx, isMain)
		}
	})
}

// SetSurface hands a render target to the session. The previously held surface is
// released. Nil clears the surface.
func (s *Session) SetSurface(surface ports.Surface) {
	s.post("set_surface", func(ctx context.Context) {
		if s.hw != nil {
			s.logger.Error().
				Str(log.FieldOperation, "set_surface").
				Msg("set surface must not be called on a hardware passthrough session")
		} else {
			s.hooks.OnSetSurface(ctx, surface)
		}
		if s.surface != nil && !sameSurface(s.surface, surface) {
			s.surface.Release()
		}
		s.surface = surface
	})
}

// sameSurface reports whether a and b are the same surface. Values of a
// non-comparable type never match.
func sameSurface(a, b ports.Surface) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func (s *Session) DispatchSurfaceChanged(format, width, height int) {
	s.post("surface_changed", func(ctx context.Context) {
		if h, ok := s.hooks.(SurfaceChangeListener); ok {
			h.OnSurfaceChanged(ctx, format, width, height)
		}
	})
}

// SetStreamVolume sets the volume. Values outside [0,1] are clamped and NaN
// becomes 0.
func (s *Session) SetStreamVolume(volume float64) {
	if math.IsNaN(volume) {
		s.logger.Warn().Msg("stream volume is NaN")
		volume = 0
	}
	if volume < 0 || volume > 1 {
		clamped := min(max(volume, 0), 1)
		s.logger.Warn().
			Float64("volume", volume).
			Float64("clamped", clamped).
			Msg("stream volume out of range")
		volume = clamped
	}
	s.post("set_stream_volume", func(ctx context.Context) {
		s.hooks.OnSetStreamVolume(ctx, volume)
	})
}

// Tune switches to channelURI. It resets the cached time-shift position and the
// selected tracks.
func (s *Session) Tune(channelURI string, params model.Bundle) {
	params = params.Clone()
	s.post("tune", func(ctx context.Context) {
		s.tracker.current = model.TimeShiftInvalidTime
		clear(s.selected)
		s.logger.Debug().Str(log.FieldChannelURI, channelURI).Msg("tune")
		s.hooks.OnTune(ctx, channelURI, params)
	})
}

func (s *Session) SetCaptionEnabled(enabled bool) {
	s.post("set_caption_enabled", func(ctx context.Context) {
		s.hooks.OnSetCaptionEnabled(ctx, enabled)
	})
}

func (s *Session) SelectTrack(trackType model.TrackType, trackID string) {
	s.post("select_track", func(ctx context.Context) {
		if h, ok := s.hooks.(TrackSelector); ok {
			h.OnSelectTrack(ctx, trackType, trackID)
		}
	})
}

// UnblockContent unblocks content rated with the flattened rating token.
func (s *Session) UnblockContent(ratingToken string) {
	s.post("unblock_content", func(ctx context.Context) {
		rating, err := model.UnflattenContentRating(ratingToken)
		if err != nil {
			s.logger.Warn().Err(err).Str("rating", ratingToken).Msg("ignoring malformed unblock rating")
			return
		}
		if h, ok := s.hooks.(ContentUnblocker); ok {
			h.OnUnblockContent(ctx, rating)
		}
	})
}

func (s *Session) AppPrivateCommand(action string, data model.Bundle) {
	data = data.Clone()
	s.post("app_private_command", func(ctx context.Context) {
		if h, ok := s.hooks.(PrivateCommandHandler); ok {
			h.OnAppPrivateCommand(ctx, action, data)
		}
	})
}

func (s *Session) TimeShiftPlay(recordedProgramURI string) {
	s.post("time_shift_play", func(ctx context.Context) {
		s.tracker.current = 0
		if h, ok := s.hooks.(TimeShifter); ok {
			h.OnTimeShiftPlay(ctx, recordedProgramURI)
		}
	})
}

func (s *Session) TimeShiftPause() {
	s.post("time_shift_pause", func(ctx context.Context) {
		if h, ok := s.hooks.(TimeShifter); ok {
			h.OnTimeShiftPause(ctx)
		}
	})
}

func (s *Session) TimeShiftResume() {
	s.post("time_shift_resume", func(ctx context.Context) {
		if h, ok := s.hooks.(TimeShifter); ok {
			h.OnTimeShiftResume(ctx)
		}
	})
}

func (s *Session) TimeShiftSeekTo(timeMs int64) {
	s.post("time_shift_seek_to", func(ctx context.Context) {
		if h, ok := s.hooks.(TimeShifter); ok {
			h.OnTimeShiftSeekTo(ctx, timeMs)
		}
	})
}

func (s *Session) TimeShiftSetPlaybackParams(params model.PlaybackParams) {
	s.post("time_shift_set_playback_params", func(ctx context.Context) {
		if h, ok := s.hooks.(TimeShifter); ok {
			h.OnTimeShiftSetPlaybackParams(ctx, params)
		}
	})
}

// SelectedTrack returns the track last reported selected for trackType.
func (s *Session) SelectedTrack(ctx context.Context, trackType model.TrackType) (string, bool, error) {
	var (
		id string
		ok bool
	)
	err := s.loop.Call(ctx, func(context.Context) {
		id, ok = s.selected[trackType]
	})
	return id, ok, err
}

// Release tears the session down. The overlay watchdog is armed from the calling
// goroutine before teardown is scheduled, so a looper stuck in teardown is still
// detected.
func (s *Session) Release() {
	if !s.beginRelease() {
		return
	}
	s.scheduleOverlayCleanup()
	s.stopInputReceiver()
	if s.hooks == nil {
		s.markInputDone()
	}
	s.runRelease(s.release)
}

func (s *Session) release(ctx context.Context) {
	defer func() {
		s.gate.Release()
		s.removeOverlay(ctx, true, false)
		s.tracker.disable()
		s.finishRelease()
	}()

	if s.hw != nil {
		s.hw.release()
	}
	if s.hooks != nil {
		s.hooks.OnRelease(ctx)
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	s.gate.Release()
}

// Abort discards a session whose creation failed before it was handed out. The
// OnRelease hook runs on the session looper and Abort waits for it. No
// notification is delivered.
func (s *Session) Abort(ctx context.Context) {
	if !s.beginRelease() {
		return
	}
	s.stopInputReceiver()
	s.runAbort(ctx, func(ctx context.Context) {
		s.gate.Release()
		if s.hooks != nil {
			s.hooks.OnRelease(ctx)
		} else {
			s.markInputDone()
		}
	})
	s.logger.Info().Str(log.FieldEvent, "session.aborted").Msg("session discarded after failed creation")
}

func (s *Session) stopInputReceiver() {
	s.stopOnce.Do(func() { close(s.stopInput) })
}

func (s *Session) markInputDone() {
	s.doneOnce.Do(func() { close(s.inputDone) })
}

// InputStopped is closed once the input receiver exited.
func (s *Session) InputStopped() <-chan struct{} { return s.inputDone }
