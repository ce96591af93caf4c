// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

// overlayState is looper-confined. The window itself lives on Session under
// overlayMu because the watchdog snapshots it from other goroutines.
type overlayState struct {
	enabled  bool
	token    model.WindowToken
	frame    model.Rect
	hasFrame bool
	view     ports.OverlayView
}

// CreateOverlayView replaces any existing overlay with one placed at frame on
// the requester window identified by token.
func (s *Session) CreateOverlayView(token model.WindowToken, frame model.Rect) {
	s.post("create_overlay_view", func(ctx context.Context) {
		s.createOverlay(ctx, token, frame)
	})
}

// RelayoutOverlayView moves the overlay to frame.
func (s *Session) RelayoutOverlayView(frame model.Rect) {
	s.post("relayout_overlay_view", func(ctx context.Context) {
		s.relayoutOverlay(ctx, frame)
	})
}

// RemoveOverlayView detaches the overlay and forgets its window token.
func (s *Session) RemoveOverlayView() {
	if s.releasing.Load() {
		return
	}
	s.scheduleOverlayCleanup()
	s.post("remove_overlay_view", func(ctx context.Context) {
		s.removeOverlay(ctx, true, false)
	})
}

// SetOverlayViewEnabled is called by the implementation to show or hide its
// overlay. Enabling re-creates the overlay on the remembered token and frame.
func (s *Session) SetOverlayViewEnabled(enable bool) {
	s.post("set_overlay_view_enabled", func(ctx context.Context) {
		if enable == s.overlay.enabled {
			return
		}
		s.overlay.enabled = enable
		if !enable {
			s.removeOverlay(ctx, false, true)
			return
		}
		if s.overlay.token != "" && s.overlay.hasFrame {
			s.createOverlay(ctx, s.overlay.token, s.overlay.frame)
		}
	})
}

func (s *Session) createOverlay(ctx context.Context, token model.WindowToken, frame model.Rect) {
	s.removeOverlay(ctx, false, true)

	s.overlay.token = token
	s.overlay.frame = frame
	s.overlay.hasFrame = true
	if h, ok := s.hooks.(OverlaySizeListener); ok {
		h.OnOverlayViewSizeChanged(ctx, frame.Width(), frame.Height())
	}

	if !s.overlay.enabled {
		return
	}
	provider, ok := s.hooks.(OverlayProvider)
	if !ok {
		return
	}
	view := provider.OnCreateOverlayView(ctx)
	if view == nil {
		return
	}

	// A fresh overlay supersedes a pending teardown check.
	s.overlayMu.Lock()
	pending := s.cleanup
	s.cleanup = nil
	s.overlayMu.Unlock()
	pending.Cancel()

	if s.windows == nil {
		s.logger.Warn().Msg("no window manager configured; overlay not attached")
		return
	}
	win, err := s.windows.AddView(ctx, view, model.LayoutFor(token, frame))
	if err != nil {
		s.logger.Warn().Err(err).Str("frame", frame.String()).Msg("failed to attach overlay view")
		return
	}
	s.overlay.view = view
	s.overlayMu.Lock()
	s.window = win
	s.overlayMu.Unlock()
	s.logger.Debug().Str(log.FieldEvent, "overlay.attached").Str("frame", frame.String()).Msg("overlay attached")
}

func (s *Session) relayoutOverlay(ctx context.Context, frame model.Rect) {
	if !s.overlay.hasFrame || !s.overlay.frame.SameSize(frame) {
		if h, ok := s.hooks.(OverlaySizeListener); ok {
			h.OnOverlayViewSizeChanged(ctx, frame.Width(), frame.Height())
		}
	}
	s.overlay.frame = frame
	s.overlay.hasFrame = true

	if !s.overlay.enabled {
		return
	}
	s.overlayMu.Lock()
	win := s.window
	s.overlayMu.Unlock()
	if win == nil {
		return
	}
	if err := win.Update(ctx, model.LayoutFor(s.overlay.token, frame)); err != nil {
		s.logger.Warn().Err(err).Str("frame", frame.String()).Msg("failed to relayout overlay view")
	}
}

// removeOverlay detaches the overlay window. watch arms the watchdog from inside
// the looper; public removals arm it from the caller before posting instead.
func (s *Session) removeOverlay(ctx context.Context, clearToken, watch bool) {
	if clearToken {
		s.overlay.token = ""
		s.overlay.frame = model.Rect{}
		s.overlay.hasFrame = false
	}

	s.overlayMu.Lock()
	win := s.window
	s.overlayMu.Unlock()
	if win == nil {
		return
	}
	if watch {
		s.scheduleOverlayCleanup()
	}
	if err := win.Remove(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to remove overlay view")
	}
	s.overlayMu.Lock()
	s.window = nil
	s.overlayMu.Unlock()
	s.overlay.view = nil
}

// scheduleOverlayCleanup arms the watchdog on the current overlay window, if any.
func (s *Session) scheduleOverlayCleanup() {
	if s.watchdog == nil {
		return
	}
	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()
	if s.window == nil {
		return
	}
	s.cleanup.Cancel()
	s.cleanup = s.watchdog.Start(s.handle, s.window)
}

// OverlayAttached reports whether the session currently holds an overlay window.
func (s *Session) OverlayAttached() bool {
	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()
	return s.window != nil
}
