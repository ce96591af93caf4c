// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/metrics"
)

// DispatchInputEvent routes ev to the implementation and then to the overlay. It
// blocks until the looper ran the dispatch. An InProgress result means the overlay
// finishes the event asynchronously.
func (s *Session) DispatchInputEvent(ctx context.Context, ev model.InputEvent) model.DispatchResult {
	return s.dispatchInput(ctx, ev, nil)
}

func (s *Session) dispatchInput(ctx context.Context, ev model.InputEvent, done func(handled bool)) model.DispatchResult {
	if s.releasing.Load() {
		return model.DispatchNotHandled
	}
	result := model.DispatchNotHandled
	err := s.loop.Call(ctx, func(ctx context.Context) {
		// Teardown may have run between the check above and this task.
		if s.releasing.Load() {
			return
		}
		result = s.dispatchOnLoop(ctx, ev, done)
	})
	if err != nil {
		s.logger.Debug().Err(err).Uint64("seq", ev.Seq).Msg("input event not dispatched")
		return model.DispatchNotHandled
	}
	metrics.RecordInputEvent(result.String())
	return result
}

func (s *Session) dispatchOnLoop(ctx context.Context, ev model.InputEvent, done func(handled bool)) model.DispatchResult {
	navigation := false
	skipOverlay := false

	switch {
	case ev.Key != nil:
		if s.dispatchKey(ctx, *ev.Key) {
			return model.DispatchHandled
		}
		navigation = model.IsNavigationKey(ev.Key.Code)
		skipOverlay = model.IsMediaKey(ev.Key.Code) || ev.Key.Code == model.KeyMediaAudioTrack
	case ev.Motion != nil:
		if s.dispatchMotion(ctx, *ev.Motion) {
			return model.DispatchHandled
		}
	default:
		return model.DispatchNotHandled
	}

	s.overlayMu.Lock()
	win := s.window
	s.overlayMu.Unlock()
	if win == nil || !win.IsAttached() || skipOverlay {
		return model.DispatchNotHandled
	}
	if !win.HasWindowFocus() {
		win.RequestWindowFocus()
	}
	if navigation && s.overlay.view != nil && s.overlay.view.HasFocusable() {
		// Focus navigation inside the overlay is handled synchronously.
		win.DispatchInputEvent(ev, nil)
		return model.DispatchHandled
	}
	win.DispatchInputEvent(ev, done)
	return model.DispatchInProgress
}

func (s *Session) dispatchKey(ctx context.Context, key model.KeyEvent) bool {
	h, ok := s.hooks.(KeyHandler)
	if !ok {
		return false
	}
	switch key.Action {
	case model.KeyActionDown:
		if key.LongPress {
			return h.OnKeyLongPress(ctx, key.Code, key)
		}
		return h.OnKeyDown(ctx, key.Code, key)
	case model.KeyActionUp:
		return h.OnKeyUp(ctx, key.Code, key)
	case model.KeyActionMultiple:
		return h.OnKeyMultiple(ctx, key.Code, key.RepeatCount, key)
	}
	return false
}

func (s *Session) dispatchMotion(ctx context.Context, motion model.MotionEvent) bool {
	h, ok := s.hooks.(MotionHandler)
	if !ok {
		return false
	}
	switch motion.Source {
	case model.SourceTouch:
		return h.OnTouchEvent(ctx, motion)
	case model.SourceTrackball:
		return h.OnTrackballEvent(ctx, motion)
	default:
		return h.OnGenericMotionEvent(ctx, motion)
	}
}

// receiveInput drains the input channel until the session is released. Events
// not finished asynchronously by the overlay are finished here.
func (s *Session) receiveInput(ch ports.InputChannel) {
	defer s.markInputDone()
	events := ch.Events()
	for {
		select {
		case <-s.stopInput:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			seq := ev.Seq
			result := s.dispatchInput(context.Background(), ev, func(handled bool) {
				ch.Finish(seq, handled)
			})
			if result != model.DispatchInProgress {
				ch.Finish(seq, result == model.DispatchHandled)
			}
		}
	}
}
