// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

type nestedRef struct {
	ports.HardwareSession
}

// hardwareBridge holds the nested session a passthrough session proxies and
// forwards its video availability to the implementation.
type hardwareBridge struct {
	s      *Session
	hooks  HardwarePassthrough
	nested atomic.Pointer[nestedRef]
}

var _ ports.HardwareSessionEvents = (*hardwareBridge)(nil)

func newHardwareBridge(s *Session, hooks HardwarePassthrough) *hardwareBridge {
	return &hardwareBridge{s: s, hooks: hooks}
}

func (b *hardwareBridge) current() ports.HardwareSession {
	if ref := b.nested.Load(); ref != nil {
		return ref.HardwareSession
	}
	return nil
}

func (b *hardwareBridge) OnVideoAvailable(session ports.HardwareSession) {
	if session == nil || b.current() != session {
		return
	}
	b.s.post("hardware_video_available", func(ctx context.Context) {
		b.hooks.OnHardwareVideoAvailable(ctx)
	})
}

func (b *hardwareBridge) OnVideoUnavailable(session ports.HardwareSession, reason model.VideoUnavailableReason) {
	if session == nil || b.current() != session {
		return
	}
	b.s.post("hardware_video_unavailable", func(ctx context.Context) {
		b.hooks.OnHardwareVideoUnavailable(ctx, reason)
	})
}

func (b *hardwareBridge) release() {
	ref := b.nested.Swap(nil)
	if ref == nil {
		return
	}
	ref.Release()
	b.s.logger.Debug().
		Str(log.FieldHardwareSession, ref.Token().String()).
		Msg("nested hardware session released")
}

// HardwareInputID returns the hardware input a passthrough session proxies.
func (s *Session) HardwareInputID() (string, bool) {
	if s.hw == nil {
		return "", false
	}
	return s.hw.hooks.HardwareInputID(), true
}

// HardwareEvents returns the receiver to register when creating the nested session.
func (s *Session) HardwareEvents() ports.HardwareSessionEvents {
	if s.hw == nil {
		return nil
	}
	return s.hw
}

// AttachHardwareSession hands the nested session to the bridge and tunes it to the
// passthrough channel of the hardware input. A session released in the meantime
// releases the nested session immediately.
func (s *Session) AttachHardwareSession(nested ports.HardwareSession) error {
	if s.hw == nil {
		return ErrNotPassthrough
	}
	if nested == nil {
		return fmt.Errorf("attach hardware session: %w: nil session", ErrInvalidArgument)
	}
	if s.releasing.Load() {
		nested.Release()
		return ErrReleased
	}
	hwID := s.hw.hooks.HardwareInputID()
	s.hw.nested.Store(&nestedRef{nested})
	nested.Tune(model.PassthroughChannelURI(hwID), nil)
	s.logger.Info().
		Str(log.FieldEvent, "session.hardware_attached").
		Str(log.FieldHardwareInputID, hwID).
		Str(log.FieldHardwareSession, nested.Token().String()).
		Msg("nested hardware session attached")

	// Release may have raced with the store above.
	if s.releasing.Load() {
		s.hw.release()
		return ErrReleased
	}
	return nil
}
