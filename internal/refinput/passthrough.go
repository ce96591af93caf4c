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

// passthroughSession wraps a hardware input. Video availability mirrors the
// nested hardware session.
type passthroughSession struct {
	s      *actor.Session
	hwID   string
	logger zerolog.Logger
}

var _ actor.HardwarePassthrough = (*passthroughSession)(nil)

func (p *passthroughSession) HardwareInputID() string { return p.hwID }

func (p *passthroughSession) OnHardwareVideoAvailable(ctx context.Context) {
	p.s.NotifyVideoAvailable(ctx)
}

func (p *passthroughSession) OnHardwareVideoUnavailable(ctx context.Context, reason model.VideoUnavailableReason) {
	p.s.NotifyVideoUnavailable(ctx, reason)
}

func (p *passthroughSession) OnRelease(context.Context) {
	p.logger.Debug().Str(log.FieldHardwareInputID, p.hwID).Msg("passthrough released")
}

func (p *passthroughSession) OnSetSurface(context.Context, ports.Surface) {}
func (p *passthroughSession) OnSetStreamVolume(context.Context, float64)  {}
func (p *passthroughSession) OnSetCaptionEnabled(context.Context, bool)   {}

func (p *passthroughSession) OnTune(_ context.Context, channelURI string, _ model.Bundle) {
	p.logger.Debug().Str(log.FieldChannelURI, channelURI).Msg("passthrough input ignores tune")
}
