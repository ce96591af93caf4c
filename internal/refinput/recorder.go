// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package refinput

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/log"
)

const recordedProgramPrefix = "content://tvinput/recorded/"

// recorder is a synthetic record-only session. Recording requires a prior tune.
type recorder struct {
	r       *actor.Recording
	inputID string
	logger  zerolog.Logger

	channel   string
	program   string
	recording bool
	seq       int
}

var _ actor.RecordingHooks = (*recorder)(nil)

func (c *recorder) OnTune(ctx context.Context, channelURI string, _ model.Bundle) {
	if c.recording {
		c.r.NotifyError(ctx, model.RecordingErrorResourceBusy)
		return
	}
	c.channel = channelURI
	c.r.NotifyTuned(ctx, channelURI)
}

func (c *recorder) OnStartRecording(ctx context.Context, programURI string) {
	switch {
	case c.channel == "":
		c.logger.Warn().Msg("start recording before tune")
		c.r.NotifyError(ctx, model.RecordingErrorUnknown)
		return
	case c.recording:
		c.r.NotifyError(ctx, model.RecordingErrorResourceBusy)
		return
	}
	c.recording = true
	c.program = programURI
	c.logger.Info().
		Str(log.FieldChannelURI, c.channel).
		Str("program", programURI).
		Msg("recording started")
}

func (c *recorder) OnStopRecording(ctx context.Context) {
	if !c.recording {
		return
	}
	c.recording = false
	c.seq++
	uri := fmt.Sprintf("%s%s/%d", recordedProgramPrefix, url.PathEscape(c.inputID), c.seq)
	c.logger.Info().Str("recorded", uri).Msg("recording stopped")
	c.r.NotifyRecordingStopped(ctx, uri)
}

func (c *recorder) OnRelease(context.Context) {
	if c.recording {
		c.logger.Warn().Str("program", c.program).Msg("recording discarded on release")
	}
}
