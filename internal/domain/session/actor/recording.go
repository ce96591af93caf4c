// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"
	"errors"

	"github.com/ManuGH/tvinput/internal/domain/session/looper"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

// RecordingConfig wires a Recording to its looper.
type RecordingConfig struct {
	InputID    string
	Loop       *looper.Looper
	OnReleased func(model.Handle)
}

// Recording is a record-only session actor.
type Recording struct {
	base
	hooks RecordingHooks
}

var _ ports.RecordingSession = (*Recording)(nil)

// NewRecording creates an unbound recording session.
func NewRecording(cfg RecordingConfig) *Recording {
	return &Recording{base: newBase(model.KindRecording, cfg.InputID, cfg.Loop, cfg.OnReleased)}
}

// Attach installs the implementation hooks.
func (r *Recording) Attach(hooks RecordingHooks) error {
	if hooks == nil {
		return ErrInvalidArgument
	}
	if r.hooks != nil {
		return errors.New("recording hooks already attached")
	}
	r.hooks = hooks
	return nil
}

// Tune prepares recording of channelURI.
func (r *Recording) Tune(channelURI string, params model.Bundle) {
	params = params.Clone()
	r.post("tune", func(ctx context.Context) {
		r.hooks.OnTune(ctx, channelURI, params)
	})
}

// StartRecording starts recording on the tuned channel. programURI may be empty.
func (r *Recording) StartRecording(programURI string) {
	r.post("start_recording", func(ctx context.Context) {
		r.hooks.OnStartRecording(ctx, programURI)
	})
}

func (r *Recording) StopRecording() {
	r.post("stop_recording", func(ctx context.Context) {
		r.hooks.OnStopRecording(ctx)
	})
}

func (r *Recording) AppPrivateCommand(action string, data model.Bundle) {
	data = data.Clone()
	r.post("app_private_command", func(ctx context.Context) {
		if h, ok := r.hooks.(PrivateCommandHandler); ok {
			h.OnAppPrivateCommand(ctx, action, data)
		}
	})
}

// Release tears the recording session down.
func (r *Recording) Release() {
	if !r.beginRelease() {
		return
	}
	r.runRelease(func(ctx context.Context) {
		defer func() {
			r.gate.Release()
			r.finishRelease()
		}()
		if r.hooks != nil {
			r.hooks.OnRelease(ctx)
		}
		r.gate.Release()
	})
}

// Abort discards a recording whose creation failed before it was handed out. It
// waits for the OnRelease hook to run on the session looper.
func (r *Recording) Abort(ctx context.Context) {
	if !r.beginRelease() {
		return
	}
	r.runAbort(ctx, func(ctx context.Context) {
		r.gate.Release()
		if r.hooks != nil {
			r.hooks.OnRelease(ctx)
		}
	})
}

// NotifyTuned reports that tuning for recording finished.
func (r *Recording) NotifyTuned(ctx context.Context, channelURI string) {
	r.notify(ctx, NotifyNameTuned, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnTuned(channelURI)
	})
}

// NotifyRecordingStopped reports the URI of the finished recorded program.
func (r *Recording) NotifyRecordingStopped(ctx context.Context, recordedProgramURI string) {
	r.notify(ctx, NotifyNameRecordingStopped, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnRecordingStopped(recordedProgramURI)
	})
}

// NotifyError reports a recording error. Unknown codes are sent as
// RecordingErrorUnknown.
func (r *Recording) NotifyError(ctx context.Context, code model.RecordingError) {
	if !code.Valid() {
		r.logger.Warn().
			Int("code", int(code)).
			Str(log.FieldEvent, "recording.invalid_error_code").
			Msg("invalid recording error code changed to unknown")
		code = model.RecordingErrorUnknown
	}
	r.notify(ctx, NotifyNameError, func(_ context.Context, cb ports.SessionCallback) error {
		return cb.OnError(code)
	})
}
