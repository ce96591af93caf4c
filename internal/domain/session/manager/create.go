// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
	"github.com/ManuGH/tvinput/internal/telemetry"
)

// CreateSession asynchronously creates a playback session on inputID. The result
// is delivered through cb.OnSessionCreated; a nil session means creation failed.
func (s *Service) CreateSession(ch ports.InputChannel, cb ports.SessionCallback, inputID string) {
	if cb == nil {
		s.logger.Warn().Str(log.FieldInputID, inputID).Msg("create session without callback ignored")
		return
	}
	if ch == nil {
		s.logger.Warn().Str(log.FieldInputID, inputID).Msg("create session without input channel")
	}
	s.postControl("create_session", func(ctx context.Context) {
		s.createSession(ctx, ch, cb, inputID)
	})
}

// CreateRecordingSession asynchronously creates a record-only session on inputID.
func (s *Service) CreateRecordingSession(cb ports.SessionCallback, inputID string) {
	if cb == nil {
		s.logger.Warn().Str(log.FieldInputID, inputID).Msg("create recording session without callback ignored")
		return
	}
	s.postControl("create_recording_session", func(ctx context.Context) {
		s.createRecordingSession(ctx, cb, inputID)
	})
}

func (s *Service) createSession(ctx context.Context, ch ports.InputChannel, cb ports.SessionCallback, inputID string) {
	ctx, span := s.tracer.Start(ctx, "session.create",
		trace.WithAttributes(telemetry.SessionAttributes(inputID, string(model.KindTv))...))

	sess := actor.NewSession(actor.Config{
		InputID:          inputID,
		Loop:             s.main,
		Watchdog:         s.watchdog,
		Windows:          s.cfg.Windows,
		Input:            ch,
		PositionInterval: s.cfg.PositionInterval,
		OnReleased:       s.onReleased,
	})
	hooks := s.cfg.Host.OnCreateSession(ctx, inputID, sess)
	if hooks == nil {
		sess.Abort(ctx)
		s.fail(ctx, span, cb, inputID, model.KindTv, reasonNoImplementation)
		return
	}
	if err := sess.Attach(hooks); err != nil {
		s.logger.Error().Err(err).Str(log.FieldInputID, inputID).Msg("session hooks rejected")
		sess.Abort(ctx)
		s.fail(ctx, span, cb, inputID, model.KindTv, reasonAttach)
		return
	}

	hwID, passthrough := sess.HardwareInputID()
	if !passthrough {
		s.complete(ctx, span, cb, sess, model.NoHandle)
		return
	}
	span.SetAttributes(telemetry.HardwareAttributes(hwID)...)

	if reason := s.checkHardwareInput(ctx, hwID); reason != "" {
		s.logger.Warn().
			Str(log.FieldInputID, inputID).
			Str(log.FieldHardwareInputID, hwID).
			Str(log.FieldReason, reason).
			Msg("hardware passthrough session rejected")
		sess.Abort(ctx)
		s.fail(ctx, span, cb, sess.InputID(), model.KindPassthrough, reason)
		return
	}

	// The upstream call may block; it runs off the control looper and reports
	// back to it.
	started := s.workers.Go(func() {
		nested, err := s.createNested(hwID, sess.HardwareEvents())
		posted := s.postControl("hardware_session_created", func(ctx context.Context) {
			s.completeHardware(ctx, span, cb, sess, nested, err)
		})
		if !posted {
			if nested != nil {
				nested.Release()
			}
			sess.Abort(context.Background())
			s.fail(context.Background(), span, cb, sess.InputID(), model.KindPassthrough, reasonShutdown)
		}
	})
	if !started {
		sess.Abort(ctx)
		s.fail(ctx, span, cb, sess.InputID(), model.KindPassthrough, reasonShutdown)
	}
}

// checkHardwareInput returns a failure reason, or "" when hwID can back a
// passthrough session.
func (s *Service) checkHardwareInput(ctx context.Context, hwID string) string {
	if hwID == "" {
		return reasonNoHardwareInput
	}
	if s.cfg.Inputs == nil {
		return reasonUnsupported
	}
	info, ok := s.cfg.Inputs.InputInfo(ctx, hwID)
	if !ok {
		return reasonUnknownInput
	}
	if !info.Passthrough {
		return reasonNotPassthrough
	}
	return ""
}

func (s *Service) createNested(hwID string, events ports.HardwareSessionEvents) (ports.HardwareSession, error) {
	var nested ports.HardwareSession
	err := s.breaker.Execute(func() error {
		var err error
		nested, err = s.cfg.Inputs.CreateSession(s.workCtx, hwID, events)
		if err == nil && nested == nil {
			err = ErrNoNestedSession
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create hardware session on %s: %w", hwID, err)
	}
	return nested, nil
}

func (s *Service) completeHardware(ctx context.Context, span trace.Span, cb ports.SessionCallback, sess *actor.Session, nested ports.HardwareSession, err error) {
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str(log.FieldSessionID, sess.Handle().String()).
			Str(log.FieldInputID, sess.InputID()).
			Msg("hardware session could not be created")
		span.RecordError(err)
		span.SetAttributes(telemetry.ErrorAttributes(err, reasonUpstream)...)
		sess.Abort(ctx)
		s.fail(ctx, span, cb, sess.InputID(), model.KindPassthrough, reasonUpstream)
		return
	}
	if err := sess.AttachHardwareSession(nested); err != nil {
		sess.Abort(ctx)
		s.fail(ctx, span, cb, sess.InputID(), model.KindPassthrough, reasonShutdown)
		return
	}
	s.complete(ctx, span, cb, sess, nested.Token())
}

// complete hands a session to its requester and binds it. A failed delivery of the
// creation result does not undo the session.
func (s *Service) complete(ctx context.Context, span trace.Span, cb ports.SessionCallback, sess *actor.Session, hw model.Handle) {
	defer span.End()
	info := SessionInfo{
		Handle:          sess.Handle(),
		HardwareSession: hw,
		InputID:         sess.InputID(),
		Kind:            sess.Kind(),
		CreatedAt:       sess.CreatedAt(),
	}
	s.register(info, sess)
	s.deliverCreated(cb, sess, hw, info.InputID)
	if err := sess.Bind(cb); err != nil {
		s.logger.Error().Err(err).Str(log.FieldSessionID, info.Handle.String()).Msg("session bind failed")
	}
	s.created(ctx, info)
}

func (s *Service) createRecordingSession(ctx context.Context, cb ports.SessionCallback, inputID string) {
	ctx, span := s.tracer.Start(ctx, "session.create_recording",
		trace.WithAttributes(telemetry.SessionAttributes(inputID, string(model.KindRecording))...))

	if s.cfg.RecordingHost == nil {
		s.fail(ctx, span, cb, inputID, model.KindRecording, reasonUnsupported)
		return
	}
	rec := actor.NewRecording(actor.RecordingConfig{
		InputID:    inputID,
		Loop:       s.main,
		OnReleased: s.onReleased,
	})
	hooks := s.cfg.RecordingHost.OnCreateRecordingSession(ctx, inputID, rec)
	if hooks == nil {
		rec.Abort(ctx)
		s.fail(ctx, span, cb, inputID, model.KindRecording, reasonNoImplementation)
		return
	}
	if err := rec.Attach(hooks); err != nil {
		rec.Abort(ctx)
		s.fail(ctx, span, cb, inputID, model.KindRecording, reasonAttach)
		return
	}

	defer span.End()
	info := SessionInfo{
		Handle:    rec.Handle(),
		InputID:   inputID,
		Kind:      model.KindRecording,
		CreatedAt: rec.CreatedAt(),
	}
	s.register(info, rec)
	s.deliverCreated(cb, rec, model.NoHandle, inputID)
	if err := rec.Bind(cb); err != nil {
		s.logger.Error().Err(err).Str(log.FieldSessionID, info.Handle.String()).Msg("recording session bind failed")
	}
	s.created(ctx, info)
}

func (s *Service) deliverCreated(cb ports.SessionCallback, sess ports.Session, hw model.Handle, inputID string) {
	if err := cb.OnSessionCreated(sess, hw); err != nil {
		metrics.IncNotificationDeliveryFailure("session_created")
		s.logger.Warn().
			Err(err).
			Str(log.FieldInputID, inputID).
			Str(log.FieldEvent, "session.delivery_failed").
			Msg("failed to deliver creation result")
	}
}

func (s *Service) created(ctx context.Context, info SessionInfo) {
	metrics.RecordSessionCreate(string(info.Kind), "created")
	s.logger.Info().
		Str(log.FieldEvent, "session.created").
		Str(log.FieldSessionID, info.Handle.String()).
		Str(log.FieldInputID, info.InputID).
		Str(log.FieldKind, string(info.Kind)).
		Str(log.FieldHardwareSession, info.HardwareSession.String()).
		Msg("session created")
	s.publish(ctx, model.EventSessionCreated, model.SessionCreatedEvent{
		Handle:          info.Handle,
		HardwareSession: info.HardwareSession,
		InputID:         info.InputID,
		Kind:            info.Kind,
		At:              info.CreatedAt,
	})
}

// fail reports a creation failure to the requester as a nil session.
func (s *Service) fail(ctx context.Context, span trace.Span, cb ports.SessionCallback, inputID string, kind model.SessionKind, reason string) {
	defer span.End()
	span.SetStatus(codes.Error, reason)
	metrics.RecordSessionCreate(string(kind), "failed")
	s.logger.Warn().
		Str(log.FieldEvent, "session.create_failed").
		Str(log.FieldInputID, inputID).
		Str(log.FieldKind, string(kind)).
		Str(log.FieldReason, reason).
		Msg("session creation failed")
	s.deliverCreated(cb, nil, model.NoHandle, inputID)
	s.publish(ctx, model.EventSessionFailed, model.SessionFailedEvent{
		InputID: inputID,
		Kind:    kind,
		Reason:  reason,
		At:      time.Now(),
	})
}
