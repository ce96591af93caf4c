// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/domain/session/lifecycle"
	"github.com/ManuGH/tvinput/internal/domain/session/looper"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
)

type callbackRef struct {
	ports.SessionCallback
}

// base is the state shared by playback and recording sessions: identity, the
// delivery gate and the bound callback.
type base struct {
	handle    model.Handle
	inputID   string
	kind      model.SessionKind
	createdAt time.Time

	loop   *looper.Looper
	gate   *lifecycle.Gate
	logger zerolog.Logger

	cb         atomic.Pointer[callbackRef]
	releasing  atomic.Bool
	onReleased func(model.Handle)
}

func newBase(kind model.SessionKind, inputID string, loop *looper.Looper, onReleased func(model.Handle)) base {
	h := model.NewHandle()
	return base{
		handle:    h,
		inputID:   inputID,
		kind:      kind,
		createdAt: time.Now(),
		loop:      loop,
		gate:      lifecycle.NewGate(loop),
		logger: log.WithComponent("session").With().
			Str(log.FieldSessionID, h.String()).
			Str(log.FieldInputID, inputID).
			Str(log.FieldKind, string(kind)).
			Logger(),
		onReleased: onReleased,
	}
}

// Handle returns the session handle.
func (b *base) Handle() model.Handle { return b.handle }

// InputID returns the input the session was created on.
func (b *base) InputID() string { return b.inputID }

// Kind returns the session variant.
func (b *base) Kind() model.SessionKind { return b.kind }

// CreatedAt returns the creation time.
func (b *base) CreatedAt() time.Time { return b.createdAt }

// Phase returns the delivery phase.
func (b *base) Phase() lifecycle.Phase { return b.gate.Phase() }

// Bind attaches the requester callback and flushes notifications queued before
// creation completed.
func (b *base) Bind(cb ports.SessionCallback) error {
	if cb == nil {
		return fmt.Errorf("bind session %s: %w: nil callback", b.handle, ErrInvalidArgument)
	}
	b.cb.Store(&callbackRef{cb})
	if err := b.gate.Bind(); err != nil {
		b.cb.Store(nil)
		return fmt.Errorf("bind session %s: %w", b.handle, err)
	}
	b.logger.Debug().Str(log.FieldEvent, "session.bound").Msg("session callback bound")
	return nil
}

func (b *base) callback() ports.SessionCallback {
	if ref := b.cb.Load(); ref != nil {
		return ref.SessionCallback
	}
	return nil
}

// notify routes one outbound notification through the gate. Delivery errors are
// logged and swallowed: a lost notification does not invalidate the session.
func (b *base) notify(ctx context.Context, name string, deliver func(ctx context.Context, cb ports.SessionCallback) error) {
	b.gate.Dispatch(ctx, name, func(ctx context.Context) {
		cb := b.callback()
		if cb == nil {
			return
		}
		if err := deliver(ctx, cb); err != nil {
			metrics.IncNotificationDeliveryFailure(name)
			b.logger.Warn().
				Err(err).
				Str(log.FieldEvent, "session.delivery_failed").
				Str(log.FieldNotification, name).
				Msg("failed to deliver notification")
			return
		}
		metrics.RecordNotification(name, metrics.DispositionDelivered)
	})
}

// post schedules an inbound operation on the session looper.
func (b *base) post(op string, fn looper.Task) {
	if b.releasing.Load() {
		b.logger.Debug().Str(log.FieldOperation, op).Msg("operation after release dropped")
		return
	}
	if err := b.loop.Post(fn); err != nil {
		b.logger.Debug().Err(err).Str(log.FieldOperation, op).Msg("operation dropped")
	}
}

// beginRelease marks the session as releasing. Only the first caller gets true.
func (b *base) beginRelease() bool {
	return b.releasing.CompareAndSwap(false, true)
}

// runRelease runs fn on the looper, or inline when the looper has already stopped.
func (b *base) runRelease(fn looper.Task) {
	err := b.loop.Post(fn)
	if err == nil {
		return
	}
	if errors.Is(err, looper.ErrQuit) {
		fn(context.Background())
		return
	}
	b.logger.Error().Err(err).Msg("release could not be scheduled")
}

// runAbort runs fn on the looper and waits for it. fn runs inline when called
// from the looper or once the looper has stopped. ctx cancellation does not cut
// the wait short.
func (b *base) runAbort(ctx context.Context, fn looper.Task) {
	var once sync.Once
	run := func(ctx context.Context) { once.Do(func() { fn(ctx) }) }
	if err := b.loop.Call(context.WithoutCancel(ctx), run); err != nil {
		run(context.Background())
	}
}

func (b *base) finishRelease() {
	b.cb.Store(nil)
	b.logger.Info().Str(log.FieldEvent, "session.released").Msg("session released")
	if b.onReleased != nil {
		b.onReleased(b.handle)
	}
}
