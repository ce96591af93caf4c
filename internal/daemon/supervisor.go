// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/domain/session/manager"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

// faultSupervisor reacts to overlay leaks reported under the report policy by
// releasing the leaking session. A leak on a session that is already gone
// cannot be recovered and terminates the process.
type faultSupervisor struct {
	sessions SessionRegistry
	exit     func(code int)
	logger   zerolog.Logger
}

func newFaultSupervisor(sessions SessionRegistry, exit func(code int)) *faultSupervisor {
	if exit == nil {
		exit = os.Exit
	}
	return &faultSupervisor{sessions: sessions, exit: exit, logger: log.WithComponent("supervisor")}
}

// Subscribe registers for faults on b. Run must follow.
func (f *faultSupervisor) Subscribe(ctx context.Context, b ports.Bus) (ports.Subscription, error) {
	sub, err := b.Subscribe(ctx, string(model.EventOverlayLeak))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", model.EventOverlayLeak, err)
	}
	return sub, nil
}

// Run consumes faults until ctx ends or the subscription closes.
func (f *faultSupervisor) Run(ctx context.Context, sub ports.Subscription) error {
	defer func() { _ = sub.Close() }()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.C():
			if !ok {
				return nil
			}
			fault, ok := msg.(model.OverlayLeakFault)
			if !ok {
				f.logger.Warn().Str("type", fmt.Sprintf("%T", msg)).Msg("unexpected fault payload")
				continue
			}
			f.handle(fault)
		}
	}
}

func (f *faultSupervisor) handle(fault model.OverlayLeakFault) {
	logger := f.logger.With().Str(log.FieldSessionID, fault.Handle.String()).Logger()
	err := f.sessions.ForceRelease(fault.Handle)
	switch {
	case errors.Is(err, manager.ErrSessionNotFound):
		// Typically a window left attached by Release itself.
		logger.Error().
			Str(log.FieldEvent, "overlay.leak_exit").
			Dur("timeout", fault.Timeout).
			Msg("overlay leaked by a released session")
		f.exit(1)
	case err != nil:
		logger.Error().Err(err).Msg("failed to release leaking session")
	default:
		logger.Warn().
			Str(log.FieldEvent, "overlay.leak_recovered").
			Dur("timeout", fault.Timeout).
			Msg("released session with leaked overlay")
	}
}
