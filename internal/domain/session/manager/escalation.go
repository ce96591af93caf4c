// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
	"github.com/ManuGH/tvinput/internal/log"
)

var _ watchdog.Escalator = (*Service)(nil)

// Escalate publishes an overlay leak on the bus. Under PolicyExit the process
// is terminated afterwards.
func (s *Service) Escalate(ctx context.Context, fault model.OverlayLeakFault) {
	s.publish(ctx, model.EventOverlayLeak, fault)
	if s.cfg.Policy != watchdog.PolicyExit {
		return
	}
	s.logger.Error().
		Str(log.FieldEvent, "overlay.leak_exit").
		Str(log.FieldSessionID, fault.Handle.String()).
		Msg("overlay leak is fatal under exit policy")
	s.cfg.Exit(1)
}
