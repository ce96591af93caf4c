// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
)

// clampWarnEvery bounds how often a misbehaving implementation can log the
// "current before start" warning.
const clampWarnEvery = 10 * time.Second

// positionTracker samples time-shift positions while the status is available.
// It is looper-confined and re-arms itself only after a sample completed.
type positionTracker struct {
	s        *Session
	interval time.Duration
	enabled  bool
	start    int64
	current  int64
	warn     *rate.Limiter
}

func newPositionTracker(s *Session, interval time.Duration) positionTracker {
	return positionTracker{
		s:        s,
		interval: interval,
		start:    model.TimeShiftInvalidTime,
		current:  model.TimeShiftInvalidTime,
		warn:     rate.NewLimiter(rate.Every(clampWarnEvery), 1),
	}
}

// key identifies the tracker's looper tasks.
func (t *positionTracker) key() any { return t }

// enable posts the first sample, so the status notification that enabled
// tracking is delivered before any position.
func (t *positionTracker) enable() {
	if _, ok := t.s.hooks.(TimeShifter); !ok {
		return
	}
	t.enabled = true
	t.s.loop.RemoveCallbacks(t.key())
	if err := t.s.loop.PostKeyed(t.key(), t.sample); err != nil {
		t.s.logger.Debug().Err(err).Msg("position tracking not started")
	}
}

func (t *positionTracker) disable() {
	t.enabled = false
	t.s.loop.RemoveCallbacks(t.key())
	t.start = model.TimeShiftInvalidTime
	t.current = model.TimeShiftInvalidTime
}

func (t *positionTracker) sample(ctx context.Context) {
	if !t.enabled {
		return
	}
	shifter, ok := t.s.hooks.(TimeShifter)
	if !ok {
		return
	}

	start := shifter.OnTimeShiftGetStartPosition(ctx)
	if t.start == model.TimeShiftInvalidTime || t.start != start {
		t.start = start
		t.s.notifyTimeShiftStartPosition(ctx, start)
	}

	current := shifter.OnTimeShiftGetCurrentPosition(ctx)
	if current < t.start {
		metrics.IncTimeShiftClamp()
		if t.warn.Allow() {
			t.s.logger.Warn().
				Str(log.FieldEvent, "timeshift.position_clamped").
				Int64("current_ms", current).
				Int64("start_ms", t.start).
				Msg("current position cannot be earlier than start position; reset to start")
		}
		current = t.start
	}
	if t.current == model.TimeShiftInvalidTime || t.current != current {
		t.current = current
		t.s.notifyTimeShiftCurrentPosition(ctx, current)
	}

	if !t.enabled {
		return
	}
	t.s.loop.RemoveCallbacks(t.key())
	if err := t.s.loop.PostDelayed(t.key(), t.interval, t.sample); err != nil {
		t.s.logger.Debug().Err(err).Msg("position tracking stopped")
	}
}
