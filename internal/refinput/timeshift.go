// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package refinput

import (
	"time"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
)

// timeShiftBuffer models a pause buffer that starts recording at tune time.
// Positions are wall-clock milliseconds. It is only used from the main looper.
type timeShiftBuffer struct {
	now     func() time.Time
	started time.Time
	// lag is how far playback trails live.
	lag      time.Duration
	paused   bool
	pausedAt int64
}

func newTimeShiftBuffer(now func() time.Time) *timeShiftBuffer {
	return &timeShiftBuffer{now: now}
}

func (b *timeShiftBuffer) reset() {
	b.started = b.now()
	b.lag = 0
	b.paused = false
}

func (b *timeShiftBuffer) start() int64 {
	if b.started.IsZero() {
		return model.TimeShiftInvalidTime
	}
	return b.started.UnixMilli()
}

func (b *timeShiftBuffer) current() int64 {
	if b.started.IsZero() {
		return model.TimeShiftInvalidTime
	}
	if b.paused {
		return b.pausedAt
	}
	return b.now().Add(-b.lag).UnixMilli()
}

func (b *timeShiftBuffer) pause() {
	if b.started.IsZero() || b.paused {
		return
	}
	b.pausedAt = b.current()
	b.paused = true
}

func (b *timeShiftBuffer) resume() {
	if !b.paused {
		return
	}
	b.paused = false
	b.lag = time.Duration(b.now().UnixMilli()-b.pausedAt) * time.Millisecond
}

// seekTo moves playback to timeMs, bounded by the buffer start and live.
func (b *timeShiftBuffer) seekTo(timeMs int64) {
	if b.started.IsZero() {
		return
	}
	live := b.now().UnixMilli()
	timeMs = max(b.start(), min(timeMs, live))
	if b.paused {
		b.pausedAt = timeMs
		return
	}
	b.lag = time.Duration(live-timeMs) * time.Millisecond
}
