// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package watchdog supervises overlay teardown. Every overlay removal starts a
// bounded wait; if the overlay window is still attached when the bound expires,
// the leak is escalated exactly once.
package watchdog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
)

// DefaultTimeout is the overlay detach bound.
const DefaultTimeout = 5 * time.Second

type clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Window is the overlay window being torn down.
type Window interface {
	IsAttached() bool
}

// Escalator acts on a detected overlay leak.
type Escalator interface {
	Escalate(ctx context.Context, fault model.OverlayLeakFault)
}

// EscalatorFunc adapts a function to Escalator.
type EscalatorFunc func(ctx context.Context, fault model.OverlayLeakFault)

func (f EscalatorFunc) Escalate(ctx context.Context, fault model.OverlayLeakFault) { f(ctx, fault) }

// Policy selects the remedial action taken by the host on escalation.
type Policy string

const (
	// PolicyReport publishes a supervisory fault and keeps the process alive.
	PolicyReport Policy = "report"
	// PolicyExit terminates the process after reporting.
	PolicyExit Policy = "exit"
)

// ParsePolicy validates a configured escalation policy. Empty means exit.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyReport:
		return PolicyReport, nil
	case "", PolicyExit:
		return PolicyExit, nil
	default:
		return "", fmt.Errorf("unknown escalation policy %q (want report or exit)", s)
	}
}

// Watchdog starts one Task per overlay removal.
type Watchdog struct {
	timeout time.Duration
	esc     Escalator
	clock   clock
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Watchdog.
type Option func(*Watchdog)

func withClock(c clock) Option {
	return func(w *Watchdog) { w.clock = c }
}

// New creates a watchdog. A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, esc Escalator, opts ...Option) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watchdog{
		timeout: timeout,
		esc:     esc,
		clock:   realClock{},
		logger:  log.WithComponent("overlay_watchdog"),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Timeout returns the detach bound.
func (w *Watchdog) Timeout() time.Duration { return w.timeout }

// Start begins a bounded wait for win to detach. It never blocks the caller.
func (w *Watchdog) Start(handle model.Handle, win Window) *Task {
	t := &Task{
		handle: handle,
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	if win == nil {
		close(t.done)
		return t
	}

	metrics.RecordOverlayWatchdog("started")
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(t.done)
		w.wait(t, win)
	}()
	return t
}

func (w *Watchdog) wait(t *Task, win Window) {
	select {
	case <-t.cancel:
		return
	case <-w.ctx.Done():
		return
	case <-w.clock.After(w.timeout):
	}

	// Cancel racing with expiry wins.
	select {
	case <-t.cancel:
		return
	default:
	}

	if !win.IsAttached() {
		w.logger.Debug().
			Str(log.FieldEvent, "overlay.detached").
			Str(log.FieldSessionID, t.handle.String()).
			Msg("overlay detached within bound")
		return
	}

	t.escalated = true
	fault := model.OverlayLeakFault{
		Handle:  t.handle,
		Timeout: w.timeout,
		At:      w.clock.Now(),
	}
	metrics.RecordOverlayWatchdog("escalated")
	w.logger.Error().
		Str(log.FieldEvent, "overlay.leak").
		Str(log.FieldSessionID, t.handle.String()).
		Dur("timeout", w.timeout).
		Msg("overlay view was not detached in time")
	if w.esc != nil {
		w.esc.Escalate(w.ctx, fault)
	}
}

// Close stops every pending wait without escalating and waits for them to exit.
func (w *Watchdog) Close() {
	w.cancel()
	w.wg.Wait()
}

// Task is one pending overlay detach wait.
type Task struct {
	handle    model.Handle
	once      sync.Once
	cancel    chan struct{}
	done      chan struct{}
	escalated bool // written before done is closed
}

// Cancel supersedes the wait. It is safe to call more than once and on nil.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		close(t.cancel)
		select {
		case <-t.done:
		default:
			metrics.RecordOverlayWatchdog("cancelled")
		}
	})
}

// Done is closed once the wait finished, by expiry or cancellation.
func (t *Task) Done() <-chan struct{} { return t.done }

// Escalated reports whether the task escalated. Valid after Done is closed.
func (t *Task) Escalated() bool {
	select {
	case <-t.done:
		return t.escalated
	default:
		return false
	}
}
