// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"context"
	"sync"

	"github.com/ManuGH/tvinput/internal/domain/session/looper"
	"github.com/ManuGH/tvinput/internal/metrics"
)

// Executor is the serialized context notifications are delivered on.
type Executor interface {
	Post(fn looper.Task) error
	OnLoop(ctx context.Context) bool
}

// Disposition is what Dispatch did with a notification.
type Disposition string

const (
	Queued  Disposition = metrics.DispositionQueued
	Inline  Disposition = metrics.DispositionInline
	Posted  Disposition = metrics.DispositionPosted
	Dropped Disposition = metrics.DispositionDropped
)

type pending struct {
	name string
	fn   looper.Task
}

// Gate applies the delivery rule for one session:
//   - Unbound: the notification is appended to the pending queue.
//   - Bound: it runs inline when already on the executor, otherwise it is posted.
//   - Released: it is dropped.
//
// Posted work re-checks the phase when it runs, so nothing reaches a callback
// after Release.
type Gate struct {
	exec Executor

	mu       sync.Mutex
	phase    Phase
	queue    []pending
	draining bool // a drained batch is posted but has not run yet
}

// NewGate returns an unbound gate delivering on exec.
func NewGate(exec Executor) *Gate {
	return &Gate{exec: exec, phase: PhaseUnbound}
}

// Phase returns the current phase.
func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Pending returns the number of queued notifications.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Dispatch routes fn according to the current phase.
func (g *Gate) Dispatch(ctx context.Context, name string, fn looper.Task) Disposition {
	g.mu.Lock()
	switch g.phase {
	case PhaseUnbound:
		g.queue = append(g.queue, pending{name: name, fn: fn})
		g.mu.Unlock()
		return g.record(name, Queued)
	case PhaseReleased:
		g.mu.Unlock()
		return g.record(name, Dropped)
	}

	// A drained batch must run before anything dispatched after Bind.
	if !g.draining && g.exec.OnLoop(ctx) {
		g.mu.Unlock()
		fn(ctx)
		return g.record(name, Inline)
	}
	err := g.exec.Post(g.guard(name, fn))
	g.mu.Unlock()
	if err != nil {
		return g.record(name, Dropped)
	}
	return g.record(name, Posted)
}

// Bind moves the gate to Bound and posts the drained queue as a single task.
// Both happen under the gate lock, so no notification can interleave between
// the drain and the phase change.
func (g *Gate) Bind() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseReleased {
		return ErrReleased
	}
	tr, ok := TransitionFor(g.phase, EvBind)
	if !ok {
		return illegalTransition(g.phase, EvBind)
	}
	g.phase = tr.To

	batch := g.queue
	g.queue = nil
	g.draining = true
	err := g.exec.Post(func(ctx context.Context) {
		g.mu.Lock()
		g.draining = false
		g.mu.Unlock()
		for _, p := range batch {
			if g.Phase() == PhaseReleased {
				g.record(p.name, Dropped)
				continue
			}
			p.fn(ctx)
		}
	})
	if err != nil {
		g.draining = false
		return err
	}
	return nil
}

// Release moves the gate to Released and discards the pending queue. It reports
// whether this call performed the transition.
func (g *Gate) Release() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	tr, ok := TransitionFor(g.phase, EvRelease)
	if !ok {
		return false
	}
	g.phase = tr.To
	for _, p := range g.queue {
		metrics.RecordNotification(p.name, metrics.DispositionDropped)
	}
	g.queue = nil
	return true
}

func (g *Gate) guard(name string, fn looper.Task) looper.Task {
	return func(ctx context.Context) {
		if g.Phase() == PhaseReleased {
			g.record(name, Dropped)
			return
		}
		fn(ctx)
	}
}

func (g *Gate) record(name string, d Disposition) Disposition {
	metrics.RecordNotification(name, string(d))
	return d
}
