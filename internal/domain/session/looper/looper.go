// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package looper provides a serialized execution context: a single goroutine that
// runs posted tasks one at a time in FIFO order. Sessions share one "main" looper;
// the service dispatcher owns a separate control looper.
package looper

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
)

var (
	// ErrQuit is returned when posting to a looper that has stopped.
	ErrQuit = errors.New("looper has quit")
	// ErrAlreadyRunning is returned by a second concurrent Run.
	ErrAlreadyRunning = errors.New("looper already running")
)

// Task is a unit of work. ctx identifies the looper, so code running inside a task
// can detect it is already on the loop via OnLoop.
type Task func(ctx context.Context)

type loopKey struct{}

type entry struct {
	key any
	fn  Task
}

type delayed struct {
	key   any
	timer *time.Timer
}

// Looper runs tasks serially on one goroutine.
type Looper struct {
	name   string
	logger zerolog.Logger

	mu      sync.Mutex
	queue   []entry
	delayed map[uint64]*delayed
	nextID  uint64
	running bool
	quit    bool

	wake chan struct{}
	done chan struct{}
}

// New creates a stopped looper. Tasks posted before Run are kept and run in order.
func New(name string) *Looper {
	return &Looper{
		name:    name,
		logger:  log.WithComponent("looper").With().Str("looper", name).Logger(),
		delayed: make(map[uint64]*delayed),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Name returns the looper name.
func (l *Looper) Name() string { return l.name }

// Run processes tasks until ctx is cancelled or Quit is called. Pending tasks are
// dropped on exit.
func (l *Looper) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.quit {
		l.mu.Unlock()
		return ErrQuit
	}
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.running = true
	l.mu.Unlock()

	loopCtx := context.WithValue(ctx, loopKey{}, l)
	defer l.shutdown()

	l.logger.Debug().Str(log.FieldEvent, "looper.started").Msg("looper started")
	for {
		if e, ok := l.next(); ok {
			l.runTask(loopCtx, e)
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return nil
		}
		if l.isQuit() {
			return nil
		}
	}
}

// Post appends fn to the queue. It never blocks.
func (l *Looper) Post(fn Task) error {
	return l.PostKeyed(nil, fn)
}

// PostKeyed appends fn tagged with key so RemoveCallbacks can drop it while queued.
func (l *Looper) PostKeyed(key any, fn Task) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quit {
		return ErrQuit
	}
	l.enqueueLocked(entry{key: key, fn: fn})
	return nil
}

// PostDelayed queues fn after d elapses. key must be comparable and non-nil.
func (l *Looper) PostDelayed(key any, d time.Duration, fn Task) error {
	if key == nil {
		return fmt.Errorf("looper %s: delayed task needs a key", l.name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quit {
		return ErrQuit
	}
	l.nextID++
	id := l.nextID
	l.delayed[id] = &delayed{
		key: key,
		timer: time.AfterFunc(d, func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if _, ok := l.delayed[id]; !ok || l.quit {
				return
			}
			delete(l.delayed, id)
			l.enqueueLocked(entry{key: key, fn: fn})
		}),
	}
	return nil
}

// RemoveCallbacks drops queued and delayed tasks posted with key.
func (l *Looper) RemoveCallbacks(key any) {
	if key == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, d := range l.delayed {
		if d.key == key {
			d.timer.Stop()
			delete(l.delayed, id)
		}
	}
	kept := l.queue[:0]
	for _, e := range l.queue {
		if e.key != key {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(l.queue); i++ {
		l.queue[i] = entry{}
	}
	l.queue = kept
}

// OnLoop reports whether ctx belongs to a task running on this looper.
func (l *Looper) OnLoop(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(loopKey{}).(*Looper)
	return owner == l
}

// Call runs fn on the loop and waits for it. It runs inline when already on the loop.
func (l *Looper) Call(ctx context.Context, fn Task) error {
	if l.OnLoop(ctx) {
		fn(ctx)
		return nil
	}
	finished := make(chan struct{})
	if err := l.Post(func(loopCtx context.Context) {
		defer close(finished)
		fn(loopCtx)
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrQuit
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every task posted before the call has run.
func (l *Looper) Flush(ctx context.Context) error {
	return l.Call(ctx, func(context.Context) {})
}

// Quit stops the loop after the current task. Pending tasks are dropped.
func (l *Looper) Quit() {
	l.mu.Lock()
	if l.quit {
		l.mu.Unlock()
		return
	}
	l.quit = true
	started := l.running
	l.mu.Unlock()
	if started {
		l.signal()
		return
	}
	l.shutdown()
}

// Done is closed once the looper stopped.
func (l *Looper) Done() <-chan struct{} { return l.done }

// Len returns the number of queued tasks.
func (l *Looper) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Looper) enqueueLocked(e entry) {
	l.queue = append(l.queue, e)
	metrics.SetLooperQueueDepth(l.name, len(l.queue))
	l.signal()
}

func (l *Looper) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) next() (entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quit || len(l.queue) == 0 {
		return entry{}, false
	}
	e := l.queue[0]
	l.queue[0] = entry{}
	l.queue = l.queue[1:]
	metrics.SetLooperQueueDepth(l.name, len(l.queue))
	return e, true
}

func (l *Looper) isQuit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quit
}

func (l *Looper) runTask(ctx context.Context, e entry) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncLooperPanic(l.name)
			l.logger.Error().
				Str(log.FieldEvent, "looper.task_panic").
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("task panicked; loop continues")
		}
	}()
	e.fn(ctx)
}

func (l *Looper) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.done:
		return
	default:
	}
	l.quit = true
	for id, d := range l.delayed {
		d.timer.Stop()
		delete(l.delayed, id)
	}
	dropped := len(l.queue)
	l.queue = nil
	metrics.SetLooperQueueDepth(l.name, 0)
	close(l.done)
	l.logger.Debug().Str(log.FieldEvent, "looper.stopped").Int("dropped", dropped).Msg("looper stopped")
}
