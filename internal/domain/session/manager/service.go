// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package manager implements the service dispatcher: it serializes creation
// requests and topology changes onto a control looper, builds session actors from
// host implementations and tracks them until release.
package manager

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/tvinput/internal/domain/session/looper"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/metrics"
	"github.com/ManuGH/tvinput/internal/resilience"
	"github.com/ManuGH/tvinput/internal/telemetry"
)

const (
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultBreakerThreshold = 3
	DefaultBreakerReset     = 30 * time.Second
)

// Config wires a Service to its collaborators. Host is required.
type Config struct {
	Host          Host
	RecordingHost RecordingHost
	Hardware      HardwareResolver
	Hdmi          HdmiResolver

	// Inputs is the upstream manager used for passthrough sessions.
	Inputs  ports.InputManager
	Windows ports.WindowManager
	Bus     ports.Bus

	OverlayTimeout   time.Duration
	PositionInterval time.Duration
	Policy           watchdog.Policy
	ShutdownTimeout  time.Duration

	BreakerThreshold int
	BreakerReset     time.Duration

	// Exit terminates the process under PolicyExit. Defaults to os.Exit.
	Exit   func(code int)
	Tracer trace.Tracer
}

// SessionInfo describes a live session.
type SessionInfo struct {
	Handle          model.Handle      `json:"handle"`
	HardwareSession model.Handle      `json:"hardware_session,omitempty"`
	InputID         string            `json:"input_id"`
	Kind            model.SessionKind `json:"kind"`
	CreatedAt       time.Time         `json:"created_at"`
}

type releaser interface {
	Release()
}

type sessionEntry struct {
	info SessionInfo
	sess releaser
}

// Service is the dispatcher. All inbound requests are asynchronous: results reach
// the requester through its callback.
type Service struct {
	cfg      Config
	control  *looper.Looper
	main     *looper.Looper
	watchdog *watchdog.Watchdog
	breaker  *resilience.CircuitBreaker
	tracer   trace.Tracer
	logger   zerolog.Logger

	workers workerRegistry
	// workCtx is cancelled when Run returns; nested creations use it.
	workCtx context.Context

	// observers is only touched on the control looper.
	observers []ports.ServiceObserver

	mu       sync.Mutex
	sessions map[model.Handle]sessionEntry
}

// New validates cfg and builds a stopped service.
func New(cfg Config) (*Service, error) {
	if cfg.Host == nil {
		return nil, ErrNoHost
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = DefaultBreakerThreshold
	}
	if cfg.BreakerReset <= 0 {
		cfg.BreakerReset = DefaultBreakerReset
	}
	if cfg.Policy == "" {
		cfg.Policy = watchdog.PolicyExit
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.Tracer("tvinput/manager")
	}

	s := &Service{
		cfg:     cfg,
		control: looper.New("control"),
		main:    looper.New("main"),
		breaker: resilience.NewCircuitBreaker("upstream", cfg.BreakerThreshold, cfg.BreakerReset,
			resilience.WithIgnoredErrors(resilience.IgnoreContextErrors)),
		tracer:   cfg.Tracer,
		logger:   log.WithComponent("dispatcher"),
		workCtx:  context.Background(),
		sessions: make(map[model.Handle]sessionEntry),
	}
	s.watchdog = watchdog.New(cfg.OverlayTimeout, s)
	return s, nil
}

// Run drives both loopers until ctx is cancelled, then joins background workers
// and releases every live session.
func (s *Service) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.workCtx = runCtx

	s.logger.Info().
		Str(log.FieldEvent, "dispatcher.started").
		Str("policy", string(s.cfg.Policy)).
		Dur("overlay_timeout", s.watchdog.Timeout()).
		Msg("session service started")

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return s.control.Run(gctx) })
	g.Go(func() error { return s.main.Run(gctx) })
	err := g.Wait()

	cancel()
	s.shutdown()
	return err
}

func (s *Service) shutdown() {
	s.control.Quit()
	s.main.Quit()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.workers.CloseAndWait(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("background workers did not finish")
	}

	live := s.liveSessions()
	for _, e := range live {
		e.sess.Release()
	}
	s.watchdog.Close()
	s.logger.Info().
		Str(log.FieldEvent, "dispatcher.stopped").
		Int("released", len(live)).
		Msg("session service stopped")
}

// Sessions lists live sessions ordered by creation time.
func (s *Service) Sessions() []SessionInfo {
	live := s.liveSessions()
	out := make([]SessionInfo, 0, len(live))
	for _, e := range live {
		out = append(out, e.info)
	}
	return out
}

// ForceRelease releases a live session on behalf of the host.
func (s *Service) ForceRelease(handle model.Handle) error {
	s.mu.Lock()
	e, ok := s.sessions[handle]
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.logger.Warn().
		Str(log.FieldEvent, "session.force_release").
		Str(log.FieldSessionID, handle.String()).
		Msg("releasing session on behalf of the host")
	e.sess.Release()
	return nil
}

// Flush waits until requests issued before the call were processed by the
// control looper and the work they posted to the main looper ran.
func (s *Service) Flush(ctx context.Context) error {
	if err := s.control.Flush(ctx); err != nil {
		return err
	}
	return s.main.Flush(ctx)
}

func (s *Service) liveSessions() []sessionEntry {
	s.mu.Lock()
	out := make([]sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		out = append(out, e)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].info.CreatedAt.Before(out[j].info.CreatedAt)
	})
	return out
}

func (s *Service) register(info SessionInfo, sess releaser) {
	s.mu.Lock()
	s.sessions[info.Handle] = sessionEntry{info: info, sess: sess}
	n := s.countLocked(info.Kind)
	s.mu.Unlock()
	metrics.SetSessionsActive(string(info.Kind), n)
}

// onReleased runs once per session when its teardown finished.
func (s *Service) onReleased(handle model.Handle) {
	s.mu.Lock()
	e, ok := s.sessions[handle]
	delete(s.sessions, handle)
	n := 0
	if ok {
		n = s.countLocked(e.info.Kind)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	metrics.SetSessionsActive(string(e.info.Kind), n)
	s.publish(context.Background(), model.EventSessionReleased, model.SessionReleasedEvent{
		Handle: handle,
		At:     time.Now(),
	})
}

func (s *Service) countLocked(kind model.SessionKind) int {
	n := 0
	for _, e := range s.sessions {
		if e.info.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Service) publish(ctx context.Context, topic model.EventType, event any) {
	if s.cfg.Bus == nil {
		return
	}
	if err := s.cfg.Bus.Publish(ctx, string(topic), event); err != nil {
		s.logger.Debug().Err(err).Str("topic", string(topic)).Msg("bus publish failed")
	}
}

// postControl serializes fn onto the control looper.
func (s *Service) postControl(op string, fn looper.Task) bool {
	if err := s.control.Post(fn); err != nil {
		s.logger.Warn().Err(err).Str(log.FieldOperation, op).Msg("request dropped: service stopped")
		return false
	}
	return true
}
