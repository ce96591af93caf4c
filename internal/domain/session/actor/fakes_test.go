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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/tvinput/internal/domain/session/looper"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
)

// callTrace is a shared, ordered log of everything the fakes observed.
type callTrace struct {
	mu    sync.Mutex
	lines []string
}

func (tr *callTrace) add(format string, args ...any) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.lines = append(tr.lines, fmt.Sprintf(format, args...))
}

func (tr *callTrace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.lines...)
}

func (tr *callTrace) reset() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.lines = nil
}

func startLoop(t *testing.T) *looper.Looper {
	t.Helper()
	l := looper.New(t.Name())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		// Tests that quit the looper may do so before Run started.
		if err := <-errCh; !errors.Is(err, looper.ErrQuit) {
			require.NoError(t, err)
		}
	})
	return l
}

func flush(t *testing.T, l *looper.Looper) {
	t.Helper()
	require.NoError(t, l.Flush(context.Background()))
}

// fakeCallback records every notification. failing names return errDelivery.
type fakeCallback struct {
	tr      *callTrace
	failing map[string]bool
}

var errDelivery = errors.New("remote end gone")

func (c *fakeCallback) record(name string, format string, args ...any) error {
	c.tr.add("cb:"+name+format, args...)
	if c.failing[name] {
		return errDelivery
	}
	return nil
}

func (c *fakeCallback) OnSessionCreated(s ports.Session, hw model.Handle) error {
	return c.record("session_created", "(%t,%s)", s != nil, hw)
}
func (c *fakeCallback) OnChannelRetuned(uri string) error {
	return c.record("channel_retuned", "(%s)", uri)
}
func (c *fakeCallback) OnTracksChanged(tracks []model.TrackInfo) error {
	return c.record("tracks_changed", "(%d)", len(tracks))
}
func (c *fakeCallback) OnTrackSelected(tt model.TrackType, id string) error {
	return c.record("track_selected", "(%s,%s)", tt, id)
}
func (c *fakeCallback) OnVideoAvailable() error { return c.record("video_available", "") }
func (c *fakeCallback) OnVideoUnavailable(r model.VideoUnavailableReason) error {
	return c.record("video_unavailable", "(%d)", int(r))
}
func (c *fakeCallback) OnContentAllowed() error { return c.record("content_allowed", "") }
func (c *fakeCallback) OnContentBlocked(r model.ContentRating) error {
	return c.record("content_blocked", "(%s)", r.Flatten())
}
func (c *fakeCallback) OnLayoutSurface(l, t, r, b int) error {
	return c.record("layout_surface", "(%d,%d,%d,%d)", l, t, r, b)
}
func (c *fakeCallback) OnSessionEvent(eventType string, _ model.Bundle) error {
	return c.record("session_event", "(%s)", eventType)
}
func (c *fakeCallback) OnTimeShiftStatusChanged(s model.TimeShiftStatus) error {
	return c.record("time_shift_status", "(%s)", s)
}
func (c *fakeCallback) OnTimeShiftStartPositionChanged(ms int64) error {
	return c.record("time_shift_start", "(%d)", ms)
}
func (c *fakeCallback) OnTimeShiftCurrentPositionChanged(ms int64) error {
	return c.record("time_shift_current", "(%d)", ms)
}
func (c *fakeCallback) OnTuned(uri string) error { return c.record("tuned", "(%s)", uri) }
func (c *fakeCallback) OnRecordingStopped(uri string) error {
	return c.record("recording_stopped", "(%s)", uri)
}
func (c *fakeCallback) OnError(code model.RecordingError) error {
	return c.record("error", "(%d)", int(code))
}

// fakeHooks implements Hooks and every optional capability.
type fakeHooks struct {
	tr *callTrace

	// Inline, when set, runs inside OnTune with the looper context.
	onTune func(ctx context.Context)

	view        ports.OverlayView
	keyHandled  bool
	motionReply bool

	start   atomic.Int64
	current atomic.Int64
}

func newFakeHooks(tr *callTrace) *fakeHooks {
	return &fakeHooks{tr: tr}
}

func (h *fakeHooks) OnRelease(context.Context) { h.tr.add("hook:release") }
func (h *fakeHooks) OnSetSurface(_ context.Context, s ports.Surface) {
	h.tr.add("hook:set_surface(%v)", s)
}
func (h *fakeHooks) OnSetStreamVolume(_ context.Context, v float64) {
	h.tr.add("hook:volume(%.1f)", v)
}
func (h *fakeHooks) OnTune(ctx context.Context, uri string, _ model.Bundle) {
	h.tr.add("hook:tune(%s)", uri)
	if h.onTune != nil {
		h.onTune(ctx)
	}
}
func (h *fakeHooks) OnSetCaptionEnabled(_ context.Context, enabled bool) {
	h.tr.add("hook:caption(%t)", enabled)
}
func (h *fakeHooks) OnSetMain(_ context.Context, isMain bool) { h.tr.add("hook:main(%t)", isMain) }
func (h *fakeHooks) OnSurfaceChanged(_ context.Context, f, w, ht int) {
	h.tr.add("hook:surface_changed(%d,%d,%d)", f, w, ht)
}
func (h *fakeHooks) OnSelectTrack(_ context.Context, tt model.TrackType, id string) {
	h.tr.add("hook:select_track(%s,%s)", tt, id)
}
func (h *fakeHooks) OnUnblockContent(_ context.Context, r model.ContentRating) {
	h.tr.add("hook:unblock(%s)", r.Flatten())
}
func (h *fakeHooks) OnAppPrivateCommand(_ context.Context, action string, _ model.Bundle) {
	h.tr.add("hook:private(%s)", action)
}
func (h *fakeHooks) OnCreateOverlayView(context.Context) ports.OverlayView {
	h.tr.add("hook:create_overlay")
	return h.view
}
func (h *fakeHooks) OnOverlayViewSizeChanged(_ context.Context, w, ht int) {
	h.tr.add("hook:overlay_size(%d,%d)", w, ht)
}
func (h *fakeHooks) OnTimeShiftPlay(_ context.Context, uri string) { h.tr.add("hook:ts_play(%s)", uri) }
func (h *fakeHooks) OnTimeShiftPause(context.Context)              { h.tr.add("hook:ts_pause") }
func (h *fakeHooks) OnTimeShiftResume(context.Context)             { h.tr.add("hook:ts_resume") }
func (h *fakeHooks) OnTimeShiftSeekTo(_ context.Context, ms int64) { h.tr.add("hook:ts_seek(%d)", ms) }
func (h *fakeHooks) OnTimeShiftSetPlaybackParams(_ context.Context, p model.PlaybackParams) {
	h.tr.add("hook:ts_params(%.1f)", p.Speed)
}
func (h *fakeHooks) OnTimeShiftGetStartPosition(context.Context) int64   { return h.start.Load() }
func (h *fakeHooks) OnTimeShiftGetCurrentPosition(context.Context) int64 { return h.current.Load() }
func (h *fakeHooks) OnKeyDown(_ context.Context, code model.KeyCode, _ model.KeyEvent) bool {
	h.tr.add("hook:key_down(%d)", code)
	return h.keyHandled
}
func (h *fakeHooks) OnKeyLongPress(_ context.Context, code model.KeyCode, _ model.KeyEvent) bool {
	h.tr.add("hook:key_long(%d)", code)
	return h.keyHandled
}
func (h *fakeHooks) OnKeyMultiple(_ context.Context, code model.KeyCode, n int, _ model.KeyEvent) bool {
	h.tr.add("hook:key_multiple(%d,%d)", code, n)
	return h.keyHandled
}
func (h *fakeHooks) OnKeyUp(_ context.Context, code model.KeyCode, _ model.KeyEvent) bool {
	h.tr.add("hook:key_up(%d)", code)
	return h.keyHandled
}
func (h *fakeHooks) OnTouchEvent(context.Context, model.MotionEvent) bool {
	h.tr.add("hook:touch")
	return h.motionReply
}
func (h *fakeHooks) OnTrackballEvent(context.Context, model.MotionEvent) bool {
	h.tr.add("hook:trackball")
	return h.motionReply
}
func (h *fakeHooks) OnGenericMotionEvent(context.Context, model.MotionEvent) bool {
	h.tr.add("hook:generic_motion")
	return h.motionReply
}

// minimalHooks implements only the required hooks.
type minimalHooks struct{ tr *callTrace }

func (h minimalHooks) OnRelease(context.Context)                           { h.tr.add("hook:release") }
func (h minimalHooks) OnSetSurface(context.Context, ports.Surface)         {}
func (h minimalHooks) OnSetStreamVolume(context.Context, float64)          {}
func (h minimalHooks) OnTune(context.Context, string, model.Bundle)        {}
func (h minimalHooks) OnSetCaptionEnabled(context.Context, bool)           {}

type fakeSurface struct {
	name string
	tr   *callTrace
}

func (s *fakeSurface) Release()       { s.tr.add("surface:release(%s)", s.name) }
func (s *fakeSurface) String() string { return s.name }

type fakeView struct{ focusable bool }

func (v fakeView) HasFocusable() bool { return v.focusable }

// fakeWindows places fakeWindow values. stuck windows never detach.
type fakeWindows struct {
	tr    *callTrace
	stuck bool
	last  *fakeWindow
	mu    sync.Mutex
}

func (m *fakeWindows) AddView(_ context.Context, _ ports.OverlayView, layout model.OverlayLayout) (ports.OverlayWindow, error) {
	m.tr.add("wm:add(%s,%dx%d)", layout.Token, layout.Width, layout.Height)
	w := &fakeWindow{tr: m.tr, stuck: m.stuck}
	w.attached.Store(true)
	m.mu.Lock()
	m.last = w
	m.mu.Unlock()
	return w, nil
}

func (m *fakeWindows) window() *fakeWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

type fakeWindow struct {
	tr       *callTrace
	stuck    bool
	attached atomic.Bool
	focus    atomic.Bool
	// done callbacks of events dispatched asynchronously.
	mu      sync.Mutex
	pending []func(bool)
}

func (w *fakeWindow) IsAttached() bool { return w.attached.Load() }
func (w *fakeWindow) Update(_ context.Context, layout model.OverlayLayout) error {
	w.tr.add("wm:update(%d,%d,%dx%d)", layout.X, layout.Y, layout.Width, layout.Height)
	return nil
}
func (w *fakeWindow) Remove(context.Context) error {
	w.tr.add("wm:remove")
	if !w.stuck {
		w.attached.Store(false)
	}
	return nil
}
func (w *fakeWindow) HasWindowFocus() bool { return w.focus.Load() }
func (w *fakeWindow) RequestWindowFocus() {
	w.tr.add("wm:focus")
	w.focus.Store(true)
}
func (w *fakeWindow) DispatchInputEvent(ev model.InputEvent, done func(bool)) {
	w.tr.add("wm:input(%d,async=%t)", ev.Seq, done != nil)
	if done != nil {
		w.mu.Lock()
		w.pending = append(w.pending, done)
		w.mu.Unlock()
	}
}

func (w *fakeWindow) finishAll(handled bool) {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, done := range pending {
		done(handled)
	}
}

type leakRecorder struct {
	ch chan model.OverlayLeakFault
}

func (r *leakRecorder) Escalate(_ context.Context, f model.OverlayLeakFault) { r.ch <- f }

func newWatchdog(t *testing.T, timeout time.Duration) (*watchdog.Watchdog, *leakRecorder) {
	t.Helper()
	rec := &leakRecorder{ch: make(chan model.OverlayLeakFault, 4)}
	w := watchdog.New(timeout, rec)
	t.Cleanup(w.Close)
	return w, rec
}

type sessionFixture struct {
	loop    *looper.Looper
	tr      *callTrace
	cb      *fakeCallback
	hooks   *fakeHooks
	windows *fakeWindows
	s       *Session
}

func newSessionFixture(t *testing.T, opts ...func(*Config)) *sessionFixture {
	t.Helper()
	tr := &callTrace{}
	f := &sessionFixture{
		loop:    startLoop(t),
		tr:      tr,
		cb:      &fakeCallback{tr: tr, failing: map[string]bool{}},
		hooks:   newFakeHooks(tr),
		windows: &fakeWindows{tr: tr},
	}
	cfg := Config{
		InputID:          "input-1",
		Loop:             f.loop,
		Windows:          f.windows,
		PositionInterval: time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.s = NewSession(cfg)
	require.NoError(t, f.s.Attach(f.hooks))
	return f
}

func (f *sessionFixture) bind(t *testing.T) {
	t.Helper()
	require.NoError(t, f.s.Bind(f.cb))
	flush(t, f.loop)
}
