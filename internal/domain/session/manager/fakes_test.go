// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
)

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

func (tr *callTrace) len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.lines)
}

// recordingCallback logs the notifications a requester receives.
type recordingCallback struct {
	tr *callTrace

	mu      sync.Mutex
	session ports.Session
}

func (c *recordingCallback) created() ports.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *recordingCallback) OnSessionCreated(s ports.Session, hw model.Handle) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	c.tr.add("cb:created(%t,%s)", s != nil, hw)
	return nil
}
func (c *recordingCallback) OnChannelRetuned(uri string) error {
	c.tr.add("cb:retuned(%s)", uri)
	return nil
}
func (c *recordingCallback) OnTracksChanged([]model.TrackInfo) error { return nil }
func (c *recordingCallback) OnTrackSelected(model.TrackType, string) error {
	return nil
}
func (c *recordingCallback) OnVideoAvailable() error {
	c.tr.add("cb:video_available")
	return nil
}
func (c *recordingCallback) OnVideoUnavailable(r model.VideoUnavailableReason) error {
	c.tr.add("cb:video_unavailable(%d)", int(r))
	return nil
}
func (c *recordingCallback) OnContentAllowed() error                 { return nil }
func (c *recordingCallback) OnContentBlocked(model.ContentRating) error { return nil }
func (c *recordingCallback) OnLayoutSurface(int, int, int, int) error  { return nil }
func (c *recordingCallback) OnSessionEvent(string, model.Bundle) error { return nil }
func (c *recordingCallback) OnTimeShiftStatusChanged(s model.TimeShiftStatus) error {
	c.tr.add("cb:ts_status(%s)", s)
	return nil
}
func (c *recordingCallback) OnTimeShiftStartPositionChanged(ms int64) error {
	c.tr.add("cb:ts_start(%d)", ms)
	return nil
}
func (c *recordingCallback) OnTimeShiftCurrentPositionChanged(ms int64) error {
	c.tr.add("cb:ts_current(%d)", ms)
	return nil
}
func (c *recordingCallback) OnTuned(uri string) error {
	c.tr.add("cb:tuned(%s)", uri)
	return nil
}
func (c *recordingCallback) OnRecordingStopped(string) error  { return nil }
func (c *recordingCallback) OnError(model.RecordingError) error { return nil }

// tvHooks is a minimal playback implementation.
type tvHooks struct{ tr *callTrace }

func (h *tvHooks) OnRelease(context.Context)                    { h.tr.add("hook:release") }
func (h *tvHooks) OnSetSurface(context.Context, ports.Surface)  {}
func (h *tvHooks) OnSetStreamVolume(context.Context, float64)   {}
func (h *tvHooks) OnSetCaptionEnabled(context.Context, bool)    {}
func (h *tvHooks) OnTune(_ context.Context, uri string, _ model.Bundle) {
	h.tr.add("hook:tune(%s)", uri)
}

type passthroughHooks struct {
	tvHooks
	hwID string
}

func (h *passthroughHooks) HardwareInputID() string                { return h.hwID }
func (h *passthroughHooks) OnHardwareVideoAvailable(context.Context) { h.tr.add("hook:hw_video") }
func (h *passthroughHooks) OnHardwareVideoUnavailable(context.Context, model.VideoUnavailableReason) {
}

// scriptedTimeShift returns a fixed start and a scripted sequence of current
// positions; the last value repeats.
type scriptedTimeShift struct {
	tvHooks
	start   int64
	mu      sync.Mutex
	current []int64
}

func (h *scriptedTimeShift) OnTimeShiftPlay(context.Context, string)   {}
func (h *scriptedTimeShift) OnTimeShiftPause(context.Context)          {}
func (h *scriptedTimeShift) OnTimeShiftResume(context.Context)         {}
func (h *scriptedTimeShift) OnTimeShiftSeekTo(context.Context, int64)  {}
func (h *scriptedTimeShift) OnTimeShiftSetPlaybackParams(context.Context, model.PlaybackParams) {
}
func (h *scriptedTimeShift) OnTimeShiftGetStartPosition(context.Context) int64 { return h.start }
func (h *scriptedTimeShift) OnTimeShiftGetCurrentPosition(context.Context) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := h.current[0]
	if len(h.current) > 1 {
		h.current = h.current[1:]
	}
	return v
}

// hostFunc adapts a function to Host.
type hostFunc func(ctx context.Context, inputID string, s *actor.Session) actor.Hooks

func (f hostFunc) OnCreateSession(ctx context.Context, inputID string, s *actor.Session) actor.Hooks {
	return f(ctx, inputID, s)
}

type recordingHostFunc func(ctx context.Context, inputID string, r *actor.Recording) actor.RecordingHooks

func (f recordingHostFunc) OnCreateRecordingSession(ctx context.Context, inputID string, r *actor.Recording) actor.RecordingHooks {
	return f(ctx, inputID, r)
}

type recHooks struct{ tr *callTrace }

func (h recHooks) OnTune(_ context.Context, uri string, _ model.Bundle) { h.tr.add("rec:tune(%s)", uri) }
func (h recHooks) OnStartRecording(context.Context, string)            {}
func (h recHooks) OnStopRecording(context.Context)                     {}
func (h recHooks) OnRelease(context.Context)                           { h.tr.add("rec:release") }

type fakeNested struct {
	name string
	tr   *callTrace
}

func (n *fakeNested) Token() model.Handle { return model.Handle(n.name) }
func (n *fakeNested) Tune(uri string, _ model.Bundle) {
	n.tr.add("nested:tune(%s)", uri)
}
func (n *fakeNested) Release() { n.tr.add("nested:release(%s)", n.name) }

var errUpstream = errors.New("upstream unavailable")

// fakeInputs is an upstream input manager with a fixed input table.
type fakeInputs struct {
	tr     *callTrace
	inputs map[string]model.InputInfo
	fail   bool

	mu     sync.Mutex
	events ports.HardwareSessionEvents
}

func (m *fakeInputs) InputInfo(_ context.Context, id string) (model.InputInfo, bool) {
	info, ok := m.inputs[id]
	return info, ok
}

func (m *fakeInputs) CreateSession(_ context.Context, id string, events ports.HardwareSessionEvents) (ports.HardwareSession, error) {
	if m.fail {
		return nil, errUpstream
	}
	m.mu.Lock()
	m.events = events
	m.mu.Unlock()
	return &fakeNested{name: "nested-" + id, tr: m.tr}, nil
}

// fakeObserver records broadcasts. fail and panics make it misbehave.
type fakeObserver struct {
	name   string
	tr     *callTrace
	fail   bool
	panics bool
}

func (o *fakeObserver) String() string { return o.name }

func (o *fakeObserver) record(format string, args ...any) error {
	if o.panics {
		panic("observer " + o.name + " crashed")
	}
	o.tr.add(o.name+":"+format, args...)
	if o.fail {
		return errors.New("observer gone")
	}
	return nil
}

func (o *fakeObserver) AddHardwareInput(deviceID int, info model.InputInfo) error {
	return o.record("add_hw(%d,%s)", deviceID, info.ID)
}
func (o *fakeObserver) RemoveHardwareInput(id string) error { return o.record("remove_hw(%s)", id) }
func (o *fakeObserver) AddHdmiInput(id int, info model.InputInfo) error {
	return o.record("add_hdmi(%d,%s)", id, info.ID)
}
func (o *fakeObserver) RemoveHdmiInput(id string) error { return o.record("remove_hdmi(%s)", id) }

type fakeResolver struct{}

func (fakeResolver) OnHardwareAdded(_ context.Context, info model.HardwareInfo) (model.InputInfo, bool) {
	if info.DeviceID < 0 {
		return model.InputInfo{}, false
	}
	return model.InputInfo{ID: fmt.Sprintf("hw-%d", info.DeviceID), Type: info.Type, Passthrough: true}, true
}
func (fakeResolver) OnHardwareRemoved(_ context.Context, info model.HardwareInfo) (string, bool) {
	return fmt.Sprintf("hw-%d", info.DeviceID), info.DeviceID >= 0
}
func (fakeResolver) OnHdmiDeviceAdded(_ context.Context, info model.HdmiDeviceInfo) (model.InputInfo, bool) {
	return model.InputInfo{ID: fmt.Sprintf("hdmi-%d", info.ID), Type: model.InputTypeHDMI}, true
}
func (fakeResolver) OnHdmiDeviceRemoved(_ context.Context, info model.HdmiDeviceInfo) (string, bool) {
	return fmt.Sprintf("hdmi-%d", info.ID), true
}

// fakeBus records published topics.
type fakeBus struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (b *fakeBus) Publish(_ context.Context, topic string, event any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	b.events = append(b.events, event)
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string) (ports.Subscription, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.topics...)
}

// startService runs a service until the test ends.
func startService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errCh)
	})
	return s
}

func flushService(t *testing.T, s *Service) {
	t.Helper()
	require.NoError(t, s.Flush(context.Background()))
}
