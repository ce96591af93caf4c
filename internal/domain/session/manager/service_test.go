// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/tvinput/internal/domain/session/actor"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func assertTrace(t *testing.T, want []string, tr *callTrace) {
	t.Helper()
	if diff := cmp.Diff(want, tr.get()); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
}

func eventually(t *testing.T, tr *callTrace, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return tr.len() >= n }, 2*time.Second, 5*time.Millisecond,
		"trace: %v", tr.get())
}

func TestNewRequiresHost(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoHost)
}

// A host that cannot build an implementation yields a nil session.
func TestCreateSessionWithoutImplementation(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{
		Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil }),
	})
	s.CreateSession(nil, &recordingCallback{tr: tr}, "X")
	flushService(t, s)

	assertTrace(t, []string{"cb:created(false,)"}, tr)
	assert.Empty(t, s.Sessions())
}

// A passthrough session without a hardware input is released before the
// requester learns about the failure.
func TestCreatePassthroughWithoutHardwareInput(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{
		Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks {
			return &passthroughHooks{tvHooks: tvHooks{tr: tr}}
		}),
	})
	s.CreateSession(nil, &recordingCallback{tr: tr}, "proxy")
	flushService(t, s)

	assertTrace(t, []string{"hook:release", "cb:created(false,)"}, tr)
}

// Notifications issued while the session is being built are delivered right after
// the creation result.
func TestNotificationDuringCreationFollowsHandshake(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{
		Host: hostFunc(func(ctx context.Context, _ string, sess *actor.Session) actor.Hooks {
			sess.NotifyVideoAvailable(ctx)
			sess.NotifyChannelRetuned(ctx, "ch/7")
			return &tvHooks{tr: tr}
		}),
	})
	s.CreateSession(nil, &recordingCallback{tr: tr}, "tuner-1")
	flushService(t, s)

	assertTrace(t, []string{"cb:created(true,)", "cb:video_available", "cb:retuned(ch/7)"}, tr)
	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "tuner-1", sessions[0].InputID)
	assert.Equal(t, model.KindTv, sessions[0].Kind)
}

// Start sampled as 1000 twice fires once; current sampled as 500 then 1500 fires
// twice, the first clamped to start.
func TestTimeShiftPositionsReportedOnChange(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{
		PositionInterval: 5 * time.Millisecond,
		Host: hostFunc(func(ctx context.Context, _ string, sess *actor.Session) actor.Hooks {
			sess.NotifyTimeShiftStatusChanged(ctx, model.TimeShiftStatusAvailable)
			return &scriptedTimeShift{tvHooks: tvHooks{tr: tr}, start: 1000, current: []int64{500, 1500}}
		}),
	})
	s.CreateSession(nil, &recordingCallback{tr: tr}, "tuner-1")

	eventually(t, tr, 5)
	time.Sleep(30 * time.Millisecond)
	assertTrace(t, []string{
		"cb:created(true,)",
		"cb:ts_status(available)",
		"cb:ts_start(1000)",
		"cb:ts_current(1000)",
		"cb:ts_current(1500)",
	}, tr)
}

func passthroughConfig(tr *callTrace, inputs *fakeInputs) Config {
	return Config{
		Inputs: inputs,
		Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks {
			return &passthroughHooks{tvHooks: tvHooks{tr: tr}, hwID: "hdmi1"}
		}),
	}
}

func TestCreatePassthroughSessionTunesNested(t *testing.T) {
	tr := &callTrace{}
	inputs := &fakeInputs{tr: tr, inputs: map[string]model.InputInfo{
		"hdmi1": {ID: "hdmi1", Type: model.InputTypeHDMI, Passthrough: true},
	}}
	s := startService(t, passthroughConfig(tr, inputs))
	cb := &recordingCallback{tr: tr}
	s.CreateSession(nil, cb, "proxy")

	eventually(t, tr, 2)
	assertTrace(t, []string{
		"nested:tune(" + model.PassthroughChannelURI("hdmi1") + ")",
		"cb:created(true,nested-hdmi1)",
	}, tr)

	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, model.KindPassthrough, sessions[0].Kind)
	assert.Equal(t, model.Handle("nested-hdmi1"), sessions[0].HardwareSession)

	// Video availability of the nested session reaches the outer implementation.
	inputs.mu.Lock()
	events := inputs.events
	inputs.mu.Unlock()
	sess := cb.created().(*actor.Session)
	events.OnVideoAvailable(&fakeNested{name: "other", tr: tr})
	flushService(t, s)
	assert.Len(t, tr.get(), 2)

	sess.Release()
	flushService(t, s)
	assertTrace(t, []string{
		"nested:tune(" + model.PassthroughChannelURI("hdmi1") + ")",
		"cb:created(true,nested-hdmi1)",
		"nested:release(nested-hdmi1)",
		"hook:release",
	}, tr)
	assert.Empty(t, s.Sessions())
}

func TestCreatePassthroughRejectsUnusableInputs(t *testing.T) {
	tests := []struct {
		name   string
		inputs map[string]model.InputInfo
	}{
		{name: "unknown input", inputs: map[string]model.InputInfo{}},
		{name: "not passthrough", inputs: map[string]model.InputInfo{
			"hdmi1": {ID: "hdmi1", Type: model.InputTypeHDMI},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &callTrace{}
			s := startService(t, passthroughConfig(tr, &fakeInputs{tr: tr, inputs: tt.inputs}))
			s.CreateSession(nil, &recordingCallback{tr: tr}, "proxy")
			flushService(t, s)
			assertTrace(t, []string{"hook:release", "cb:created(false,)"}, tr)
		})
	}
}

func TestCreatePassthroughUpstreamFailure(t *testing.T) {
	tr := &callTrace{}
	inputs := &fakeInputs{tr: tr, fail: true, inputs: map[string]model.InputInfo{
		"hdmi1": {ID: "hdmi1", Passthrough: true},
	}}
	s := startService(t, passthroughConfig(tr, inputs))
	s.CreateSession(nil, &recordingCallback{tr: tr}, "proxy")

	eventually(t, tr, 2)
	assertTrace(t, []string{"hook:release", "cb:created(false,)"}, tr)
	assert.Empty(t, s.Sessions())
}

func TestCreateSessionIgnoresNilCallback(t *testing.T) {
	called := false
	s := startService(t, Config{
		Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks {
			called = true
			return nil
		}),
	})
	s.CreateSession(nil, nil, "tuner-1")
	s.CreateRecordingSession(nil, "tuner-1")
	flushService(t, s)
	assert.False(t, called)
}

func TestRecordingSessionUnsupportedWithoutHost(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil })})
	s.CreateRecordingSession(&recordingCallback{tr: tr}, "tuner-1")
	flushService(t, s)
	assertTrace(t, []string{"cb:created(false,)"}, tr)
}

func TestRecordingSessionCreated(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{
		Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil }),
		RecordingHost: recordingHostFunc(func(ctx context.Context, _ string, r *actor.Recording) actor.RecordingHooks {
			r.NotifyTuned(ctx, "ch/1")
			return recHooks{tr: tr}
		}),
	})
	cb := &recordingCallback{tr: tr}
	s.CreateRecordingSession(cb, "tuner-1")
	flushService(t, s)

	assertTrace(t, []string{"cb:created(true,)", "cb:tuned(ch/1)"}, tr)
	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, model.KindRecording, sessions[0].Kind)

	require.NoError(t, s.ForceRelease(sessions[0].Handle))
	flushService(t, s)
	assert.Equal(t, "rec:release", tr.get()[2])
	assert.Empty(t, s.Sessions())
	assert.ErrorIs(t, s.ForceRelease(sessions[0].Handle), ErrSessionNotFound)
}

func TestTopologyBroadcastIsolatesObservers(t *testing.T) {
	tr := &callTrace{}
	bus := &fakeBus{}
	s := startService(t, Config{
		Host:     hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil }),
		Hardware: fakeResolver{},
		Hdmi:     fakeResolver{},
		Bus:      bus,
	})
	failing := &fakeObserver{name: "a", tr: tr, fail: true}
	crashing := &fakeObserver{name: "b", tr: tr, panics: true}
	healthy := &fakeObserver{name: "c", tr: tr}
	s.RegisterObserver(failing)
	s.RegisterObserver(crashing)
	s.RegisterObserver(healthy)
	s.RegisterObserver(healthy)

	n, err := s.ObserverCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	s.NotifyHardwareAdded(model.HardwareInfo{DeviceID: 4, Type: model.InputTypeHDMI})
	s.NotifyHardwareAdded(model.HardwareInfo{DeviceID: -1})
	s.NotifyHdmiDeviceAdded(model.HdmiDeviceInfo{ID: 2})
	s.UnregisterObserver(failing)
	s.NotifyHdmiDeviceRemoved(model.HdmiDeviceInfo{ID: 2})
	s.NotifyHardwareRemoved(model.HardwareInfo{DeviceID: 4})
	flushService(t, s)

	assertTrace(t, []string{
		"a:add_hw(4,hw-4)",
		"c:add_hw(4,hw-4)",
		"a:add_hdmi(2,hdmi-2)",
		"c:add_hdmi(2,hdmi-2)",
		"c:remove_hdmi(hdmi-2)",
		"c:remove_hw(hw-4)",
	}, tr)
	assert.Equal(t, []string{
		string(model.EventTopology),
		string(model.EventTopology),
		string(model.EventTopology),
		string(model.EventTopology),
	}, bus.published())
}

func TestTopologyWithoutResolversIsIgnored(t *testing.T) {
	tr := &callTrace{}
	s := startService(t, Config{Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil })})
	s.RegisterObserver(&fakeObserver{name: "a", tr: tr})
	s.NotifyHardwareAdded(model.HardwareInfo{DeviceID: 1})
	s.NotifyHdmiDeviceAdded(model.HdmiDeviceInfo{ID: 1})
	flushService(t, s)
	assert.Empty(t, tr.get())
}

func TestSessionLifecycleEventsPublished(t *testing.T) {
	tr := &callTrace{}
	bus := &fakeBus{}
	s := startService(t, Config{
		Bus: bus,
		Host: hostFunc(func(_ context.Context, inputID string, _ *actor.Session) actor.Hooks {
			if inputID == "bad" {
				return nil
			}
			return &tvHooks{tr: tr}
		}),
	})
	cb := &recordingCallback{tr: tr}
	s.CreateSession(nil, cb, "tuner-1")
	s.CreateSession(nil, &recordingCallback{tr: tr}, "bad")
	flushService(t, s)
	cb.created().Release()
	flushService(t, s)

	assert.Equal(t, []string{
		string(model.EventSessionCreated),
		string(model.EventSessionFailed),
		string(model.EventSessionReleased),
	}, bus.published())
}

func TestEscalationPolicy(t *testing.T) {
	fault := model.OverlayLeakFault{Handle: "h1", Timeout: time.Second}

	t.Run("report", func(t *testing.T) {
		bus := &fakeBus{}
		exited := -1
		s, err := New(Config{
			Host:   hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil }),
			Bus:    bus,
			Policy: watchdog.PolicyReport,
			Exit:   func(code int) { exited = code },
		})
		require.NoError(t, err)
		defer s.watchdog.Close()

		s.Escalate(context.Background(), fault)
		assert.Equal(t, []string{string(model.EventOverlayLeak)}, bus.published())
		assert.Equal(t, -1, exited)
	})

	t.Run("exit", func(t *testing.T) {
		bus := &fakeBus{}
		exited := -1
		s, err := New(Config{
			Host:   hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil }),
			Bus:    bus,
			Policy: watchdog.PolicyExit,
			Exit:   func(code int) { exited = code },
		})
		require.NoError(t, err)
		defer s.watchdog.Close()

		s.Escalate(context.Background(), fault)
		assert.Equal(t, []string{string(model.EventOverlayLeak)}, bus.published())
		assert.Equal(t, 1, exited)
	})

	t.Run("unset defaults to exit", func(t *testing.T) {
		exited := -1
		s, err := New(Config{
			Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return nil }),
			Exit: func(code int) { exited = code },
		})
		require.NoError(t, err)
		defer s.watchdog.Close()

		s.Escalate(context.Background(), fault)
		assert.Equal(t, 1, exited)
	})
}

func TestShutdownReleasesLiveSessions(t *testing.T) {
	tr := &callTrace{}
	s, err := New(Config{
		Host: hostFunc(func(context.Context, string, *actor.Session) actor.Hooks { return &tvHooks{tr: tr} }),
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	s.CreateSession(nil, &recordingCallback{tr: tr}, "tuner-1")
	s.CreateSession(nil, &recordingCallback{tr: tr}, "tuner-2")
	flushService(t, s)
	require.Len(t, s.Sessions(), 2)

	cancel()
	require.NoError(t, <-errCh)
	assert.Empty(t, s.Sessions())
	assert.Equal(t, []string{"cb:created(true,)", "cb:created(true,)", "hook:release", "hook:release"}, tr.get())

	// Requests after shutdown are dropped.
	s.CreateSession(nil, &recordingCallback{tr: tr}, "tuner-3")
	assert.Len(t, tr.get(), 4)
}
