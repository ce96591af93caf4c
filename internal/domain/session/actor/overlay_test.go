// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
)

var frame = model.Rect{Left: 0, Top: 0, Right: 100, Bottom: 50}

func TestCreateOverlayViewReportsSizeEvenWithoutView(t *testing.T) {
	f := newSessionFixture(t)
	f.bind(t)

	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)
	assertTrace(t, []string{"hook:overlay_size(100,50)", "hook:create_overlay"}, f.tr)
	assert.False(t, f.s.OverlayAttached())

	f.tr.reset()
	f.hooks.view = fakeView{}
	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)
	assertTrace(t, []string{"hook:overlay_size(100,50)", "hook:create_overlay", "wm:add(tok,100x50)"}, f.tr)
	assert.True(t, f.s.OverlayAttached())
}

func TestCreateOverlayViewReplacesExisting(t *testing.T) {
	f := newSessionFixture(t)
	f.hooks.view = fakeView{}
	f.bind(t)

	f.s.CreateOverlayView("tok", frame)
	f.s.CreateOverlayView("tok2", model.Rect{Right: 10, Bottom: 10})
	flush(t, f.loop)

	assertTrace(t, []string{
		"hook:overlay_size(100,50)", "hook:create_overlay", "wm:add(tok,100x50)",
		"wm:remove",
		"hook:overlay_size(10,10)", "hook:create_overlay", "wm:add(tok2,10x10)",
	}, f.tr)
}

func TestRelayoutOverlayViewReportsOnlySizeChanges(t *testing.T) {
	f := newSessionFixture(t)
	f.hooks.view = fakeView{}
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)
	f.tr.reset()

	f.s.RelayoutOverlayView(model.Rect{Left: 10, Top: 10, Right: 110, Bottom: 60})
	f.s.RelayoutOverlayView(model.Rect{Left: 10, Top: 10, Right: 210, Bottom: 60})
	flush(t, f.loop)

	assertTrace(t, []string{
		"wm:update(10,10,100x50)",
		"hook:overlay_size(200,50)",
		"wm:update(10,10,200x50)",
	}, f.tr)
}

func TestRelayoutWithoutOverlayStillReportsFirstSize(t *testing.T) {
	f := newSessionFixture(t)
	f.bind(t)
	f.s.RelayoutOverlayView(frame)
	flush(t, f.loop)
	assertTrace(t, []string{"hook:overlay_size(100,50)"}, f.tr)
}

func TestSetOverlayViewEnabled(t *testing.T) {
	f := newSessionFixture(t)
	f.hooks.view = fakeView{}
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)
	f.tr.reset()

	f.s.SetOverlayViewEnabled(false)
	f.s.SetOverlayViewEnabled(false)
	f.s.RelayoutOverlayView(model.Rect{Right: 20, Bottom: 20})
	f.s.SetOverlayViewEnabled(true)
	f.s.SetOverlayViewEnabled(true)
	flush(t, f.loop)

	assertTrace(t, []string{
		"wm:remove",
		"hook:overlay_size(20,20)",
		"hook:overlay_size(20,20)", "hook:create_overlay", "wm:add(tok,20x20)",
	}, f.tr)
	assert.True(t, f.s.OverlayAttached())
}

func TestRemoveOverlayViewForgetsToken(t *testing.T) {
	f := newSessionFixture(t)
	f.hooks.view = fakeView{}
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	f.s.RemoveOverlayView()
	f.s.SetOverlayViewEnabled(false)
	f.s.SetOverlayViewEnabled(true)
	flush(t, f.loop)

	assertTrace(t, []string{
		"hook:overlay_size(100,50)", "hook:create_overlay", "wm:add(tok,100x50)",
		"wm:remove",
	}, f.tr)
}

func TestOverlayWatchdogSupersededByNewOverlay(t *testing.T) {
	wd, leaks := newWatchdog(t, time.Hour)
	f := newSessionFixture(t, func(c *Config) { c.Watchdog = wd })
	f.hooks.view = fakeView{}
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)

	f.s.RemoveOverlayView()
	f.s.overlayMu.Lock()
	task := f.s.cleanup
	f.s.overlayMu.Unlock()
	require.NotNil(t, task)

	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded watchdog still pending")
	}
	assert.False(t, task.Escalated())
	assert.Empty(t, leaks.ch)
}

func TestOverlayLeakEscalatesExactlyOnce(t *testing.T) {
	wd, leaks := newWatchdog(t, 20*time.Millisecond)
	f := newSessionFixture(t, func(c *Config) { c.Watchdog = wd })
	f.hooks.view = fakeView{}
	f.windows.stuck = true
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)

	f.s.Release()
	flush(t, f.loop)

	select {
	case fault := <-leaks.ch:
		assert.Equal(t, f.s.Handle(), fault.Handle)
		assert.Equal(t, 20*time.Millisecond, fault.Timeout)
	case <-time.After(time.Second):
		t.Fatal("expected overlay leak escalation")
	}
	select {
	case <-leaks.ch:
		t.Fatal("escalated twice")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestOverlayDetachedInTimeDoesNotEscalate(t *testing.T) {
	wd, leaks := newWatchdog(t, 20*time.Millisecond)
	f := newSessionFixture(t, func(c *Config) { c.Watchdog = wd })
	f.hooks.view = fakeView{}
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	flush(t, f.loop)

	f.s.RemoveOverlayView()
	flush(t, f.loop)
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, leaks.ch)
}

func TestOverlayInternalRemovalArmsWatchdog(t *testing.T) {
	wd, leaks := newWatchdog(t, 20*time.Millisecond)
	f := newSessionFixture(t, func(c *Config) { c.Watchdog = wd })
	f.hooks.view = fakeView{}
	f.windows.stuck = true
	f.bind(t)
	f.s.CreateOverlayView("tok", frame)
	f.s.SetOverlayViewEnabled(false)
	flush(t, f.loop)

	select {
	case <-leaks.ch:
	case <-time.After(time.Second):
		t.Fatal("expected escalation for a window that never detached")
	}
}
