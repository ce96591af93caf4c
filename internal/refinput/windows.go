// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package refinput

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/domain/session/ports"
	"github.com/ManuGH/tvinput/internal/log"
)

// ErrNoWindowToken is returned when a view is added without a requester window.
var ErrNoWindowToken = errors.New("overlay layout has no window token")

var _ ports.WindowManager = (*Windows)(nil)

// Windows is an off-screen window manager. It tracks placement only.
type Windows struct {
	logger zerolog.Logger

	mu       sync.Mutex
	attached map[*window]struct{}
}

// NewWindows returns an empty window manager.
func NewWindows() *Windows {
	return &Windows{
		logger:   log.WithComponent("windows"),
		attached: make(map[*window]struct{}),
	}
}

func (m *Windows) AddView(_ context.Context, view ports.OverlayView, layout model.OverlayLayout) (ports.OverlayWindow, error) {
	if layout.Token == "" {
		return nil, ErrNoWindowToken
	}
	w := &window{owner: m, view: view, layout: layout}
	w.live.Store(true)
	m.mu.Lock()
	m.attached[w] = struct{}{}
	m.mu.Unlock()
	m.logger.Debug().
		Str("token", string(layout.Token)).
		Int("width", layout.Width).
		Int("height", layout.Height).
		Msg("overlay window added")
	return w, nil
}

// Attached returns the layouts of all attached windows.
func (m *Windows) Attached() []model.OverlayLayout {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.OverlayLayout, 0, len(m.attached))
	for w := range m.attached {
		out = append(out, w.currentLayout())
	}
	return out
}

func (m *Windows) detach(w *window) {
	m.mu.Lock()
	delete(m.attached, w)
	m.mu.Unlock()
}

type window struct {
	owner *Windows
	view  ports.OverlayView

	live  atomic.Bool
	focus atomic.Bool

	mu     sync.Mutex
	layout model.OverlayLayout
}

func (w *window) currentLayout() model.OverlayLayout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout
}

func (w *window) IsAttached() bool { return w.live.Load() }

func (w *window) Update(_ context.Context, layout model.OverlayLayout) error {
	w.mu.Lock()
	w.layout = layout
	w.mu.Unlock()
	return nil
}

func (w *window) Remove(context.Context) error {
	if w.live.CompareAndSwap(true, false) {
		w.owner.detach(w)
	}
	return nil
}

func (w *window) HasWindowFocus() bool { return w.focus.Load() }

func (w *window) RequestWindowFocus() { w.focus.Store(true) }

// DispatchInputEvent never consumes events: the reference overlays only draw.
func (w *window) DispatchInputEvent(_ model.InputEvent, done func(handled bool)) {
	if done != nil {
		go done(false)
	}
}

// captionView is the overlay the reference tuner draws subtitles into.
type captionView struct{}

func (captionView) HasFocusable() bool { return false }
