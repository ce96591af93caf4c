// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ports

import (
	"context"

	"github.com/ManuGH/tvinput/internal/domain/session/model"
)

// OverlayView is the UI a session implementation supplies for its overlay.
type OverlayView interface {
	// HasFocusable reports whether the view contains focusable children.
	HasFocusable() bool
}

// WindowManager places overlay windows on behalf of sessions.
type WindowManager interface {
	AddView(ctx context.Context, view OverlayView, layout model.OverlayLayout) (OverlayWindow, error)
}

// OverlayWindow is the container the window manager created for an overlay view.
type OverlayWindow interface {
	IsAttached() bool
	Update(ctx context.Context, layout model.OverlayLayout) error
	// Remove detaches the window. A misbehaving view can make this hang.
	Remove(ctx context.Context) error
	HasWindowFocus() bool
	RequestWindowFocus()
	// DispatchInputEvent delivers an event into the overlay's view tree. done is
	// called once the view hierarchy finished the event; it may be nil.
	DispatchInputEvent(ev model.InputEvent, done func(handled bool))
}

// InputChannel carries raw input events from the requester to a session.
type InputChannel interface {
	Events() <-chan model.InputEvent
	Finish(seq uint64, handled bool)
}
