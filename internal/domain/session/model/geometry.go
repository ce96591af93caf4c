// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import "fmt"

// Rect is a frame in pixels.
type Rect struct {
	Left, Top, Right, Bottom int
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// SameSize reports whether both rects have equal width and height.
func (r Rect) SameSize(o Rect) bool {
	return r.Width() == o.Width() && r.Height() == o.Height()
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d, %d - %d, %d)", r.Left, r.Top, r.Right, r.Bottom)
}

// WindowToken identifies the requester window an overlay is layered onto.
type WindowToken string

// OverlayLayout is what the window manager needs to place an overlay window.
// Overlays sit above the media window and below the requester's UI; they are never
// focusable or touchable so the requester decides how input is routed.
type OverlayLayout struct {
	Token  WindowToken
	X, Y   int
	Width  int
	Height int
}

// LayoutFor builds the overlay layout for a frame.
func LayoutFor(token WindowToken, frame Rect) OverlayLayout {
	return OverlayLayout{
		Token:  token,
		X:      frame.Left,
		Y:      frame.Top,
		Width:  frame.Width(),
		Height: frame.Height(),
	}
}
