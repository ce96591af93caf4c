// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

// KeyCode identifies a key. Values follow the common TV remote key numbering.
type KeyCode int

const (
	KeyUnknown         KeyCode = 0
	KeyDpadUp          KeyCode = 19
	KeyDpadDown        KeyCode = 20
	KeyDpadLeft        KeyCode = 21
	KeyDpadRight       KeyCode = 22
	KeyDpadCenter      KeyCode = 23
	KeyTab             KeyCode = 61
	KeySpace           KeyCode = 62
	KeyEnter           KeyCode = 66
	KeyHeadsetHook     KeyCode = 79
	KeyMediaPlayPause  KeyCode = 85
	KeyMediaStop       KeyCode = 86
	KeyMediaNext       KeyCode = 87
	KeyMediaPrevious   KeyCode = 88
	KeyMediaRewind     KeyCode = 89
	KeyMediaFastFwd    KeyCode = 90
	KeyMute            KeyCode = 91
	KeyPageUp          KeyCode = 92
	KeyPageDown        KeyCode = 93
	KeyMoveHome        KeyCode = 122
	KeyMoveEnd         KeyCode = 123
	KeyMediaPlay       KeyCode = 126
	KeyMediaPause      KeyCode = 127
	KeyMediaRecord     KeyCode = 130
	KeyMediaAudioTrack KeyCode = 222
)

// IsNavigationKey reports keys that move focus inside an overlay.
func IsNavigationKey(code KeyCode) bool {
	switch code {
	case KeyDpadLeft, KeyDpadRight, KeyDpadUp, KeyDpadDown, KeyDpadCenter,
		KeyPageUp, KeyPageDown, KeyMoveHome, KeyMoveEnd,
		KeyTab, KeySpace, KeyEnter:
		return true
	}
	return false
}

// IsMediaKey reports transport-control keys.
func IsMediaKey(code KeyCode) bool {
	switch code {
	case KeyMediaPlay, KeyMediaPause, KeyMediaPlayPause, KeyMute, KeyHeadsetHook,
		KeyMediaStop, KeyMediaNext, KeyMediaPrevious, KeyMediaRewind,
		KeyMediaRecord, KeyMediaFastFwd:
		return true
	}
	return false
}

// KeyAction is the phase of a key event.
type KeyAction int

const (
	KeyActionDown KeyAction = iota
	KeyActionUp
	KeyActionMultiple
)

// MotionSource classifies where a motion event came from.
type MotionSource int

const (
	SourceTouch MotionSource = iota
	SourceTrackball
	SourceGeneric
)

// InputEvent is either a key or a motion event. Seq is assigned by the input channel
// and echoed back when the event is finished.
type InputEvent struct {
	Seq    uint64
	Key    *KeyEvent
	Motion *MotionEvent
}

// KeyEvent is a single key transition.
type KeyEvent struct {
	Code        KeyCode
	Action      KeyAction
	RepeatCount int
	LongPress   bool
}

// MotionEvent is a pointer/trackball sample.
type MotionEvent struct {
	Source MotionSource
	X, Y   float64
}
