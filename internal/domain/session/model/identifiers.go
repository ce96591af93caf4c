// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package model

import (
	"regexp"

	"github.com/google/uuid"
)

var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Handle is the opaque identity assigned to a session at creation.
// The zero value is the null handle.
type Handle string

// NoHandle is reported to requesters when creation failed or no nested session exists.
const NoHandle Handle = ""

// NewHandle allocates a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool { return h == NoHandle }

func (h Handle) String() string { return string(h) }

// IsSafeHandle returns true if the handle is safe for log fields and URLs.
func IsSafeHandle(h Handle) bool {
	return handleRe.MatchString(string(h))
}
