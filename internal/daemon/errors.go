// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingService is returned when an app is created without a session service.
	ErrMissingService = errors.New("session service is required")

	// ErrMissingConfig is returned when an app is created without a config holder.
	ErrMissingConfig = errors.New("config holder is required")

	// ErrMissingBus is returned when an app is created without an event bus.
	ErrMissingBus = errors.New("event bus is required")

	// ErrServerStartFailed is returned when a server fails to start
	ErrServerStartFailed = errors.New("server failed to start")
)
