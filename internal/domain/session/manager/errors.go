// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package manager

import "errors"

var (
	ErrNoHost          = errors.New("service host is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoNestedSession = errors.New("input manager returned no session")
)

// Failure reasons attached to SessionFailedEvent and the creation metric.
const (
	reasonNoImplementation = "no_implementation"
	reasonAttach           = "attach_failed"
	reasonUnsupported      = "unsupported"
	reasonNoHardwareInput  = "no_hardware_input"
	reasonUnknownInput     = "unknown_input"
	reasonNotPassthrough   = "not_passthrough"
	reasonUpstream         = "upstream_failed"
	reasonShutdown         = "shutdown"
)
