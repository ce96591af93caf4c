// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package refinput

import "errors"

var (
	ErrUnknownHardwareInput = errors.New("unknown hardware input")
	ErrNoEvents             = errors.New("hardware session events receiver is required")
)
