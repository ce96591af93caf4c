// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"github.com/rs/zerolog"

	"github.com/ManuGH/tvinput/internal/config"
	"github.com/ManuGH/tvinput/internal/domain/session/manager"
	"github.com/ManuGH/tvinput/internal/pipeline/bus"
	"github.com/ManuGH/tvinput/internal/refinput"
	"github.com/ManuGH/tvinput/internal/telemetry"
)

// Deps contains the components an App runs.
// This allows for clean dependency injection and easier testing.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	Config  *config.ConfigHolder
	Service *manager.Service
	Bus     *bus.MemoryBus

	// Inputs backs the admin input listing. Optional.
	Inputs *refinput.Host

	// Telemetry is shut down when the app stops. Optional.
	Telemetry *telemetry.Provider

	// Exit terminates the process on an unrecoverable fault. Defaults to os.Exit.
	Exit func(code int)
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Service == nil {
		return ErrMissingService
	}
	if d.Config == nil {
		return ErrMissingConfig
	}
	if d.Bus == nil {
		return ErrMissingBus
	}
	return nil
}
