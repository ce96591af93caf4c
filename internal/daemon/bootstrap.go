// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"

	"github.com/ManuGH/tvinput/internal/config"
	"github.com/ManuGH/tvinput/internal/domain/session/manager"
	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/pipeline/bus"
	"github.com/ManuGH/tvinput/internal/refinput"
	"github.com/ManuGH/tvinput/internal/telemetry"
)

// Bootstrap loads the configuration at configPath and wires every runtime
// component. An empty path runs on defaults and environment overrides.
func Bootstrap(ctx context.Context, configPath, version string) (*App, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log.Reconfigure(log.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Service: cfg.Telemetry.ServiceName,
		Version: version,
	})
	logger := log.WithComponent("daemon")
	logger.Info().
		Str("config", loader.Path()).
		Strs("env", loader.EnvKeys()).
		Str("version", version).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	policy, err := watchdog.ParsePolicy(cfg.Session.Escalation)
	if err != nil {
		return nil, err
	}

	b := bus.NewMemoryBus()
	host := refinput.New(cfg.Reference)
	svc, err := manager.New(manager.Config{
		Host:             host,
		RecordingHost:    host,
		Hardware:         host,
		Hdmi:             host,
		Inputs:           host,
		Windows:          refinput.NewWindows(),
		Bus:              newBusAdapter(b),
		OverlayTimeout:   cfg.Session.OverlayDetachTimeout,
		PositionInterval: cfg.Session.PositionUpdateInterval,
		Policy:           policy,
		ShutdownTimeout:  cfg.Session.ShutdownTimeout,
		BreakerThreshold: cfg.Upstream.BreakerThreshold,
		BreakerReset:     cfg.Upstream.BreakerReset,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("build session service: %w", err)
	}

	return NewApp(Deps{
		Logger:    logger,
		Config:    config.NewConfigHolder(cfg, loader),
		Service:   svc,
		Bus:       b,
		Inputs:    host,
		Telemetry: tp,
	})
}
