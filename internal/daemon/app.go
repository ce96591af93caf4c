// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/tvinput/internal/config"
	"github.com/ManuGH/tvinput/internal/domain/session/model"
	"github.com/ManuGH/tvinput/internal/log"
)

// App owns the long-lived runtime: the session service, the admin server, the
// fault supervisor and config reload wiring.
type App struct {
	deps         Deps
	logger       zerolog.Logger
	reloadSignal os.Signal
	admin        *adminServer
}

// NewApp creates a new App orchestrator.
func NewApp(deps Deps) (*App, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	a := &App{
		deps:         deps,
		logger:       deps.Logger.With().Str(log.FieldComponent, "app").Logger(),
		reloadSignal: syscall.SIGHUP,
	}
	cfg := deps.Config.Get()
	if cfg.Admin.Listen != "" {
		var inputs InputLister
		if deps.Inputs != nil {
			inputs = deps.Inputs
		}
		a.admin = newAdminServer(cfg.Admin.Listen, NewAdminRouter(deps.Service, inputs),
			cfg.Session.ShutdownTimeout, deps.Logger.With().Str(log.FieldComponent, "admin").Logger())
	}
	return a, nil
}

// AdminAddr blocks until the admin server listens and returns its address.
// It returns nil when the admin server is disabled or ctx ends first.
func (a *App) AdminAddr(ctx context.Context) net.Addr {
	if a.admin == nil {
		return nil
	}
	select {
	case addr := <-a.admin.ready:
		a.admin.ready <- addr
		return addr
	case <-ctx.Done():
		return nil
	}
}

// Run starts all owned subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	cfg := a.deps.Config.Get()
	defer a.cleanup()

	g, ctx := errgroup.WithContext(ctx)

	sup := newFaultSupervisor(a.deps.Service, a.deps.Exit)
	sub, err := sup.Subscribe(ctx, newBusAdapter(a.deps.Bus))
	if err != nil {
		return err
	}
	g.Go(func() error { return sup.Run(ctx, sub) })

	a.announceTopology(cfg.Hardware)
	g.Go(func() error { return a.deps.Service.Run(ctx) })

	if a.admin != nil {
		g.Go(func() error { return a.admin.Run(ctx) })
	}

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if err := a.deps.Config.StartWatcher(ctx); err != nil {
		a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
	}

	applyCh := make(chan config.AppConfig, 1)
	a.deps.Config.RegisterListener(applyCh)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case next := <-applyCh:
				a.apply(next)
			}
		}
	})

	// SIGHUP trigger for manual reload.
	if a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.deps.Config.Reload(ctx); err != nil {
						a.logger.Warn().
							Err(err).
							Str(log.FieldEvent, "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	return g.Wait()
}

// apply re-applies the settings that can change at runtime.
func (a *App) apply(cfg config.AppConfig) {
	if err := log.SetLevel(cfg.Log.Level); err != nil {
		a.logger.Warn().Err(err).Str("level", cfg.Log.Level).Msg("log level not applied")
		return
	}
	a.logger.Info().Str("level", cfg.Log.Level).Msg("runtime config applied")
}

// announceTopology reports the statically configured devices. The requests are
// queued until the service runs.
func (a *App) announceTopology(hw config.HardwareConfig) {
	for _, d := range hw.Devices {
		a.deps.Service.NotifyHardwareAdded(model.HardwareInfo{
			DeviceID:  d.DeviceID,
			Type:      model.InputType(d.Type),
			HDMIPort:  d.HDMIPort,
			AudioType: d.AudioType,
		})
	}
	for _, d := range hw.HdmiDevices {
		a.deps.Service.NotifyHdmiDeviceAdded(model.HdmiDeviceInfo{
			ID:          d.ID,
			LogicalAddr: d.LogicalAddr,
			PortID:      d.PortID,
			DisplayName: d.DisplayName,
		})
	}
}

func (a *App) cleanup() {
	a.deps.Config.Stop()
	a.deps.Bus.Close()
	if a.deps.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.deps.Config.Get().Session.ShutdownTimeout)
		defer cancel()
		if err := a.deps.Telemetry.Shutdown(ctx); err != nil {
			a.logger.Error().Err(err).Msg("telemetry shutdown error")
		}
	}
	a.logger.Info().Msg("daemon stopped")
}
