// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/ManuGH/tvinput/internal/domain/session/watchdog"
	"github.com/ManuGH/tvinput/internal/validate"
)

var inputTypes = []string{"tuner", "hdmi", "composite", "other"}

// Validate checks a fully merged configuration. All problems are reported at
// once as a validate.ValidationError.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if cfg.Log.Level != "" {
		if _, err := validate.ParseLogLevel(cfg.Log.Level); err != nil {
			v.AddError("log.level", "must be one of debug, info, warn, error", cfg.Log.Level)
		}
	}
	v.FilePath("log.file", cfg.Log.File)

	v.PositiveDuration("session.overlay_detach_timeout", cfg.Session.OverlayDetachTimeout)
	v.PositiveDuration("session.position_update_interval", cfg.Session.PositionUpdateInterval)
	v.PositiveDuration("session.shutdown_timeout", cfg.Session.ShutdownTimeout)
	v.Custom("session.escalation", cfg.Session.Escalation, func(val interface{}) error {
		_, err := watchdog.ParsePolicy(val.(string))
		return err
	})

	v.Positive("upstream.breaker_threshold", cfg.Upstream.BreakerThreshold)
	v.PositiveDuration("upstream.breaker_reset", cfg.Upstream.BreakerReset)

	if cfg.Admin.Listen != "" {
		v.ListenAddr("admin.listen", cfg.Admin.Listen)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.NotEmpty("telemetry.service_name", cfg.Telemetry.ServiceName)
	}
	v.Fraction("telemetry.sampling_rate", cfg.Telemetry.SamplingRate)

	validateHardware(v, cfg.Hardware)
	validateInputs(v, cfg.Reference.Inputs)

	return v.Err()
}

func validateHardware(v *validate.Validator, hw HardwareConfig) {
	seen := make(map[int]bool, len(hw.Devices))
	for i, d := range hw.Devices {
		field := fmt.Sprintf("hardware.devices[%d]", i)
		v.NonNegative(field+".device_id", d.DeviceID)
		v.OneOf(field+".type", d.Type, inputTypes)
		if seen[d.DeviceID] {
			v.AddError(field+".device_id", "duplicate device id", d.DeviceID)
		}
		seen[d.DeviceID] = true
	}
	seenHdmi := make(map[int]bool, len(hw.HdmiDevices))
	for i, d := range hw.HdmiDevices {
		field := fmt.Sprintf("hardware.hdmi_devices[%d]", i)
		v.NonNegative(field+".id", d.ID)
		v.NonNegative(field+".port_id", d.PortID)
		if seenHdmi[d.ID] {
			v.AddError(field+".id", "duplicate hdmi device id", d.ID)
		}
		seenHdmi[d.ID] = true
	}
}

func validateInputs(v *validate.Validator, inputs []InputConfig) {
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		field := fmt.Sprintf("reference.inputs[%d]", i)
		v.NotEmpty(field+".id", in.ID)
		if in.Type != "" {
			v.OneOf(field+".type", in.Type, inputTypes)
		}
		if in.ID != "" && seen[in.ID] {
			v.AddError(field+".id", "duplicate input id", in.ID)
		}
		if in.HardwareInput != "" && in.HardwareInput == in.ID {
			v.AddError(field+".hardware_input", "input cannot wrap itself", in.HardwareInput)
		}
		seen[in.ID] = true
	}
}
