// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the complete tvinputd configuration.
type AppConfig struct {
	Log       LogConfig       `yaml:"log"`
	Session   SessionConfig   `yaml:"session"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Admin     AdminConfig     `yaml:"admin"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Reference ReferenceConfig `yaml:"reference"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SessionConfig tunes the session actors and the dispatcher.
type SessionConfig struct {
	// OverlayDetachTimeout bounds how long a removed overlay may stay attached.
	OverlayDetachTimeout time.Duration `yaml:"overlay_detach_timeout"`
	// PositionUpdateInterval is the time-shift sampling period.
	PositionUpdateInterval time.Duration `yaml:"position_update_interval"`
	// Escalation is "report" or "exit".
	Escalation      string        `yaml:"escalation"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type UpstreamConfig struct {
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerReset     time.Duration `yaml:"breaker_reset"`
}

type AdminConfig struct {
	// Listen is the admin HTTP address. Empty disables the admin server.
	Listen string `yaml:"listen"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	ServiceName  string  `yaml:"service_name"`
}

// HardwareConfig is the static topology announced once at startup.
type HardwareConfig struct {
	Devices     []HardwareDevice `yaml:"devices"`
	HdmiDevices []HdmiDevice     `yaml:"hdmi_devices"`
}

type HardwareDevice struct {
	DeviceID  int    `yaml:"device_id"`
	Type      string `yaml:"type"`
	HDMIPort  int    `yaml:"hdmi_port"`
	AudioType string `yaml:"audio_type"`
}

type HdmiDevice struct {
	ID          int    `yaml:"id"`
	LogicalAddr int    `yaml:"logical_addr"`
	PortID      int    `yaml:"port_id"`
	DisplayName string `yaml:"display_name"`
}

// ReferenceConfig describes the inputs served by the built-in reference host.
type ReferenceConfig struct {
	Inputs []InputConfig `yaml:"inputs"`
}

// InputConfig declares one synthetic input.
type InputConfig struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	// Type is tuner, hdmi, composite or other.
	Type string `yaml:"type"`
	// HardwareInput makes the input a passthrough wrapper around a hardware input.
	HardwareInput string `yaml:"hardware_input"`
	Recording     bool   `yaml:"recording"`
	TimeShift     bool   `yaml:"time_shift"`
}
