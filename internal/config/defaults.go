// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

const (
	DefaultLogLevel               = "info"
	DefaultOverlayDetachTimeout   = 5 * time.Second
	DefaultPositionUpdateInterval = 1000 * time.Millisecond
	DefaultEscalation             = "exit"
	DefaultShutdownTimeout        = 5 * time.Second
	DefaultBreakerThreshold       = 3
	DefaultBreakerReset           = 30 * time.Second
	DefaultAdminListen            = "127.0.0.1:8089"
	DefaultTelemetryExporter      = "grpc"
	DefaultTelemetryEndpoint      = "localhost:4317"
	DefaultTelemetrySamplingRate  = 1.0
	DefaultServiceName            = "tvinputd"
)

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() AppConfig {
	return AppConfig{
		Log: LogConfig{Level: DefaultLogLevel},
		Session: SessionConfig{
			OverlayDetachTimeout:   DefaultOverlayDetachTimeout,
			PositionUpdateInterval: DefaultPositionUpdateInterval,
			Escalation:             DefaultEscalation,
			ShutdownTimeout:        DefaultShutdownTimeout,
		},
		Upstream: UpstreamConfig{
			BreakerThreshold: DefaultBreakerThreshold,
			BreakerReset:     DefaultBreakerReset,
		},
		Admin: AdminConfig{Listen: DefaultAdminListen},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultTelemetryExporter,
			Endpoint:     DefaultTelemetryEndpoint,
			SamplingRate: DefaultTelemetrySamplingRate,
			ServiceName:  DefaultServiceName,
		},
	}
}
