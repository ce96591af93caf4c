// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by the loader.
const (
	EnvLogLevel             = "LOG_LEVEL"
	EnvLogFile              = "LOG_FILE"
	EnvOverlayDetachTimeout = "TVINPUT_OVERLAY_DETACH_TIMEOUT"
	EnvPositionInterval     = "TVINPUT_POSITION_INTERVAL"
	EnvEscalation           = "TVINPUT_ESCALATION"
	EnvShutdownTimeout      = "TVINPUT_SHUTDOWN_TIMEOUT"
	EnvBreakerThreshold     = "TVINPUT_BREAKER_THRESHOLD"
	EnvBreakerReset         = "TVINPUT_BREAKER_RESET"
	EnvAdminListen          = "TVINPUT_ADMIN_LISTEN"
	EnvTracingEnabled       = "TVINPUT_TRACING_ENABLED"
	EnvTracingExporter      = "TVINPUT_TRACING_EXPORTER"
	EnvTracingEndpoint      = "TVINPUT_TRACING_ENDPOINT"
	EnvTracingSamplingRate  = "TVINPUT_TRACING_SAMPLING_RATE"
	EnvTracingServiceName   = "TVINPUT_TRACING_SERVICE_NAME"
)

// Loader builds an AppConfig with precedence ENV > file > defaults.
type Loader struct {
	configPath      string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty configPath means environment-only.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath:      configPath,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Path returns the config file path, or "" when running environment-only.
func (l *Loader) Path() string { return l.configPath }

// Load parses the file strictly, applies environment overrides and validates
// the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	}
	l.applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// EnvKeys lists the environment variables consulted by the last Load.
func (l *Loader) EnvKeys() []string {
	keys := make([]string, 0, len(l.ConsumedEnvKeys))
	for k := range l.ConsumedEnvKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadFile decodes path on top of cfg, so omitted keys keep their defaults.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrMultipleDocuments
	}
	return nil
}

func (l *Loader) applyEnv(cfg *AppConfig) {
	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.File = l.envString(EnvLogFile, cfg.Log.File)

	cfg.Session.OverlayDetachTimeout = l.envDuration(EnvOverlayDetachTimeout, cfg.Session.OverlayDetachTimeout)
	cfg.Session.PositionUpdateInterval = l.envDuration(EnvPositionInterval, cfg.Session.PositionUpdateInterval)
	cfg.Session.Escalation = l.envString(EnvEscalation, cfg.Session.Escalation)
	cfg.Session.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.Session.ShutdownTimeout)

	cfg.Upstream.BreakerThreshold = l.envInt(EnvBreakerThreshold, cfg.Upstream.BreakerThreshold)
	cfg.Upstream.BreakerReset = l.envDuration(EnvBreakerReset, cfg.Upstream.BreakerReset)

	cfg.Admin.Listen = l.envString(EnvAdminListen, cfg.Admin.Listen)

	cfg.Telemetry.Enabled = l.envBool(EnvTracingEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvTracingExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvTracingEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvTracingSamplingRate, cfg.Telemetry.SamplingRate)
	cfg.Telemetry.ServiceName = l.envString(EnvTracingServiceName, cfg.Telemetry.ServiceName)
}
