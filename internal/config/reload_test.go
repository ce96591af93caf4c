// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeLevel(t *testing.T, path, level string) {
	t.Helper()
	content := fmt.Sprintf("log:\n  level: %s\n", level)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func newHolder(t *testing.T, level string) (*ConfigHolder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeLevel(t, path, level)
	loader := NewLoader(path)
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load initial config: %v", err)
	}
	return NewConfigHolder(initial, loader), path
}

func TestConfigHolder_Reload_Success(t *testing.T) {
	holder, path := newHolder(t, "info")
	writeLevel(t, path, "debug")

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if got := holder.Get().Log.Level; got != "debug" {
		t.Errorf("expected level %q after reload, got %q", "debug", got)
	}
}

func TestConfigHolder_Reload_ValidationFailure(t *testing.T) {
	holder, path := newHolder(t, "warn")

	invalid := "session:\n  overlay_detach_timeout: -1s\n"
	if err := os.WriteFile(path, []byte(invalid), 0o600); err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	if err := holder.Reload(context.Background()); err == nil {
		t.Fatal("expected Reload() to fail with validation error, got nil")
	}
	if got := holder.Get().Log.Level; got != "warn" {
		t.Errorf("expected old config to be preserved, got level %q", got)
	}
}

func TestConfigHolder_RegisterListener(t *testing.T) {
	holder, path := newHolder(t, "info")

	ch := make(chan AppConfig, 1)
	full := make(chan AppConfig)
	holder.RegisterListener(full)
	holder.RegisterListener(ch)

	writeLevel(t, path, "error")
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	select {
	case received := <-ch:
		if received.Log.Level != "error" {
			t.Errorf("expected listener to receive level %q, got %q", "error", received.Log.Level)
		}
	default:
		t.Fatal("listener did not receive the reloaded config")
	}
}

func TestConfigHolder_StartWatcher_WithoutFile(t *testing.T) {
	holder := NewConfigHolder(Defaults(), NewLoader(""))
	require.NoError(t, holder.StartWatcher(context.Background()))
	holder.Stop()
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	holder, path := newHolder(t, "info")
	holder.debounce = 10 * time.Millisecond

	ch := make(chan AppConfig, 4)
	holder.RegisterListener(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, holder.StartWatcher(ctx))

	writeLevel(t, path, "debug")

	select {
	case cfg := <-ch:
		require.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload the config")
	}

	holder.Stop()
	// Let a trailing debounce from the same write finish.
	time.Sleep(50 * time.Millisecond)
}
