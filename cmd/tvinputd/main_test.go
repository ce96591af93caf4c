// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/tvinput/internal/version"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tvinputd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
}

func TestConfigValidate_Valid(t *testing.T) {
	path := writeFile(t, "session:\n  escalation: exit\n")
	out, _, err := execute(t, "config", "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, path+" is valid")
}

func TestConfigValidate_ReportsEveryField(t *testing.T) {
	path := writeFile(t, "session:\n  escalation: panic\nupstream:\n  breaker_threshold: -1\n")
	_, errOut, err := execute(t, "config", "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "session.escalation")
	assert.Contains(t, errOut, "upstream.breaker_threshold")
}

func TestConfigValidate_UnknownField(t *testing.T) {
	path := writeFile(t, "sessions:\n  escalation: exit\n")
	_, errOut, err := execute(t, "config", "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "Configuration error in "+path)
}

func TestConfigDump_JSON(t *testing.T) {
	path := writeFile(t, "admin:\n  listen: 127.0.0.1:9999\n")
	out, _, err := execute(t, "config", "dump", "-c", path, "--format", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	admin, ok := got["Admin"].(map[string]any)
	require.True(t, ok, "dump output: %s", out)
	assert.Equal(t, "127.0.0.1:9999", admin["Listen"])
}

func TestConfigDump_YAML(t *testing.T) {
	out, _, err := execute(t, "config", "dump", "-c", writeFile(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug")
	assert.Contains(t, out, "escalation: exit")
}

func TestConfigDump_UnsupportedFormat(t *testing.T) {
	_, _, err := execute(t, "config", "dump", "--format", "toml")
	require.Error(t, err)
}
