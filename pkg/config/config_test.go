// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() Config {
	cfg := NewConfig("unixutils", "DD", strings.NewReplacer(".", "_"))
	InitConfig(cfg)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := newTestConfig()

	assert.Equal(t, "info", cfg.GetString("log_level"))
	assert.True(t, cfg.GetBool("unixutils.enabled"))
	assert.Equal(t, NativeBackendSyscall, cfg.GetString("unixutils.native_backend"))
	assert.Equal(t, "librt.so.1", cfg.GetString("unixutils.rt_library"))
	assert.Equal(t, "libc.so.6", cfg.GetString("unixutils.libc_library"))
	assert.True(t, cfg.GetBool("unixutils.telemetry.enabled"))
	assert.False(t, cfg.IsReady())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DD_UNIXUTILS_ENABLED", "false")
	t.Setenv("DD_UNIXUTILS_NATIVE_BACKEND", "libc")
	cfg := newTestConfig()

	assert.False(t, cfg.GetBool("unixutils.enabled"))
	assert.Equal(t, NativeBackendLibc, cfg.GetString("unixutils.native_backend"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unixutils.yaml")
	content := "log_level: debug\nunixutils:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := newTestConfig()
	require.NoError(t, Load(cfg, path))

	assert.True(t, cfg.IsReady())
	assert.Equal(t, "debug", cfg.GetString("log_level"))
	assert.False(t, cfg.GetBool("unixutils.enabled"))
	assert.Equal(t, NativeBackendSyscall, cfg.GetString("unixutils.native_backend"))
}

func TestLoadMissingFile(t *testing.T) {
	cfg := newTestConfig()
	assert.NoError(t, Load(cfg, ""))
	assert.Error(t, Load(cfg, filepath.Join(t.TempDir(), "missing.yaml")))
	assert.False(t, cfg.IsReady())
}

func TestSetOverridesDefault(t *testing.T) {
	cfg := newTestConfig()
	cfg.Set("unixutils.native_backend", NativeBackendLibc)
	assert.Equal(t, NativeBackendLibc, cfg.GetString("unixutils.native_backend"))
}

func TestBuildLoggerConfig(t *testing.T) {
	withFile := buildLoggerConfig("DEBUG", "/var/log/unixutils.log")
	assert.Contains(t, withFile, `minlevel="debug"`)
	assert.Contains(t, withFile, `filename="/var/log/unixutils.log"`)

	consoleOnly := buildLoggerConfig("info", "")
	assert.NotContains(t, consoleOnly, "rollingfile")
	assert.Contains(t, consoleOnly, "%Date(2006-01-02 15:04:05 MST)")
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, SetupLogger("verbose", ""))
}
