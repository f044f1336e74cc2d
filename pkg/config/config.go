// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package config holds the viper-backed configuration of unixutils and the
// logger setup built from it.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/DataDog/viper"
	"go.uber.org/atomic"
)

const (
	// NativeBackendSyscall invokes the kernel directly through golang.org/x/sys/unix.
	NativeBackendSyscall = "syscall"
	// NativeBackendLibc resolves the entry points in the C runtime with dlopen/dlsym.
	NativeBackendLibc = "libc"
)

// Config is the subset of viper used by unixutils. Implementations are safe
// for concurrent use.
type Config interface {
	GetString(key string) string
	GetBool(key string) bool
	IsSet(key string) bool
	Set(key string, value interface{})
	BindEnvAndSetDefault(key string, val interface{}, envvars ...string)
	SetConfigFile(path string)
	ReadInConfig() error
	IsReady() bool
}

// Global is the process configuration, read by the default facade.
var Global Config

func init() {
	Global = NewConfig("unixutils", "DD", strings.NewReplacer(".", "_"))
	InitConfig(Global)
}

// InitConfig declares every key read by unixutils together with its default.
func InitConfig(cfg Config) {
	cfg.BindEnvAndSetDefault("log_level", "info")
	cfg.BindEnvAndSetDefault("log_file", "")

	cfg.BindEnvAndSetDefault("unixutils.enabled", true)
	cfg.BindEnvAndSetDefault("unixutils.native_backend", NativeBackendSyscall)
	cfg.BindEnvAndSetDefault("unixutils.libc_library", "libc.so.6")
	// clock_gettime historically lives in librt on Linux.
	cfg.BindEnvAndSetDefault("unixutils.rt_library", "librt.so.1")
	cfg.BindEnvAndSetDefault("unixutils.telemetry.enabled", true)
}

// safeConfig wraps viper with a lock, viper itself is not thread safe.
type safeConfig struct {
	sync.RWMutex
	v     *viper.Viper
	ready *atomic.Bool
}

// NewConfig returns a new viper config reading env vars prefixed by envPrefix.
func NewConfig(name string, envPrefix string, envKeyReplacer *strings.Replacer) Config {
	c := &safeConfig{
		v:     viper.New(),
		ready: atomic.NewBool(false),
	}
	c.v.SetTypeByDefaultValue(true)
	c.v.SetConfigName(name)
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(envKeyReplacer)
	return c
}

func (c *safeConfig) GetString(key string) string {
	c.RLock()
	defer c.RUnlock()
	return c.v.GetString(key)
}

func (c *safeConfig) GetBool(key string) bool {
	c.RLock()
	defer c.RUnlock()
	return c.v.GetBool(key)
}

func (c *safeConfig) IsSet(key string) bool {
	c.RLock()
	defer c.RUnlock()
	return c.v.IsSet(key)
}

// Set overrides a value, used by command line flags and tests.
func (c *safeConfig) Set(key string, value interface{}) {
	c.Lock()
	defer c.Unlock()
	c.v.Set(key, value)
}

func (c *safeConfig) BindEnvAndSetDefault(key string, val interface{}, envvars ...string) {
	c.Lock()
	defer c.Unlock()
	c.v.SetDefault(key, val)
	args := append([]string{key}, envvars...)
	c.v.BindEnv(args...) //nolint:errcheck
}

func (c *safeConfig) SetConfigFile(path string) {
	c.Lock()
	defer c.Unlock()
	c.v.SetConfigFile(path)
}

// ReadInConfig loads the configuration file and marks the config as ready.
func (c *safeConfig) ReadInConfig() error {
	c.Lock()
	defer c.Unlock()
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}
	c.ready.Store(true)
	return nil
}

// IsReady reports whether a configuration file was successfully loaded.
func (c *safeConfig) IsReady() bool {
	return c.ready.Load()
}

// Load reads path into cfg. An empty path keeps defaults and environment.
func Load(cfg Config, path string) error {
	if path == "" {
		return nil
	}
	cfg.SetConfigFile(path)
	return cfg.ReadInConfig()
}
