// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package platform decides whether native socket introspection can be used on
// the running host.
//
// Detection happens once: Detect returns an immutable Capability which every
// other unixutils component receives by pointer. Tests build a Capability with
// Disabled or Enabled instead of probing the real OS.
package platform

import (
	"errors"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/DataDog/unixutils/pkg/config"
	"github.com/DataDog/unixutils/pkg/unixutils/native"
	"github.com/DataDog/unixutils/pkg/util/log"
)

// The only pairing the numeric constants in package native were derived for.
const (
	ValidatedOS   = "linux"
	ValidatedArch = "amd64"
)

// Platform identifies the running OS and CPU architecture.
type Platform struct {
	OS   string
	Arch string
	// KernelVersion is informational, empty when it cannot be read.
	KernelVersion string
}

// Current returns the platform of the running process.
func Current() Platform {
	p := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if v, err := host.KernelVersion(); err == nil {
		p.KernelVersion = v
	} else {
		log.Debugf("unable to read kernel version: %s", err)
	}
	return p
}

// Validated reports whether p is the pairing unixutils constants are valid for.
func (p Platform) Validated() bool {
	return p.OS == ValidatedOS && p.Arch == ValidatedArch
}

func (p Platform) String() string {
	if p.KernelVersion == "" {
		return p.OS + "/" + p.Arch
	}
	return p.OS + "/" + p.Arch + " (kernel " + p.KernelVersion + ")"
}

// Options controls detection.
type Options struct {
	// Enabled set to false disables native integration without probing.
	Enabled bool
	// Backend is the name of the native backend to bind with.
	Backend string
	Native  native.Options
}

// DefaultOptions returns the options matching the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Enabled: true,
		Backend: native.BackendSyscall,
		Native: native.Options{
			LibcLibrary: "libc.so.6",
			RtLibrary:   "librt.so.1",
		},
	}
}

// OptionsFromConfig reads the unixutils.* keys.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Enabled: cfg.GetBool("unixutils.enabled"),
		Backend: cfg.GetString("unixutils.native_backend"),
		Native: native.Options{
			LibcLibrary: cfg.GetString("unixutils.libc_library"),
			RtLibrary:   cfg.GetString("unixutils.rt_library"),
		},
	}
}

// Detect probes p and binds the native entry points when p is supported.
// Failures are logged and produce a disabled Capability, never an error.
func Detect(p Platform, opts Options) *Capability {
	if !opts.Enabled {
		log.Infof("unixutils disabled by configuration, kernel socket queue lengths and receive timestamps are unavailable")
		return &Capability{platform: p, reason: ReasonDisabledByConfig}
	}
	if !p.Validated() {
		log.Infof("unixutils not implemented on %s, native integration disabled", p)
		return &Capability{platform: p, reason: ReasonUnsupported}
	}

	bindings, err := native.Bind(opts.Backend, opts.Native)
	if err != nil {
		logBindingFailure(err)
		return &Capability{platform: p, reason: ReasonBindingFailure, err: err}
	}

	log.Debugf("unixutils enabled on %s using the %s backend", p, bindings.Backend())
	return &Capability{platform: p, bindings: bindings}
}

func logBindingFailure(err error) {
	var bindErr *native.BindingError
	if !errors.As(err, &bindErr) {
		log.Infof("Failed to bind native entry points: %s", err)
		return
	}
	switch bindErr.Cause {
	case native.CauseRuntimeAbsent:
		log.Infof("Could not locate native backend %q: %s", bindErr.Backend, bindErr.Err)
	case native.CauseSymbolUnresolved:
		log.Infof("Failed to link to native library: %s", bindErr.Err)
	case native.CauseRuntimeIncompatible:
		log.Warnf("Native backend %q is not compatible with this build: %s", bindErr.Backend, bindErr.Err) //nolint:errcheck
	default:
		log.Infof("Failed to bind native entry points: %s", err)
	}
}
