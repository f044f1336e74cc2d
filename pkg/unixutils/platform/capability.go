// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package platform

import (
	"github.com/DataDog/unixutils/pkg/unixutils/native"
)

// Reason explains why a Capability is disabled.
type Reason int

const (
	// ReasonNone is the reason of an enabled Capability.
	ReasonNone Reason = iota
	// ReasonUnsupported means the OS/architecture pairing is not validated.
	ReasonUnsupported
	// ReasonDisabledByConfig means unixutils.enabled is false.
	ReasonDisabledByConfig
	// ReasonBindingFailure means the native entry points could not be bound.
	ReasonBindingFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "enabled"
	case ReasonUnsupported:
		return "unsupported platform"
	case ReasonDisabledByConfig:
		return "disabled by configuration"
	case ReasonBindingFailure:
		return "binding failure"
	default:
		return "unknown"
	}
}

// Capability is the process-wide result of detection. It is never mutated
// after creation and is safe to share between goroutines.
type Capability struct {
	platform Platform
	bindings *native.Bindings
	reason   Reason
	err      error
}

// Supported reports whether native integration is usable.
func (c *Capability) Supported() bool {
	return c != nil && c.bindings != nil
}

// Calls returns the bound entry points, nil when not supported.
func (c *Capability) Calls() native.Calls {
	if !c.Supported() {
		return nil
	}
	return c.bindings.Calls()
}

// Bindings returns the symbol bindings, nil when not supported.
func (c *Capability) Bindings() *native.Bindings {
	if c == nil {
		return nil
	}
	return c.bindings
}

// Platform returns the detected platform.
func (c *Capability) Platform() Platform {
	if c == nil {
		return Platform{}
	}
	return c.platform
}

// Reason returns why the capability is disabled, ReasonNone when enabled.
func (c *Capability) Reason() Reason {
	if c == nil {
		return ReasonUnsupported
	}
	return c.reason
}

// Err returns the binding error when Reason is ReasonBindingFailure.
func (c *Capability) Err() error {
	if c == nil {
		return nil
	}
	return c.err
}

// Disabled returns a Capability forcing every component onto its fallback.
func Disabled(reason Reason) *Capability {
	return &Capability{reason: reason}
}

// Enabled returns a supported Capability backed by calls, typically a test
// double standing in for the kernel.
func Enabled(p Platform, calls native.Calls) *Capability {
	return &Capability{platform: p, bindings: native.BindCalls("static", calls)}
}
