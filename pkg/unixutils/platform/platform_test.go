// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package platform

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/unixutils/pkg/config"
	"github.com/DataDog/unixutils/pkg/unixutils/native"
)

type fakeCalls struct{}

func (fakeCalls) IoctlReturnsInt(int, uint) (int32, error)     { return 7, nil }
func (fakeCalls) IoctlReturnsLongs(int, uint) ([2]int64, error) { return [2]int64{1, 2}, nil }
func (fakeCalls) Setsockopt(int, int, int, int32) error         { return nil }
func (fakeCalls) ClockGettime(int) ([2]int64, error)            { return [2]int64{3, 4}, nil }

func TestValidated(t *testing.T) {
	assert.True(t, Platform{OS: "linux", Arch: "amd64"}.Validated())
	assert.False(t, Platform{OS: "linux", Arch: "arm64"}.Validated())
	assert.False(t, Platform{OS: "darwin", Arch: "amd64"}.Validated())
	assert.False(t, Platform{OS: "windows", Arch: "386"}.Validated())
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "linux/amd64", Platform{OS: "linux", Arch: "amd64"}.String())
	assert.Equal(t, "linux/amd64 (kernel 6.1.0)", Platform{OS: "linux", Arch: "amd64", KernelVersion: "6.1.0"}.String())
}

func TestCurrent(t *testing.T) {
	p := Current()
	assert.Equal(t, runtime.GOOS, p.OS)
	assert.Equal(t, runtime.GOARCH, p.Arch)
}

func TestDetectUnsupportedPlatform(t *testing.T) {
	c := Detect(Platform{OS: "darwin", Arch: "arm64"}, DefaultOptions())
	assert.False(t, c.Supported())
	assert.Equal(t, ReasonUnsupported, c.Reason())
	assert.Nil(t, c.Calls())
	assert.Nil(t, c.Bindings())
	assert.NoError(t, c.Err())
}

func TestDetectDisabledByConfig(t *testing.T) {
	opts := DefaultOptions()
	opts.Enabled = false
	c := Detect(Platform{OS: ValidatedOS, Arch: ValidatedArch}, opts)
	assert.False(t, c.Supported())
	assert.Equal(t, ReasonDisabledByConfig, c.Reason())
}

func TestDetectBindingFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.Backend = "no-such-backend"
	c := Detect(Platform{OS: ValidatedOS, Arch: ValidatedArch}, opts)

	assert.False(t, c.Supported())
	assert.Equal(t, ReasonBindingFailure, c.Reason())
	var bindErr *native.BindingError
	require.ErrorAs(t, c.Err(), &bindErr)
	assert.Equal(t, native.CauseRuntimeAbsent, bindErr.Cause)
}

func TestDetectIncompatibleBackend(t *testing.T) {
	native.RegisterBackend("platform-test-panics", func(native.Options) (*native.Bindings, error) {
		panic("bridge too old")
	})
	opts := DefaultOptions()
	opts.Backend = "platform-test-panics"

	c := Detect(Platform{OS: ValidatedOS, Arch: ValidatedArch}, opts)
	assert.False(t, c.Supported())
	assert.Equal(t, ReasonBindingFailure, c.Reason())
	assert.Contains(t, c.Err().Error(), "bridge too old")
}

func TestEnabledDouble(t *testing.T) {
	c := Enabled(Platform{OS: "plan9", Arch: "mips"}, fakeCalls{})
	require.True(t, c.Supported())
	assert.Equal(t, ReasonNone, c.Reason())

	v, err := c.Calls().IoctlReturnsInt(3, native.SIOCINQ)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	asInt, _ := c.Bindings().Table().Lookup(native.OpIoctlReturnsInt)
	asLongs, _ := c.Bindings().Table().Lookup(native.OpIoctlReturnsLongs)
	assert.Equal(t, asInt, asLongs)
}

func TestDisabledDouble(t *testing.T) {
	c := Disabled(ReasonUnsupported)
	assert.False(t, c.Supported())
	assert.Nil(t, c.Calls())

	var nilCap *Capability
	assert.False(t, nilCap.Supported())
	assert.Equal(t, ReasonUnsupported, nilCap.Reason())
	assert.Nil(t, nilCap.Bindings())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig("unixutils", "DD", strings.NewReplacer(".", "_"))
	config.InitConfig(cfg)
	assert.Equal(t, DefaultOptions(), OptionsFromConfig(cfg))

	cfg.Set("unixutils.enabled", false)
	cfg.Set("unixutils.native_backend", native.BackendLibc)
	cfg.Set("unixutils.rt_library", "libc.so.6")
	opts := OptionsFromConfig(cfg)
	assert.False(t, opts.Enabled)
	assert.Equal(t, native.BackendLibc, opts.Backend)
	assert.Equal(t, "libc.so.6", opts.Native.RtLibrary)
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "enabled", ReasonNone.String())
	assert.Equal(t, "binding failure", ReasonBindingFailure.String())
	assert.Equal(t, "unknown", Reason(42).String())
}
