// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build linux && (amd64 || arm64)

package libc

import (
	"errors"
	"fmt"

	"github.com/ebitengine/purego"

	"github.com/DataDog/unixutils/pkg/unixutils/native"
)

func init() {
	native.RegisterBackend(native.BackendLibc, bind)
}

// libraryFor returns which of the two loaded libraries holds a symbol.
func libraryFor(symbol string, opts native.Options) string {
	if symbol == "clock_gettime" {
		return opts.RtLibrary
	}
	return opts.LibcLibrary
}

func bind(opts native.Options) (*native.Bindings, error) {
	libc, err := purego.Dlopen(opts.LibcLibrary, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, &native.BindingError{Backend: native.BackendLibc, Cause: native.CauseRuntimeAbsent, Err: err}
	}
	// Handles stay open for the lifetime of the process.
	handles := map[string]uintptr{opts.LibcLibrary: libc}
	if opts.RtLibrary != opts.LibcLibrary {
		rt, err := purego.Dlopen(opts.RtLibrary, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			return nil, &native.BindingError{Backend: native.BackendLibc, Cause: native.CauseSymbolUnresolved, Err: err}
		}
		handles[opts.RtLibrary] = rt
	}

	table, err := native.Resolve(native.BackendLibc, func(name string) (native.Symbol, error) {
		lib := libraryFor(name, opts)
		addr, err := purego.Dlsym(handles[lib], name)
		if err != nil {
			return native.Symbol{}, err
		}
		if addr == 0 {
			return native.Symbol{}, fmt.Errorf("%s resolved to a nil address in %s", name, lib)
		}
		return native.Symbol{Name: name, Library: lib, Addr: addr}, nil
	})
	if err != nil {
		return nil, err
	}

	ioctl, _ := table.Lookup(native.OpIoctlReturnsInt)
	setsockopt, _ := table.Lookup(native.OpSetsockopt)
	clock, _ := table.Lookup(native.OpClockGettime)

	// RegisterFunc panics when a signature is not supported by the purego
	// version in use, Bind reports it as an incompatible runtime.
	c := &libcCalls{}
	purego.RegisterFunc(&c.ioctlInt, ioctl.Addr)
	purego.RegisterFunc(&c.ioctlLongs, ioctl.Addr)
	purego.RegisterFunc(&c.setsockopt, setsockopt.Addr)
	purego.RegisterFunc(&c.clockGettime, clock.Addr)

	return native.NewBindings(native.BackendLibc, table, c), nil
}

// libcCalls holds two Go signatures over the same ioctl address, one per
// shape of its last argument.
type libcCalls struct {
	ioctlInt     func(fd int32, req uint64, value *int32) int32
	ioctlLongs   func(fd int32, req uint64, value *[2]int64) int32
	setsockopt   func(fd int32, level int32, opt int32, value *int32, length uint32) int32
	clockGettime func(clockID int32, ts *[2]int64) int32
}

// errCallFailed is reported when libc returns -1. errno is thread-local to
// the C side and not surfaced by purego.
var errCallFailed = errors.New("call returned -1")

func (c *libcCalls) IoctlReturnsInt(fd int, req uint) (int32, error) {
	var value int32
	if c.ioctlInt(int32(fd), uint64(req), &value) == -1 {
		return 0, &native.CallError{Op: native.OpIoctlReturnsInt, Req: req, Err: errCallFailed}
	}
	return value, nil
}

func (c *libcCalls) IoctlReturnsLongs(fd int, req uint) ([2]int64, error) {
	var value [2]int64
	if c.ioctlLongs(int32(fd), uint64(req), &value) == -1 {
		return [2]int64{}, &native.CallError{Op: native.OpIoctlReturnsLongs, Req: req, Err: errCallFailed}
	}
	return value, nil
}

func (c *libcCalls) Setsockopt(fd int, level int, opt int, value int32) error {
	if c.setsockopt(int32(fd), int32(level), int32(opt), &value, 4) == -1 {
		return &native.CallError{Op: native.OpSetsockopt, Err: errCallFailed}
	}
	return nil
}

func (c *libcCalls) ClockGettime(clockID int) ([2]int64, error) {
	var ts [2]int64
	if c.clockGettime(int32(clockID), &ts) == -1 {
		return [2]int64{}, &native.CallError{Op: native.OpClockGettime, Err: errCallFailed}
	}
	return ts, nil
}
