// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build linux && amd64

package native

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

var syscallTraps = map[string]uintptr{
	"ioctl":         unix.SYS_IOCTL,
	"setsockopt":    unix.SYS_SETSOCKOPT,
	"clock_gettime": unix.SYS_CLOCK_GETTIME,
}

func init() {
	RegisterBackend(BackendSyscall, bindSyscall)
}

func bindSyscall(_ Options) (*Bindings, error) {
	table, err := Resolve(BackendSyscall, func(name string) (Symbol, error) {
		trap, ok := syscallTraps[name]
		if !ok {
			return Symbol{}, fmt.Errorf("no system call named %s", name)
		}
		return Symbol{Name: name, Library: "kernel", Addr: trap}, nil
	})
	if err != nil {
		return nil, err
	}

	ioctl, _ := table.Lookup(OpIoctlReturnsInt)
	setsockopt, _ := table.Lookup(OpSetsockopt)
	clock, _ := table.Lookup(OpClockGettime)

	return NewBindings(BackendSyscall, table, &syscallCalls{
		ioctl:        ioctl.Addr,
		setsockopt:   setsockopt.Addr,
		clockGettime: clock.Addr,
	}), nil
}

type syscallCalls struct {
	ioctl        uintptr
	setsockopt   uintptr
	clockGettime uintptr
}

func (c *syscallCalls) IoctlReturnsInt(fd int, req uint) (int32, error) {
	var value int32
	_, _, errno := unix.Syscall(c.ioctl, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&value)))
	if errno != 0 {
		return 0, &CallError{Op: OpIoctlReturnsInt, Req: req, Err: errno}
	}
	return value, nil
}

func (c *syscallCalls) IoctlReturnsLongs(fd int, req uint) ([2]int64, error) {
	var value [2]int64
	_, _, errno := unix.Syscall(c.ioctl, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&value)))
	if errno != 0 {
		return [2]int64{}, &CallError{Op: OpIoctlReturnsLongs, Req: req, Err: errno}
	}
	return value, nil
}

func (c *syscallCalls) Setsockopt(fd int, level int, opt int, value int32) error {
	_, _, errno := unix.Syscall6(c.setsockopt, uintptr(fd), uintptr(level), uintptr(opt),
		uintptr(unsafe.Pointer(&value)), unsafe.Sizeof(value), 0)
	if errno != 0 {
		return &CallError{Op: OpSetsockopt, Err: errno}
	}
	return nil
}

func (c *syscallCalls) ClockGettime(clockID int) ([2]int64, error) {
	var ts [2]int64
	_, _, errno := unix.Syscall(c.clockGettime, uintptr(clockID), uintptr(unsafe.Pointer(&ts)), 0)
	if errno != 0 {
		return [2]int64{}, &CallError{Op: OpClockGettime, Err: errno}
	}
	return ts, nil
}
