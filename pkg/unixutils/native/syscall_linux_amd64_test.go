// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build linux && amd64

package native

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestConstantsMatchKernelHeaders(t *testing.T) {
	assert.EqualValues(t, unix.SIOCINQ, SIOCINQ)
	assert.EqualValues(t, unix.SIOCOUTQ, SIOCOUTQ)
	assert.EqualValues(t, unix.SOL_SOCKET, SOL_SOCKET)
	assert.EqualValues(t, unix.SO_TIMESTAMP, SO_TIMESTAMP)
	assert.EqualValues(t, unix.SO_TIMESTAMPNS, SO_TIMESTAMPNS)
	assert.EqualValues(t, unix.CLOCK_REALTIME, CLOCK_REALTIME)
}

func TestBindSyscallBackend(t *testing.T) {
	b, err := Bind(BackendSyscall, Options{})
	require.NoError(t, err)
	assert.Equal(t, BackendSyscall, b.Backend())

	asInt, _ := b.Table().Lookup(OpIoctlReturnsInt)
	asLongs, _ := b.Table().Lookup(OpIoctlReturnsLongs)
	assert.Equal(t, asInt, asLongs)
	assert.EqualValues(t, unix.SYS_IOCTL, asInt.Addr)

	clock, _ := b.Table().Lookup(OpClockGettime)
	assert.EqualValues(t, unix.SYS_CLOCK_GETTIME, clock.Addr)
}

func TestSyscallClockGettime(t *testing.T) {
	b, err := Bind(BackendSyscall, Options{})
	require.NoError(t, err)

	before := time.Now().UnixNano()
	ts, err := b.Calls().ClockGettime(CLOCK_REALTIME)
	require.NoError(t, err)
	after := time.Now().UnixNano()

	got := TimespecNanos(ts)
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
	assert.Less(t, ts[1], int64(NanosPerSecond))
}

func TestSyscallBadDescriptor(t *testing.T) {
	b, err := Bind(BackendSyscall, Options{})
	require.NoError(t, err)

	_, err = b.Calls().IoctlReturnsInt(-1, SIOCINQ)
	require.Error(t, err)
	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, OpIoctlReturnsInt, callErr.Op)
	assert.ErrorIs(t, err, syscall.EBADF)

	_, err = b.Calls().IoctlReturnsLongs(-1, SIOCGSTAMPNS)
	assert.ErrorIs(t, err, syscall.EBADF)

	err = b.Calls().Setsockopt(-1, SOL_SOCKET, SO_TIMESTAMPNS, 1)
	assert.ErrorIs(t, err, syscall.EBADF)
}
