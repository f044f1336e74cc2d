// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package fd extracts the raw OS descriptor backing a stream.
package fd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

var (
	// ErrTypeMismatch is matched by every error returned for a stream that is
	// not backed by a descriptor, such as a buffering or compressing wrapper.
	ErrTypeMismatch = errors.New("stream is not backed by a raw descriptor")
	// ErrClosed is returned for a stream that was already closed.
	ErrClosed = errors.New("stream is closed")
)

// TypeMismatchError reports the dynamic type of the rejected stream.
type TypeMismatchError struct {
	Type string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot extract a descriptor from %s: %s", e.Type, ErrTypeMismatch)
}

// Is makes errors.Is(err, ErrTypeMismatch) hold.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// Extract returns the descriptor of stream, which must implement syscall.Conn:
// *net.TCPConn, *net.UDPConn, *net.UnixConn and *os.File all do.
//
// The descriptor is borrowed. It is only valid while stream is open and must
// not be closed by the caller. The stream blocking mode is left untouched.
func Extract(stream any) (int, error) {
	sc, ok := stream.(syscall.Conn)
	if !ok {
		return -1, &TypeMismatchError{Type: fmt.Sprintf("%T", stream)}
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, wrapClosed(err)
	}

	descriptor := -1
	if err := raw.Control(func(p uintptr) {
		descriptor = int(p)
	}); err != nil {
		return -1, wrapClosed(err)
	}
	return descriptor, nil
}

func wrapClosed(err error) error {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return fmt.Errorf("unable to access descriptor: %w", err)
}
