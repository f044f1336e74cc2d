// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package sockqueue reads the number of bytes buffered in the kernel receive
// and send queues of a socket.
package sockqueue

import (
	"errors"
	"fmt"

	"github.com/DataDog/unixutils/pkg/unixutils/native"
	"github.com/DataDog/unixutils/pkg/unixutils/platform"
	"github.com/DataDog/unixutils/pkg/unixutils/telemetry"
	"github.com/DataDog/unixutils/pkg/util/log"
)

// ErrUnavailable is returned by the sample methods when native integration is
// disabled.
var ErrUnavailable = errors.New("socket queue lengths are unavailable on this platform")

type direction struct {
	name string
	req  uint
}

var (
	input  = direction{name: "input_queue_length", req: native.SIOCINQ}
	output = direction{name: "output_queue_length", req: native.SIOCOUTQ}
)

// Inspector reads queue lengths through the bound ioctl. It is safe for
// concurrent use.
type Inspector struct {
	calls native.Calls
	tel   *telemetry.Telemetry
}

// NewInspector returns an Inspector backed by c. tel may be nil.
func NewInspector(c *platform.Capability, tel *telemetry.Telemetry) *Inspector {
	return &Inspector{calls: c.Calls(), tel: tel}
}

// InputQueueLength returns the number of received bytes not yet read from fd.
//
// It returns 0 when native integration is disabled or the call fails, so an
// empty queue cannot be told apart from a missing measurement. Use
// InputQueueSample to make the difference.
func (i *Inspector) InputQueueLength(fd int) int {
	return i.length(fd, input)
}

// OutputQueueLength returns the number of bytes written to fd and not yet
// acknowledged by the peer. Failures are reported as 0, see InputQueueLength.
func (i *Inspector) OutputQueueLength(fd int) int {
	return i.length(fd, output)
}

// InputQueueSample is InputQueueLength reporting failures.
func (i *Inspector) InputQueueSample(fd int) (int, error) {
	return i.sample(fd, input)
}

// OutputQueueSample is OutputQueueLength reporting failures.
func (i *Inspector) OutputQueueSample(fd int) (int, error) {
	return i.sample(fd, output)
}

func (i *Inspector) sample(fd int, d direction) (int, error) {
	if i.calls == nil {
		return 0, ErrUnavailable
	}
	n, err := i.calls.IoctlReturnsInt(fd, d.req)
	if err != nil {
		i.tel.SyscallFailed(string(native.OpIoctlReturnsInt))
		return 0, fmt.Errorf("unable to read %s of descriptor %d: %w", d.name, fd, err)
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}

func (i *Inspector) length(fd int, d direction) int {
	n, err := i.sample(fd, d)
	if err != nil {
		i.tel.Fallback(d.name)
		if !errors.Is(err, ErrUnavailable) {
			log.Errorf("%s", err)
		}
		return 0
	}
	return n
}
