// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package timestamp reads kernel packet receive timestamps and the wall clock,
// both as nanoseconds since the UNIX epoch so that they can be subtracted.
package timestamp

import (
	"github.com/benbjohnson/clock"

	"github.com/DataDog/unixutils/pkg/unixutils/native"
	"github.com/DataDog/unixutils/pkg/unixutils/platform"
	"github.com/DataDog/unixutils/pkg/unixutils/telemetry"
	"github.com/DataDog/unixutils/pkg/util/log"
)

const (
	opNow              = "now"
	opReceiveTimestamp = "receive_timestamp"
)

// Service is safe for concurrent use.
type Service struct {
	calls  native.Calls
	clock  Clock
	coarse Clock
	tel    *telemetry.Telemetry
}

// Option configures a Service.
type Option func(*options)

type options struct {
	clock clock.Clock
	tel   *telemetry.Telemetry
}

// WithClock sets the clock used by the coarse fallback, a mock in tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithTelemetry records failures and fallbacks in tel.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(o *options) { o.tel = tel }
}

// NewService returns a Service reading the clock natively when c is supported
// and from the coarse clock otherwise.
func NewService(c *platform.Capability, opts ...Option) *Service {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{
		calls:  c.Calls(),
		coarse: coarseClock{clock: o.clock},
		tel:    o.tel,
	}
	if s.calls != nil {
		s.clock = preciseClock{calls: s.calls, fallback: s.coarse, tel: s.tel}
	} else {
		s.clock = s.coarse
	}
	return s
}

// EnableReceiveTimestamps asks the kernel to record the arrival time of data
// received on fd, with nanosecond precision.
//
// On Linux this switches on receive timestamping for every socket of the
// host, not only fd: the cost is kernel-wide. Request it once per process.
// It is never switched off.
func (s *Service) EnableReceiveTimestamps(fd int) {
	if s.calls == nil {
		return
	}
	if err := s.calls.Setsockopt(fd, native.SOL_SOCKET, native.SO_TIMESTAMPNS, 1); err != nil {
		s.tel.SyscallFailed(string(native.OpSetsockopt))
		log.Errorf("Unable to enable receive timestamps on descriptor %d: %s", fd, err)
	}
}

// ReceiveTimestampNanos returns when the data last read from fd arrived.
//
// If timestamps were never enabled on fd the kernel reports the current time.
// When native integration is disabled or the call fails, the coarse clock is
// returned instead. Neither case can be told apart from a genuine timestamp.
func (s *Service) ReceiveTimestampNanos(fd int) int64 {
	if s.calls == nil {
		s.tel.Fallback(opReceiveTimestamp)
		return s.coarse.Nanos()
	}
	ts, err := s.calls.IoctlReturnsLongs(fd, native.SIOCGSTAMPNS)
	if err != nil {
		s.tel.SyscallFailed(string(native.OpIoctlReturnsLongs))
		s.tel.Fallback(opReceiveTimestamp)
		log.Debugf("Unable to read the receive timestamp of descriptor %d: %s", fd, err)
		return s.coarse.Nanos()
	}
	return native.TimespecNanos(ts)
}

// Now returns the current wall clock time, from the same clock as
// ReceiveTimestampNanos.
func (s *Service) Now() int64 {
	return s.clock.Nanos()
}
