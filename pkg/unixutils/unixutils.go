// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package unixutils exposes kernel socket queue lengths, kernel packet receive
// timestamps and a nanosecond wall clock.
//
// Every operation degrades to a documented default when native integration
// is unavailable: queue lengths read as 0 and timestamps come from a
// millisecond clock. The only error surfaced is ExtractDescriptor rejecting a
// stream that is not backed by a descriptor.
//
// The package level functions use Default, detected once from the global
// configuration. Use New with a platform.Capability to inject another one.
package unixutils

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DataDog/unixutils/pkg/config"
	"github.com/DataDog/unixutils/pkg/unixutils/fd"
	"github.com/DataDog/unixutils/pkg/unixutils/platform"
	"github.com/DataDog/unixutils/pkg/unixutils/sockqueue"
	"github.com/DataDog/unixutils/pkg/unixutils/telemetry"
	"github.com/DataDog/unixutils/pkg/unixutils/timestamp"
	"github.com/DataDog/unixutils/pkg/util/funcs"
	"github.com/DataDog/unixutils/pkg/util/log"
)

// UnixUtils bundles the components sharing one Capability. It is safe for
// concurrent use.
type UnixUtils struct {
	capability *platform.Capability
	tel        *telemetry.Telemetry
	inspector  *sockqueue.Inspector
	timestamps *timestamp.Service
	queues     *telemetry.QueueCollector
}

// Option configures New.
type Option func(*settings)

type settings struct {
	tel   *telemetry.Telemetry
	clock clock.Clock
}

// WithTelemetry records native call failures and fallbacks in tel.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(s *settings) { s.tel = tel }
}

// WithClock sets the clock behind the coarse fallback.
func WithClock(c clock.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// New returns a UnixUtils backed by c. A nil c behaves as unsupported.
func New(c *platform.Capability, opts ...Option) *UnixUtils {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	tsOpts := []timestamp.Option{timestamp.WithTelemetry(s.tel)}
	if s.clock != nil {
		tsOpts = append(tsOpts, timestamp.WithClock(s.clock))
	}

	u := &UnixUtils{
		capability: c,
		tel:        s.tel,
		inspector:  sockqueue.NewInspector(c, s.tel),
		timestamps: timestamp.NewService(c, tsOpts...),
	}
	u.queues = telemetry.NewQueueCollector(u.inspector)
	s.tel.SetCapability(c.Supported())
	return u
}

// Default returns the process wide instance. Detection runs on the first call
// only, with the options read from config.Global.
var Default = funcs.MemoizeNoError(func() *UnixUtils {
	c := platform.Detect(platform.Current(), platform.OptionsFromConfig(config.Global))
	if !config.Global.GetBool("unixutils.telemetry.enabled") {
		return New(c)
	}

	tel := telemetry.New()
	u := New(c, WithTelemetry(tel))
	if err := tel.Register(prometheus.DefaultRegisterer); err != nil {
		log.Warnf("Unable to register unixutils telemetry: %s", err)
	}
	if err := prometheus.Register(u.queues); err != nil {
		log.Warnf("Unable to register the socket queue collector: %s", err)
	}
	return u
})

// IsSupported reports whether native integration is usable. The answer never
// changes for a given UnixUtils.
func (u *UnixUtils) IsSupported() bool {
	return u.capability.Supported()
}

// Capability returns the detection outcome u was built with.
func (u *UnixUtils) Capability() *platform.Capability {
	return u.capability
}

// ExtractDescriptor returns the raw descriptor backing stream, or an error
// matching fd.ErrTypeMismatch when stream is a wrapper.
func (u *UnixUtils) ExtractDescriptor(stream any) (int, error) {
	return fd.Extract(stream)
}

// InputQueueLength returns the bytes received on fd and not yet read, 0 when
// unknown.
func (u *UnixUtils) InputQueueLength(fd int) int {
	return u.inspector.InputQueueLength(fd)
}

// OutputQueueLength returns the bytes sent on fd and not yet acknowledged, 0
// when unknown.
func (u *UnixUtils) OutputQueueLength(fd int) int {
	return u.inspector.OutputQueueLength(fd)
}

// InputQueueSample is InputQueueLength reporting why no value is available.
func (u *UnixUtils) InputQueueSample(fd int) (int, error) {
	return u.inspector.InputQueueSample(fd)
}

// OutputQueueSample is OutputQueueLength reporting why no value is available.
func (u *UnixUtils) OutputQueueSample(fd int) (int, error) {
	return u.inspector.OutputQueueSample(fd)
}

// EnableReceiveTimestamps switches on kernel receive timestamps for fd. This
// has a host-wide cost, see timestamp.Service.EnableReceiveTimestamps.
func (u *UnixUtils) EnableReceiveTimestamps(fd int) {
	u.timestamps.EnableReceiveTimestamps(fd)
}

// ReceiveTimestampNanos returns when the data last read from fd arrived.
func (u *UnixUtils) ReceiveTimestampNanos(fd int) int64 {
	return u.timestamps.ReceiveTimestampNanos(fd)
}

// Now returns the wall clock in nanoseconds since the UNIX epoch.
func (u *UnixUtils) Now() int64 {
	return u.timestamps.Now()
}

// QueueCollector returns the Prometheus collector exporting the queue lengths
// of the sockets tracked on it.
func (u *UnixUtils) QueueCollector() *telemetry.QueueCollector {
	return u.queues
}

// Telemetry returns the metrics u records to, nil when disabled.
func (u *UnixUtils) Telemetry() *telemetry.Telemetry {
	return u.tel
}

// IsSupported calls Default().IsSupported.
func IsSupported() bool { return Default().IsSupported() }

// ExtractDescriptor calls Default().ExtractDescriptor.
func ExtractDescriptor(stream any) (int, error) { return Default().ExtractDescriptor(stream) }

// InputQueueLength calls Default().InputQueueLength.
func InputQueueLength(fd int) int { return Default().InputQueueLength(fd) }

// OutputQueueLength calls Default().OutputQueueLength.
func OutputQueueLength(fd int) int { return Default().OutputQueueLength(fd) }

// EnableReceiveTimestamps calls Default().EnableReceiveTimestamps.
func EnableReceiveTimestamps(fd int) { Default().EnableReceiveTimestamps(fd) }

// ReceiveTimestampNanos calls Default().ReceiveTimestampNanos.
func ReceiveTimestampNanos(fd int) int64 { return Default().ReceiveTimestampNanos(fd) }

// Now calls Default().Now.
func Now() int64 { return Default().Now() }
