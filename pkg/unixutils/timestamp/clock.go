// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package timestamp

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/DataDog/unixutils/pkg/unixutils/native"
	"github.com/DataDog/unixutils/pkg/unixutils/telemetry"
	"github.com/DataDog/unixutils/pkg/util/log"
)

// Clock reads the wall clock in nanoseconds since the UNIX epoch.
type Clock interface {
	Nanos() int64
}

// coarseClock has millisecond precision, promoted to nanoseconds.
type coarseClock struct {
	clock clock.Clock
}

func (c coarseClock) Nanos() int64 {
	return c.clock.Now().UnixMilli() * int64(time.Millisecond)
}

// preciseClock reads CLOCK_REALTIME, the clock the kernel stamps received
// packets with. A failed read falls back to the coarse clock for that call.
type preciseClock struct {
	calls    native.Calls
	fallback Clock
	tel      *telemetry.Telemetry
}

func (c preciseClock) Nanos() int64 {
	ts, err := c.calls.ClockGettime(native.CLOCK_REALTIME)
	if err != nil {
		c.tel.SyscallFailed(string(native.OpClockGettime))
		c.tel.Fallback(opNow)
		log.Errorf("Unable to read the realtime clock, using the coarse clock: %s", err)
		return c.fallback.Nanos()
	}
	return native.TimespecNanos(ts)
}
