// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package native

// These values are correct for x86_64 Linux only. Porting to another
// platform requires re-deriving every one of them.
const (
	// SIOCINQ returns the number of unread bytes in the receive queue.
	SIOCINQ = 0x541B
	// SIOCOUTQ returns the number of unsent or unacknowledged bytes in the send queue.
	SIOCOUTQ = 0x5411
	// SIOCGSTAMP returns the receive timestamp of the last packet as a timeval.
	SIOCGSTAMP = 0x8906
	// SIOCGSTAMPNS returns the receive timestamp of the last packet as a timespec.
	SIOCGSTAMPNS = 0x8907

	// SOL_SOCKET is the socket level for setsockopt.
	SOL_SOCKET = 1 //nolint:revive
	// SO_TIMESTAMP enables microsecond receive timestamps.
	SO_TIMESTAMP = 29 //nolint:revive
	// SO_TIMESTAMPNS enables nanosecond receive timestamps.
	SO_TIMESTAMPNS = 35 //nolint:revive

	// CLOCK_REALTIME is the wall clock id for clock_gettime.
	CLOCK_REALTIME = 0 //nolint:revive

	// NanosPerSecond converts the seconds word of a timespec.
	NanosPerSecond = 1000000000
)

// TimespecNanos combines a {sec, nsec} pair into nanoseconds since the epoch.
func TimespecNanos(ts [2]int64) int64 {
	return ts[0]*NanosPerSecond + ts[1]
}
