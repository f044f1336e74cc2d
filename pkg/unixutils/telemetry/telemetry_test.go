// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	tel := New()
	tel.SyscallFailed("ioctl_returns_int")
	tel.SyscallFailed("ioctl_returns_int")
	tel.Fallback("now")

	assert.Equal(t, 2.0, tel.SyscallFailures("ioctl_returns_int"))
	assert.Equal(t, 0.0, tel.SyscallFailures("clock_gettime"))
	assert.Equal(t, 1.0, tel.Fallbacks("now"))
}

func TestCapabilityGauge(t *testing.T) {
	tel := New()
	tel.SetCapability(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.capability))
	tel.SetCapability(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(tel.capability))
}

func TestNilTelemetry(t *testing.T) {
	var tel *Telemetry
	assert.NotPanics(t, func() {
		tel.SyscallFailed("setsockopt")
		tel.Fallback("now")
		tel.SetCapability(true)
	})
	assert.Zero(t, tel.Fallbacks("now"))
	assert.Empty(t, tel.Collectors())
	assert.NoError(t, tel.Register(prometheus.NewRegistry()))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	tel := New()
	require.NoError(t, tel.Register(reg))
	tel.SyscallFailed("clock_gettime")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "unixutils_syscall_failures_total")
	assert.Contains(t, names, "unixutils_capability_enabled")

	// a second registration reports every duplicate
	err = New().Register(reg)
	require.Error(t, err)
	var already prometheus.AlreadyRegisteredError
	assert.True(t, errors.As(err, &already))
}

type fakeSampler struct {
	input, output map[int]int
}

var errNoSample = errors.New("no sample")

func (f fakeSampler) InputQueueSample(fd int) (int, error) {
	if n, ok := f.input[fd]; ok {
		return n, nil
	}
	return 0, errNoSample
}

func (f fakeSampler) OutputQueueSample(fd int) (int, error) {
	if n, ok := f.output[fd]; ok {
		return n, nil
	}
	return 0, errNoSample
}

func gatherGauges(t *testing.T, c prometheus.Collector) map[string]map[string]float64 {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	mfs, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]map[string]float64{}
	for _, mf := range mfs {
		require.Equal(t, dto.MetricType_GAUGE, mf.GetType())
		byLabel := map[string]float64{}
		for _, m := range mf.GetMetric() {
			byLabel[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
		}
		out[mf.GetName()] = byLabel
	}
	return out
}

func TestQueueCollector(t *testing.T) {
	c := NewQueueCollector(fakeSampler{
		input:  map[int]int{3: 12, 4: 0},
		output: map[int]int{3: 5},
	})
	c.Track("server", 3)
	c.Track("client", 4)
	c.Track("broken", 9)

	got := gatherGauges(t, c)
	assert.Equal(t, map[string]float64{"server": 12, "client": 0}, got["unixutils_socket_input_queue_bytes"])
	assert.Equal(t, map[string]float64{"server": 5}, got["unixutils_socket_output_queue_bytes"])

	c.Untrack("server")
	assert.Equal(t, 1, testutil.CollectAndCount(c, "unixutils_socket_input_queue_bytes"))
}

func TestQueueCollectorEmpty(t *testing.T) {
	c := NewQueueCollector(fakeSampler{})
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}
