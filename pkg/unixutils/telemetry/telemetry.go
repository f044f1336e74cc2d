// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package telemetry exposes unixutils internals as Prometheus metrics: native
// call failures, samples served from a fallback and the detected capability.
//
// A nil *Telemetry is valid and records nothing.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/multierr"
)

const namespace = "unixutils"

// Telemetry holds the unixutils self-monitoring metrics.
type Telemetry struct {
	syscallFailures *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	capability      prometheus.Gauge
}

// New returns unregistered metrics.
func New() *Telemetry {
	return &Telemetry{
		syscallFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syscall_failures_total",
			Help:      "Native calls that returned an error, by logical operation.",
		}, []string{"op"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_samples_total",
			Help:      "Values served from a documented default instead of the kernel, by operation.",
		}, []string{"op"}),
		capability: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capability_enabled",
			Help:      "1 when native socket introspection is usable, 0 otherwise.",
		}),
	}
}

// Collectors returns every metric owned by t.
func (t *Telemetry) Collectors() []prometheus.Collector {
	if t == nil {
		return nil
	}
	return []prometheus.Collector{t.syscallFailures, t.fallbacks, t.capability}
}

// Register registers every metric with reg and returns the combined errors.
func (t *Telemetry) Register(reg prometheus.Registerer) error {
	var err error
	for _, c := range t.Collectors() {
		err = multierr.Append(err, reg.Register(c))
	}
	return err
}

// SyscallFailed counts a failed native call.
func (t *Telemetry) SyscallFailed(op string) {
	if t == nil {
		return
	}
	t.syscallFailures.WithLabelValues(op).Inc()
}

// Fallback counts a value served from a fallback.
func (t *Telemetry) Fallback(op string) {
	if t == nil {
		return
	}
	t.fallbacks.WithLabelValues(op).Inc()
}

// SetCapability records the detection outcome.
func (t *Telemetry) SetCapability(enabled bool) {
	if t == nil {
		return
	}
	if enabled {
		t.capability.Set(1)
	} else {
		t.capability.Set(0)
	}
}

// SyscallFailures returns the current failure count of op.
func (t *Telemetry) SyscallFailures(op string) float64 {
	if t == nil {
		return 0
	}
	return counterValue(t.syscallFailures.WithLabelValues(op))
}

// Fallbacks returns the current fallback count of op.
func (t *Telemetry) Fallbacks(op string) float64 {
	if t == nil {
		return 0
	}
	return counterValue(t.fallbacks.WithLabelValues(op))
}

func counterValue(c prometheus.Counter) float64 {
	metric := &dto.Metric{}
	_ = c.Write(metric)
	return metric.GetCounter().GetValue()
}
