// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package telemetry

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

// QueueSampler reads the kernel queue lengths of a descriptor, failing when no
// measurement is available.
type QueueSampler interface {
	InputQueueSample(fd int) (int, error)
	OutputQueueSample(fd int) (int, error)
}

// QueueCollector exports the queue lengths of tracked sockets at scrape time.
// Sockets whose sample fails are left out of the scrape rather than reported
// as empty.
type QueueCollector struct {
	sampler QueueSampler

	mu      sync.Mutex
	sockets map[string]int

	inputDesc  *prometheus.Desc
	outputDesc *prometheus.Desc
}

// NewQueueCollector returns a collector sampling through s.
func NewQueueCollector(s QueueSampler) *QueueCollector {
	return &QueueCollector{
		sampler: s,
		sockets: make(map[string]int),
		inputDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "socket", "input_queue_bytes"),
			"Bytes received by the kernel and not yet read.",
			[]string{"socket"}, nil,
		),
		outputDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "socket", "output_queue_bytes"),
			"Bytes sent and not yet acknowledged by the peer.",
			[]string{"socket"}, nil,
		),
	}
}

// Track starts exporting fd under name, replacing any descriptor already
// tracked under that name. The descriptor stays owned by the caller, who must
// Untrack it before closing it.
func (c *QueueCollector) Track(name string, fd int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sockets[name] = fd
}

// Untrack stops exporting name.
func (c *QueueCollector) Untrack(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sockets, name)
}

// Describe implements prometheus.Collector.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inputDesc
	ch <- c.outputDesc
}

// Collect implements prometheus.Collector.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	sockets := lo.Entries(c.sockets)
	c.mu.Unlock()
	sort.Slice(sockets, func(i, j int) bool { return sockets[i].Key < sockets[j].Key })

	for _, s := range sockets {
		if n, err := c.sampler.InputQueueSample(s.Value); err == nil {
			ch <- prometheus.MustNewConstMetric(c.inputDesc, prometheus.GaugeValue, float64(n), s.Key)
		}
		if n, err := c.sampler.OutputQueueSample(s.Value); err == nil {
			ch <- prometheus.MustNewConstMetric(c.outputDesc, prometheus.GaugeValue, float64(n), s.Key)
		}
	}
}
