// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metercacher exports memoized function statistics to Prometheus.
package metercacher

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/memo"
)

var _ prometheus.Collector = (*Collector)(nil)

// Collector reads every function of a Manager at scrape time.
type Collector struct {
	manager *memo.Manager
	metrics *cacheMetrics
}

// New creates a collector for m. Register it with a prometheus.Registerer.
func New(namespace string, m *memo.Manager) *Collector {
	return &Collector{
		manager: m,
		metrics: newMetrics(namespace),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.metrics.describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	enabled := 0.0
	if c.manager.Enabled() {
		enabled = 1
	}
	ch <- prometheus.MustNewConstMetric(c.metrics.globalEnabled, prometheus.GaugeValue, enabled)

	for _, info := range c.manager.Infos() {
		c.metrics.collect(ch, info)
	}
}
