// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metercacher

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/memo"
)

var funcLabels = []string{"func"}

type cacheMetrics struct {
	globalEnabled *prometheus.Desc

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	expiredHits *prometheus.Desc
	evictions   *prometheus.Desc

	entries       *prometheus.Desc
	maxSize       *prometheus.Desc
	expireSeconds *prometheus.Desc
	enabled       *prometheus.Desc
}

func newMetrics(namespace string) *cacheMetrics {
	desc := func(name, help string, labels []string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &cacheMetrics{
		globalEnabled: desc("global_enabled", "1 if caching is enabled for the manager", nil),
		hits:          desc("hits_total", "Number of fresh cache hits", funcLabels),
		misses:        desc("misses_total", "Number of cache misses", funcLabels),
		expiredHits:   desc("expired_hits_total", "Number of hits on expired entries", funcLabels),
		evictions:     desc("evictions_total", "Number of entries evicted for size", funcLabels),
		entries:       desc("entries", "Number of entries currently stored", funcLabels),
		maxSize:       desc("max_size", "Configured entry limit, 0 or less for unbounded", funcLabels),
		expireSeconds: desc("expire_seconds", "Configured time to live, 0 for never", funcLabels),
		enabled:       desc("enabled", "1 if caching is enabled for the function", funcLabels),
	}
}

func (m *cacheMetrics) describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		m.globalEnabled,
		m.hits,
		m.misses,
		m.expiredHits,
		m.evictions,
		m.entries,
		m.maxSize,
		m.expireSeconds,
		m.enabled,
	} {
		ch <- d
	}
}

func (m *cacheMetrics) collect(ch chan<- prometheus.Metric, info memo.Info) {
	enabled := 0.0
	if info.Enabled {
		enabled = 1
	}

	ch <- prometheus.MustNewConstMetric(m.hits, prometheus.CounterValue, float64(info.Hits), info.Name)
	ch <- prometheus.MustNewConstMetric(m.misses, prometheus.CounterValue, float64(info.Misses), info.Name)
	ch <- prometheus.MustNewConstMetric(m.expiredHits, prometheus.CounterValue, float64(info.ExpiredHits), info.Name)
	ch <- prometheus.MustNewConstMetric(m.evictions, prometheus.CounterValue, float64(info.Evictions), info.Name)
	ch <- prometheus.MustNewConstMetric(m.entries, prometheus.GaugeValue, float64(info.CurrentSize), info.Name)
	ch <- prometheus.MustNewConstMetric(m.maxSize, prometheus.GaugeValue, float64(info.MaxSize), info.Name)
	ch <- prometheus.MustNewConstMetric(m.expireSeconds, prometheus.GaugeValue, info.Expire.Seconds(), info.Name)
	ch <- prometheus.MustNewConstMetric(m.enabled, prometheus.GaugeValue, enabled, info.Name)
}
