// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"
	"sync"
)

// Registry owns three ordered sequences of metrics and produces a
// scraper-compatible text serialization of all of them. Registration
// (the Add* methods) is rare and protected by a mutex; per-metric
// mutation is lock-free and does not touch the registry's mutex at all.
type Registry struct {
	mu         sync.Mutex
	counters   []*Counter
	gauges     []*Gauge
	histograms []*Histogram
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddCounter registers and returns a new Counter. The returned pointer
// is a stable handle valid for the registry's lifetime.
func (r *Registry) AddCounter(name, help string) *Counter {
	c := newCounter(name, help)
	r.mu.Lock()
	r.counters = append(r.counters, c)
	r.mu.Unlock()
	return c
}

// AddGauge registers and returns a new Gauge.
func (r *Registry) AddGauge(name, help string) *Gauge {
	g := newGauge(name, help)
	r.mu.Lock()
	r.gauges = append(r.gauges, g)
	r.mu.Unlock()
	return g
}

// AddHistogram registers and returns a new Histogram. buckets is the
// sorted list of upper bounds in seconds; if nil, [DefaultBuckets] is
// used.
func (r *Registry) AddHistogram(name, help string, buckets []float64) *Histogram {
	h := newHistogram(name, help, buckets)
	r.mu.Lock()
	r.histograms = append(r.histograms, h)
	r.mu.Unlock()
	return h
}

// Serialize returns the text serialization of every registered metric,
// grouped by type (counters, then gauges, then histograms) and
// separated by blank lines.
func (r *Registry) Serialize() string {
	r.mu.Lock()
	counters := append([]*Counter(nil), r.counters...)
	gauges := append([]*Gauge(nil), r.gauges...)
	histograms := append([]*Histogram(nil), r.histograms...)
	r.mu.Unlock()

	var sb strings.Builder
	for _, c := range counters {
		c.serialize(&sb)
	}
	if len(counters) > 0 && (len(gauges) > 0 || len(histograms) > 0) {
		sb.WriteByte('\n')
	}
	for _, g := range gauges {
		g.serialize(&sb)
	}
	if len(gauges) > 0 && len(histograms) > 0 {
		sb.WriteByte('\n')
	}
	for i, h := range histograms {
		if i > 0 {
			sb.WriteByte('\n')
		}
		h.serialize(&sb)
	}
	return sb.String()
}
