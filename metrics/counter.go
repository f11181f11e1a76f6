// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics implements the concurrency-safe metric primitives and
// registry a scraper-compatible text endpoint is built on: a monotonic
// counter, a bidirectional gauge, and a cumulative bucketed histogram.
package metrics

import (
	"fmt"
	"strings"

	"code.hybscloud.com/atomix"
)

// Counter is a monotonic, non-negative integer safe for concurrent
// mutation. Publication is handled by higher-level ordering (see
// InstrumentedPool), so relaxed ordering would suffice; Inc and Get
// use acquire/release operations.
type Counter struct {
	name  string
	help  string
	value atomix.Uint64
}

func newCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

// Inc increments the counter by delta. With no arguments it increments
// by 1.
func (c *Counter) Inc(delta ...uint64) {
	d := uint64(1)
	if len(delta) > 0 {
		d = delta[0]
	}
	c.value.AddAcqRel(d)
}

// Get returns the counter's current value.
func (c *Counter) Get() uint64 {
	return c.value.LoadAcquire()
}

// Name returns the metric's name.
func (c *Counter) Name() string { return c.name }

func (c *Counter) serialize(sb *strings.Builder) {
	fmt.Fprintf(sb, "# HELP %s %s\n", c.name, c.help)
	fmt.Fprintf(sb, "# TYPE %s counter\n", c.name)
	fmt.Fprintf(sb, "%s %d\n", c.name, c.Get())
}
