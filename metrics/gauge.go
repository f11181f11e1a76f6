// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"fmt"
	"strings"

	"code.hybscloud.com/atomix"
)

// Gauge is a signed 64-bit value safe for concurrent mutation. Unlike
// Counter it may move in either direction.
type Gauge struct {
	name  string
	help  string
	value atomix.Int64
}

func newGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

// Set stores v as the gauge's current value.
func (g *Gauge) Set(v int64) {
	g.value.StoreRelease(v)
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.value.AddAcqRel(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.value.AddAcqRel(-1)
}

// Get returns the gauge's current value.
func (g *Gauge) Get() int64 {
	return g.value.LoadAcquire()
}

// Name returns the metric's name.
func (g *Gauge) Name() string { return g.name }

func (g *Gauge) serialize(sb *strings.Builder) {
	fmt.Fprintf(sb, "# HELP %s %s\n", g.name, g.help)
	fmt.Fprintf(sb, "# TYPE %s gauge\n", g.name)
	fmt.Fprintf(sb, "%s %d\n", g.name, g.Get())
}
