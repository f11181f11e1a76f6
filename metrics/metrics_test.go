// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/roh-1411/lock-free-threadpool/metrics"
)

func TestCounterMonotonicity(t *testing.T) {
	reg := metrics.NewRegistry()
	c := reg.AddCounter("requests_total", "count of requests")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()

	if got := c.Get(); got != 8000 {
		t.Fatalf("want 8000, got %d", got)
	}
}

func TestCounterSerialization(t *testing.T) {
	reg := metrics.NewRegistry()
	c := reg.AddCounter("requests_total", "count of requests")
	c.Inc(5)

	text := reg.Serialize()
	for _, want := range []string{
		"# HELP requests_total count of requests",
		"# TYPE requests_total counter",
		"requests_total 5",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("serialization missing %q:\n%s", want, text)
		}
	}
}

func TestGaugeSetIncDec(t *testing.T) {
	reg := metrics.NewRegistry()
	g := reg.AddGauge("active_workers", "workers currently running a task")
	g.Set(5)
	g.Inc()
	g.Dec()
	g.Dec()
	if got := g.Get(); got != 4 {
		t.Fatalf("want 4, got %d", got)
	}
}

// TestHistogramCumulativity covers the bucket parts of property 8: for
// bounds a < b, count(a) <= count(b) <= total count; +Inf equals total.
// The sum is not checked here.
func TestHistogramCumulativity(t *testing.T) {
	reg := metrics.NewRegistry()
	h := reg.AddHistogram("task_latency_seconds", "task latency", nil)

	observations := []float64{0.00005, 0.0005, 0.002, 0.02, 0.2, 2, 10}
	for _, v := range observations {
		h.Observe(v)
	}

	var prev uint64
	for i := 0; i < len(metrics.DefaultBuckets); i++ {
		count := h.BucketCount(i)
		if count < prev {
			t.Fatalf("bucket %d count %d less than previous bucket count %d", i, count, prev)
		}
		if count > h.Count() {
			t.Fatalf("bucket %d count %d exceeds total count %d", i, count, h.Count())
		}
		prev = count
	}

	if h.Count() != uint64(len(observations)) {
		t.Fatalf("want total count %d, got %d", len(observations), h.Count())
	}

	text := reg.Serialize()
	if !strings.Contains(text, "task_latency_seconds_bucket{le=\"+Inf\"} 7") {
		t.Fatalf("+Inf bucket should equal total count of 7:\n%s", text)
	}
}

func TestHistogramSerializationShape(t *testing.T) {
	reg := metrics.NewRegistry()
	h := reg.AddHistogram("latency_seconds", "latency", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)

	text := reg.Serialize()
	for _, want := range []string{
		"# TYPE latency_seconds histogram",
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 2`,
		`latency_seconds_bucket{le="+Inf"} 2`,
		"latency_seconds_sum",
		"latency_seconds_count 2",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("serialization missing %q:\n%s", want, text)
		}
	}
}

func TestRegistrySerializeGroupsByType(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.AddCounter("c", "a counter")
	reg.AddGauge("g", "a gauge")
	reg.AddHistogram("h", "a histogram", []float64{1})

	text := reg.Serialize()
	cIdx := strings.Index(text, "# TYPE c counter")
	gIdx := strings.Index(text, "# TYPE g gauge")
	hIdx := strings.Index(text, "# TYPE h histogram")
	if !(cIdx < gIdx && gIdx < hIdx) {
		t.Fatalf("want counters, then gauges, then histograms, got:\n%s", text)
	}
}
