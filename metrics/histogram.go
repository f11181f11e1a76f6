// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// DefaultBuckets are the histogram upper bounds, in seconds, used when
// no explicit buckets are supplied to [Registry.AddHistogram].
var DefaultBuckets = []float64{1e-4, 1e-3, 5e-3, 1e-2, 5e-2, 1e-1, 5e-1, 1, 5}

// Histogram tracks observations against a sorted list of upper bounds.
// Bucket counts are cumulative: a bucket's count includes every
// observation less than or equal to its upper bound, per scraper
// convention. Bucket counts and the total count are atomic words; the
// sum of observations is a float64 guarded by a dedicated mutex because
// a double is not universally atomic and observation throughput is
// modest relative to counter traffic.
type Histogram struct {
	name    string
	help    string
	buckets []float64 // sorted upper bounds, seconds

	bucketCounts []atomix.Uint64 // len(buckets), cumulative ≤-bound counts
	infCount     atomix.Uint64   // equals count, the +Inf bucket
	count        atomix.Uint64

	sumMu sync.Mutex
	sum   float64
}

func newHistogram(name, help string, buckets []float64) *Histogram {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	bs := make([]float64, len(buckets))
	copy(bs, buckets)
	return &Histogram{
		name:         name,
		help:         help,
		buckets:      bs,
		bucketCounts: make([]atomix.Uint64, len(bs)),
	}
}

// Observe records a single observation of value seconds.
func (h *Histogram) Observe(seconds float64) {
	for i, upper := range h.buckets {
		if seconds <= upper {
			h.bucketCounts[i].AddAcqRel(1)
		}
	}
	h.infCount.AddAcqRel(1)

	h.sumMu.Lock()
	h.sum += seconds
	h.sumMu.Unlock()

	h.count.AddAcqRel(1)
}

// ObserveSince records the elapsed time since start as a single
// observation, in seconds.
func (h *Histogram) ObserveSince(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Name returns the metric's name.
func (h *Histogram) Name() string { return h.name }

// Count returns the total number of observations, equal to the +Inf
// bucket's count.
func (h *Histogram) Count() uint64 {
	return h.count.LoadAcquire()
}

// Sum returns the running sum of all observations, in seconds.
func (h *Histogram) Sum() float64 {
	h.sumMu.Lock()
	defer h.sumMu.Unlock()
	return h.sum
}

// BucketCount returns the cumulative count for the bucket at index i.
func (h *Histogram) BucketCount(i int) uint64 {
	return h.bucketCounts[i].LoadAcquire()
}

func (h *Histogram) serialize(sb *strings.Builder) {
	fmt.Fprintf(sb, "# HELP %s %s\n", h.name, h.help)
	fmt.Fprintf(sb, "# TYPE %s histogram\n", h.name)
	for i, upper := range h.buckets {
		fmt.Fprintf(sb, "%s_bucket{le=\"%s\"} %d\n", h.name, strconv.FormatFloat(upper, 'g', -1, 64), h.bucketCounts[i].LoadAcquire())
	}
	fmt.Fprintf(sb, "%s_bucket{le=\"+Inf\"} %d\n", h.name, h.infCount.LoadAcquire())
	fmt.Fprintf(sb, "%s_sum %s\n", h.name, strconv.FormatFloat(h.Sum(), 'g', -1, 64))
	fmt.Fprintf(sb, "%s_count %d\n", h.name, h.Count())
}
