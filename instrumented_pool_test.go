// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool_test

import (
	"strconv"
	"strings"
	"testing"

	threadpool "github.com/roh-1411/lock-free-threadpool"
	"github.com/roh-1411/lock-free-threadpool/metrics"
)

// TestInstrumentedPoolS1 covers scenario S1: 1000 no-op tasks on 4
// workers, wait_all, submitted/completed/failed = 1000/1000/0.
func TestInstrumentedPoolS1(t *testing.T) {
	pool, err := threadpool.NewInstrumentedPool(4, 1024, nil)
	if err != nil {
		t.Fatalf("NewInstrumentedPool: %v", err)
	}
	defer pool.Shutdown()

	for i := 0; i < 1000; i++ {
		if _, err := threadpool.SubmitInstrumented(pool, func() (int, error) { return 0, nil }); err != nil {
			t.Fatalf("SubmitInstrumented %d: %v", i, err)
		}
	}
	pool.WaitAll()

	reg := pool.Registry()
	checkCounter(t, reg, "threadpool_tasks_submitted_total", 1000)
	checkCounter(t, reg, "threadpool_tasks_completed_total", 1000)
	checkCounter(t, reg, "threadpool_tasks_failed_total", 0)
}

// TestInstrumentedPoolS2 covers scenario S2: 10 panicking tasks
// interleaved with 10 tasks returning 42.
func TestInstrumentedPoolS2(t *testing.T) {
	pool, err := threadpool.NewInstrumentedPool(4, 1024, nil)
	if err != nil {
		t.Fatalf("NewInstrumentedPool: %v", err)
	}
	defer pool.Shutdown()

	futures := make([]*threadpool.Future[int], 0, 20)
	for i := 0; i < 10; i++ {
		f, err := threadpool.SubmitInstrumented(pool, func() (int, error) {
			panic("boom")
		})
		if err != nil {
			t.Fatalf("submit panic task: %v", err)
		}
		futures = append(futures, f)

		f2, err := threadpool.SubmitInstrumented(pool, func() (int, error) {
			return 42, nil
		})
		if err != nil {
			t.Fatalf("submit ok task: %v", err)
		}
		futures = append(futures, f2)
	}
	pool.WaitAll()

	reg := pool.Registry()
	checkCounter(t, reg, "threadpool_tasks_submitted_total", 20)
	checkCounter(t, reg, "threadpool_tasks_failed_total", 10)
	checkCounter(t, reg, "threadpool_tasks_completed_total", 10)

	for i, f := range futures {
		value, err := f.Get()
		if i%2 == 0 {
			if err == nil {
				t.Fatalf("future %d: want failure, got nil", i)
			}
		} else {
			if err != nil || value != 42 {
				t.Fatalf("future %d: want (42, nil), got (%d, %v)", i, value, err)
			}
		}
	}
}

// TestInstrumentedPoolDrainTightness covers property 6: after WaitAll,
// submitted == completed+failed, queue_depth == 0, active_workers == 0.
func TestInstrumentedPoolDrainTightness(t *testing.T) {
	pool, err := threadpool.NewInstrumentedPool(8, 1024, nil)
	if err != nil {
		t.Fatalf("NewInstrumentedPool: %v", err)
	}
	defer pool.Shutdown()

	for i := 0; i < 500; i++ {
		threadpool.SubmitInstrumented(pool, func() (int, error) { return 0, nil })
	}
	pool.WaitAll()

	reg := pool.Registry()
	submitted := counterValue(t, reg, "threadpool_tasks_submitted_total")
	completed := counterValue(t, reg, "threadpool_tasks_completed_total")
	failed := counterValue(t, reg, "threadpool_tasks_failed_total")
	if submitted != completed+failed {
		t.Fatalf("submitted=%d != completed=%d + failed=%d", submitted, completed, failed)
	}
	checkGauge(t, reg, "threadpool_queue_depth", 0)
	checkGauge(t, reg, "threadpool_active_workers", 0)
}

func checkCounter(t *testing.T, reg *metrics.Registry, name string, want uint64) {
	t.Helper()
	if got := counterValue(t, reg, name); got != want {
		t.Fatalf("%s: want %d, got %d", name, want, got)
	}
}

func counterValue(t *testing.T, reg *metrics.Registry, name string) uint64 {
	t.Helper()
	text := reg.Serialize()
	for _, line := range strings.Split(text, "\n") {
		prefix := name + " "
		if strings.HasPrefix(line, prefix) {
			v, err := strconv.ParseUint(strings.TrimPrefix(line, prefix), 10, 64)
			if err != nil {
				t.Fatalf("%s: parse %q: %v", name, line, err)
			}
			return v
		}
	}
	t.Fatalf("metric %s not found in registry", name)
	return 0
}

func checkGauge(t *testing.T, reg *metrics.Registry, name string, want int64) {
	t.Helper()
	text := reg.Serialize()
	for _, line := range strings.Split(text, "\n") {
		prefix := name + " "
		if strings.HasPrefix(line, prefix) {
			v, err := strconv.ParseInt(strings.TrimPrefix(line, prefix), 10, 64)
			if err != nil {
				t.Fatalf("%s: parse %q: %v", name, line, err)
			}
			if v != want {
				t.Fatalf("%s: want %d, got %d", name, want, v)
			}
			return
		}
	}
	t.Fatalf("metric %s not found in registry", name)
}
