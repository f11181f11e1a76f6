// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool

import (
	"time"

	"code.hybscloud.com/spin"

	"github.com/roh-1411/lock-free-threadpool/metrics"
)

// InstrumentedPool wraps a [Pool] with per-submission timestamping,
// per-outcome counting, and a drain that is strictly stronger than the
// underlying Pool's.
//
// If no [metrics.Registry] is supplied to [NewInstrumentedPool], the
// InstrumentedPool constructs and owns a private one, so its metric
// accessors remain safe to call either way.
type InstrumentedPool struct {
	pool     *Pool
	registry *metrics.Registry

	submitted *metrics.Counter
	completed *metrics.Counter
	failed    *metrics.Counter

	queueDepth    *metrics.Gauge
	activeWorkers *metrics.Gauge
	threadCount   *metrics.Gauge

	taskLatency *metrics.Histogram
}

// NewInstrumentedPool wraps a pool of n workers and the given queue
// capacity. If registry is nil, a private [metrics.Registry] is
// created and owned by the returned InstrumentedPool.
func NewInstrumentedPool(n, queueCapacity int, registry *metrics.Registry) (*InstrumentedPool, error) {
	pool, err := NewPool(n, queueCapacity)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	ip := &InstrumentedPool{
		pool:     pool,
		registry: registry,

		submitted: registry.AddCounter("threadpool_tasks_submitted_total", "Total tasks submitted to the pool."),
		completed: registry.AddCounter("threadpool_tasks_completed_total", "Total tasks completed successfully."),
		failed:    registry.AddCounter("threadpool_tasks_failed_total", "Total tasks that failed or panicked."),

		queueDepth:    registry.AddGauge("threadpool_queue_depth", "Approximate number of tasks currently queued."),
		activeWorkers: registry.AddGauge("threadpool_active_workers", "Number of workers currently executing a task."),
		threadCount:   registry.AddGauge("threadpool_thread_count", "Number of worker goroutines in the pool."),

		taskLatency: registry.AddHistogram("threadpool_task_latency_seconds", "End-to-end task latency from submit to completion.", nil),
	}
	ip.threadCount.Set(int64(n))
	return ip, nil
}

// Registry returns the metrics registry this pool reports to.
func (ip *InstrumentedPool) Registry() *metrics.Registry {
	return ip.registry
}

// Submit hands fn to the underlying pool, re-wrapped to record submit
// time, increment the submitted counter, and — once fn completes — to
// observe latency and increment completed/failed before the underlying
// pool's active-task accounting makes the task appear finished.
//
// Steps 3 (latency observation) and 4 (completed/failed increment) must
// happen-before step 5 (decrementing the active-workers gauge, which
// happens inside this worker-side closure, before the underlying Pool's
// own active decrement) in program order on the worker. Without this
// ordering, [InstrumentedPool.WaitAll] could return to a caller that
// reads completed/failed and observes a stale value, because the
// underlying Pool considers the task done the instant its own active
// counter is decremented — which happens after this closure returns.
//
// fn may panic. The deferred bookkeeping below runs during the unwind
// regardless, so steps 3-5 still happen in order before the panic
// continues past this frame to the underlying Pool's own recover,
// which is what actually resolves the future with a [TaskFailure].
func SubmitInstrumented[R any](ip *InstrumentedPool, fn func() (R, error)) (*Future[R], error) {
	submitTime := time.Now()

	wrapped := func() (R, error) {
		ip.activeWorkers.Inc()
		ip.queueDepth.Set(int64(ip.pool.QueueDepth()))

		failed := true
		defer func() {
			ip.taskLatency.ObserveSince(submitTime)
			if failed {
				ip.failed.Inc()
			} else {
				ip.completed.Inc()
			}

			ip.activeWorkers.Dec()
			ip.queueDepth.Set(int64(ip.pool.QueueDepth()))
		}()

		value, err := fn()
		failed = err != nil
		return value, err
	}

	future, err := Submit[R](ip.pool, wrapped)
	if err != nil {
		return nil, err
	}
	ip.submitted.Inc()
	return future, nil
}

// WaitAll blocks until the underlying pool is drained and, in addition,
// submitted == completed + failed holds — the stronger drain contract
// the instrumentation layer adds on top of [Pool.WaitAll].
func (ip *InstrumentedPool) WaitAll() {
	ip.pool.WaitAll()

	sw := spin.Wait{}
	for ip.submitted.Get() > ip.completed.Get()+ip.failed.Get() {
		sw.Once()
	}

	ip.queueDepth.Set(0)
	ip.activeWorkers.Set(0)
}

// Shutdown requests stop on the underlying pool and waits for all
// workers to exit.
func (ip *InstrumentedPool) Shutdown() {
	ip.pool.Shutdown()
}
