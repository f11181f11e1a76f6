// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool

import (
	"runtime"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// spinCount is the number of fast-path spin iterations an idle worker
// performs before yielding the scheduler timeslice.
const spinCount = 64

// submitRetryLimit bounds how many times Submit retries against a full
// queue before giving up with [ErrQueueFull].
const submitRetryLimit = 1000

// task is the erased unit of work the queue carries. Submit wraps a
// typed callable and its Future into one of these.
type task func()

// Pool owns a fixed number of worker goroutines draining a bounded MPMC
// [Queue]. It provides submit-returning-future semantics, a drain
// primitive, and basic counters.
//
// A zero Pool is not usable; construct with [NewPool].
type Pool struct {
	queue *Queue[task]

	stop   atomix.Bool
	active atomix.Uint64

	totalEnqueued  atomix.Uint64
	totalCompleted atomix.Uint64

	wg sync.WaitGroup
	n  int
}

// NewPool constructs a Pool with n worker goroutines draining a queue
// of the given capacity. n must be at least 1 and queueCapacity must be
// a power of two of at least 2; otherwise NewPool returns
// [ErrInvalidConfiguration].
func NewPool(n, queueCapacity int) (*Pool, error) {
	if n < 1 || !isPowerOfTwo(queueCapacity) {
		return nil, ErrInvalidConfiguration
	}
	p := &Pool{
		queue: NewQueue[task](queueCapacity),
		n:     n,
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.workerLoop()
	}
	return p, nil
}

// Submit hands fn to the pool and returns a [Future] that resolves with
// fn's return value, or with a [TaskFailure] if fn returns a non-nil
// error or panics. Submit fails synchronously — never through the
// Future — with [ErrSubmitAfterStop] if the pool is shutting down, or
// [ErrQueueFull] if the bounded retry against a full queue is
// exhausted.
func Submit[R any](p *Pool, fn func() (R, error)) (*Future[R], error) {
	if p.stop.LoadAcquire() {
		return nil, ErrSubmitAfterStop
	}

	future := newFuture[R]()
	t := task(func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				future.resolve(zero, newTaskFailure(r))
			}
		}()
		value, err := fn()
		if err != nil {
			var zero R
			future.resolve(zero, newTaskFailure(err))
			return
		}
		future.resolve(value, nil)
	})

	if err := p.enqueueWithRetry(t); err != nil {
		return nil, err
	}
	p.totalEnqueued.AddAcqRel(1)
	return future, nil
}

// enqueueWithRetry retries TryEnqueue, yielding the scheduler between
// attempts, up to submitRetryLimit times.
func (p *Pool) enqueueWithRetry(t task) error {
	bo := iox.Backoff{}
	for i := 0; i < submitRetryLimit; i++ {
		if err := p.queue.TryEnqueue(&t); err == nil {
			return nil
		}
		if p.stop.LoadAcquire() {
			return ErrSubmitAfterStop
		}
		bo.Wait()
	}
	return ErrQueueFull
}

// workerLoop repeatedly dequeues and runs tasks until stop is set and
// the queue is drained.
func (p *Pool) workerLoop() {
	defer p.wg.Done()
	sw := spin.Wait{}
	for {
		t, err := p.queue.TryDequeue()
		if err == nil {
			// active is incremented before the task runs and after it
			// has been moved out of its slot, so an observer that sees
			// the queue no longer containing the task also sees active
			// reflecting it.
			p.active.AddAcqRel(1)
			t()
			p.active.AddAcqRel(^uint64(0)) // -1
			p.totalCompleted.AddAcqRel(1)
			sw = spin.Wait{}
			continue
		}

		if p.stop.LoadAcquire() && p.queue.Empty() {
			return
		}

		for i := 0; i < spinCount; i++ {
			if !p.queue.Empty() {
				break
			}
			sw.Once()
		}
		if p.queue.Empty() {
			runtime.Gosched()
		}
	}
}

// WaitAll blocks until the queue is empty and no worker is currently
// executing a task, observed simultaneously.
func (p *Pool) WaitAll() {
	sw := spin.Wait{}
	for !(p.queue.Empty() && p.active.LoadAcquire() == 0) {
		sw.Once()
	}
}

// Shutdown requests stop and blocks until all workers have exited.
// Workers continue processing already-queued tasks before exiting —
// shutdown is graceful, never abrupt.
func (p *Pool) Shutdown() {
	p.stop.StoreRelease(true)
	p.wg.Wait()
}

// Active returns the current count of tasks being executed by workers,
// excluding tasks still queued.
func (p *Pool) Active() uint64 {
	return p.active.LoadAcquire()
}

// QueueDepth returns the approximate number of tasks currently queued.
func (p *Pool) QueueDepth() int {
	return p.queue.Size()
}

// Workers returns the number of worker goroutines in the pool.
func (p *Pool) Workers() int {
	return p.n
}
