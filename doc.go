// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package threadpool is an in-process task execution engine: a bounded
// wait-free MPMC queue, a worker pool on top of it, and an
// instrumentation layer exposing Prometheus-style metrics through the
// metrics subpackage. TCP and HTTP front-ends live in the server and
// client subpackages.
//
// # Quick Start
//
//	registry := metrics.NewRegistry()
//	pool, err := threadpool.NewInstrumentedPool(4, 1024, registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	future, err := threadpool.SubmitInstrumented(pool, func() (int, error) {
//	    return 42, nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := future.Get()
//
// # Drain
//
//	pool.WaitAll() // blocks until submitted == completed + failed
//
// # Error Handling
//
// Submit-time failures ([ErrSubmitAfterStop], [ErrQueueFull]) are
// returned synchronously from Submit/SubmitInstrumented. Execution-time
// failures (a panic or a returned error from the task) travel only
// through the task's [Future], wrapped in a [TaskFailure] that
// preserves the original cause:
//
//	future, err := threadpool.Submit(pool, riskyTask)
//	if err != nil {
//	    // submission rejected, task never ran
//	}
//	_, err = future.Get()
//	var failure *threadpool.TaskFailure
//	if errors.As(err, &failure) {
//	    // task panicked or returned an error; failure.Cause holds it
//	}
//
// # Queue Directly
//
// [Queue] is usable on its own wherever a bounded lock-free MPMC ring
// buffer is needed, independent of the pool built on top of it:
//
//	q := threadpool.NewQueue[int](1024)
//	if err := q.TryEnqueue(&value); err != nil {
//	    // queue full
//	}
//	elem, err := q.TryDequeue()
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/spin] for
// spin-backoff in idle loops, and [code.hybscloud.com/iox] for semantic
// control-flow errors.
package threadpool
