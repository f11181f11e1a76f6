// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool

// Result carries either a task's return value or the cause of its
// failure.
type Result[R any] struct {
	Value R
	Err   error
}

// Future is a single-producer single-consumer one-shot channel carrying
// a task's outcome. The worker that executes the task writes exactly
// once; Get blocks the caller until that write happens.
//
// A Future dropped without a call to Get does not prevent the task from
// running to completion: the worker always writes its result into the
// buffered channel, whether or not anyone ever reads it.
type Future[R any] struct {
	ch chan Result[R]
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{ch: make(chan Result[R], 1)}
}

func (f *Future[R]) resolve(value R, err error) {
	f.ch <- Result[R]{Value: value, Err: err}
}

// Get blocks until the task completes and returns its result. Get may
// be called at most once; the channel is not reusable.
func (f *Future[R]) Get() (R, error) {
	r := <-f.ch
	return r.Value, r.Err
}
