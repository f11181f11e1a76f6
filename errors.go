// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the queue cannot proceed immediately: full on
// enqueue, empty on dequeue. It is a control flow signal, not a
// failure — callers retry with backoff.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a
// failure). Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// ErrSubmitAfterStop is returned by Submit once Shutdown has been
// called. It is surfaced synchronously to the caller of Submit, never
// through a Future.
var ErrSubmitAfterStop = errors.New("threadpool: submit after pool stopped")

// ErrQueueFull is returned by Submit when the bounded retry against a
// full queue is exhausted. Like ErrSubmitAfterStop, it is surfaced
// synchronously, never through a Future.
var ErrQueueFull = errors.New("threadpool: queue full, submit retry exhausted")

// ErrInvalidConfiguration is returned by constructors given parameters
// that cannot produce a usable pool: zero workers, a queue capacity
// below the minimum, or a queue capacity that is not a power of two.
var ErrInvalidConfiguration = errors.New("threadpool: invalid configuration")

// TaskFailure preserves the cause of a task that panicked or returned
// an error, delivered exactly once through the task's Future.
type TaskFailure struct {
	Cause any
}

func (f *TaskFailure) Error() string {
	if err, ok := f.Cause.(error); ok {
		return fmt.Sprintf("threadpool: task failed: %v", err)
	}
	return fmt.Sprintf("threadpool: task failed: %v", f.Cause)
}

func (f *TaskFailure) Unwrap() error {
	if err, ok := f.Cause.(error); ok {
		return err
	}
	return nil
}

// newTaskFailure wraps a recovered panic value or a returned error into
// a *TaskFailure, preserving the original cause.
func newTaskFailure(cause any) *TaskFailure {
	return &TaskFailure{Cause: cause}
}
