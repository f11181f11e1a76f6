// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package threadpool

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Queue is a bounded, wait-free multi-producer multi-consumer ring
// buffer. Capacity must be a power of two, at least 2, and is fixed for
// the lifetime of the queue.
//
// TryEnqueue and TryDequeue never block and never allocate; both return
// [ErrWouldBlock] when the queue is observably full or empty at the
// moment of the attempt. Every item successfully enqueued is dequeued
// exactly once.
type Queue[T any] struct {
	_        pad
	tail     atomix.Uint64 // producer ticket
	_        pad
	head     atomix.Uint64 // consumer ticket
	_        pad
	buffer   []queueSlot[T]
	mask     uint64
	capacity uint64
}

type queueSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort
}

// NewQueue creates a bounded MPMC queue. capacity must be a power of
// two, at least 2; NewQueue panics otherwise, since Queue is a raw
// primitive with no error-returning construction contract. Callers
// that need a recoverable error instead (e.g. [NewPool]) validate
// capacity themselves before calling NewQueue.
func NewQueue[T any](capacity int) *Queue[T] {
	if !isPowerOfTwo(capacity) {
		panic("threadpool: capacity must be a power of two, at least 2")
	}
	n := uint64(capacity)
	q := &Queue[T]{
		buffer:   make([]queueSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}
	return q
}

// TryEnqueue attempts to place item at the tail of the queue.
// Returns nil on success, [ErrWouldBlock] if the queue is full.
func (q *Queue[T]) TryEnqueue(item *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = *item
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// TryDequeue removes and returns the item at the head of the queue.
// Returns (zero-value, [ErrWouldBlock]) if the queue is empty.
func (q *Queue[T]) TryDequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Cap returns the queue's capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}

// Size returns an approximate count of items currently queued. It may
// observe transiently stale values under concurrent access; it is exact
// when no producer or consumer is mid-operation.
//
// The upstream queue library this package is built on omits Size
// entirely, on the grounds that an accurate count requires expensive
// cross-core synchronization. This queue adds an approximate Size
// because callers of a task engine routinely want a queue-depth gauge
// (see InstrumentedPool), and an approximate, occasionally-stale count
// is exactly what that gauge needs.
func (q *Queue[T]) Size() int {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail > head {
		size := tail - head
		if size > q.capacity {
			return int(q.capacity)
		}
		return int(size)
	}
	return 0
}

// Empty reports whether the queue is observably empty. It is a
// fast-path hint only: the result may be stale by the time the caller
// acts on it.
func (q *Queue[T]) Empty() bool {
	return q.Size() == 0
}

// isPowerOfTwo reports whether n is a power of two and at least 2 —
// the capacity invariant every [Queue] and [Pool] must satisfy.
func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill a cache line after an 8-byte field.
type padShort [64 - 8]byte
