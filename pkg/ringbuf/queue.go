// SPDX-License-Identifier: MIT
/*
Package ringbuf implements a lock-free single-producer/single-consumer
queue over fixed-size records.

The queue is the hand-off point between the real-time audio callback and
the analyzer worker, so the producer side must never block, lock, or
allocate. It uses two monotonically increasing atomic cursors and a
power-of-2 sized backing slice with bitwise masking: the producer stores
writePos only after the record is in place, the consumer loads writePos
before reading, so a read never observes a partially written record.

Thread assignment:
  - Write: producer goroutine/thread only
  - Read, Len, Reset: consumer goroutine only
*/
package ringbuf

import (
	"sync/atomic"

	"audiolize/pkg/bitint"
)

// Queue is a bounded SPSC queue of records of type T. Capacity is fixed at
// construction and the backing slice is never resized. A write to a full
// queue is rejected, a read from an empty queue returns false; neither
// side ever blocks or overwrites unread data.
type Queue[T any] struct {
	// Cursors live on separate cache lines to avoid false sharing
	// between the producer and consumer cores.
	writePos atomic.Uint64
	_        [56]byte
	readPos  atomic.Uint64
	_        [56]byte

	buf  []T
	mask uint64
}

// New creates a queue holding at least capacity records, rounded up to the
// next power of two so cursor wrapping reduces to a bitwise AND.
func New[T any](capacity int) *Queue[T] {
	size := bitint.NextPowerOfTwo(capacity)
	return &Queue[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// Write enqueues one record. It returns false when the queue is full; the
// record is then discarded, which is the backpressure policy of the whole
// pipeline. Producer side only.
func (q *Queue[T]) Write(rec T) bool {
	w := q.writePos.Load()
	r := q.readPos.Load()

	if w-r == uint64(len(q.buf)) {
		return false
	}

	q.buf[w&q.mask] = rec
	q.writePos.Store(w + 1)
	return true
}

// Read dequeues one record into out. It returns false when the queue is
// empty and leaves out untouched. Consumer side only.
func (q *Queue[T]) Read(out *T) bool {
	r := q.readPos.Load()
	w := q.writePos.Load()

	if w == r {
		return false
	}

	*out = q.buf[r&q.mask]
	q.readPos.Store(r + 1)
	return true
}

// Len returns the number of records currently queued.
func (q *Queue[T]) Len() int {
	return int(q.writePos.Load() - q.readPos.Load())
}

// Cap returns the fixed capacity of the queue.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// Reset discards all queued records. It advances the read cursor from the
// consumer side, so it may only be called while the producer is quiescent
// (for example between closing a stream and opening the next one).
func (q *Queue[T]) Reset() {
	q.readPos.Store(q.writePos.Load())
}
