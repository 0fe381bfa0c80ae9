// Unbounded lock-free MPSC queue over a preallocated segment pool
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package queue

import (
	"errors"
	"sync/atomic"
)

// ErrEmpty is returned by TryDequeue when the queue currently holds no
// ready entries, matching the original's DequeueError::Empty.
var ErrEmpty = errors.New("queue: empty")

// ErrFull is returned by TryEnqueue when the segment pool has no spare
// segment left to chain on once the tail fills — the one bound this
// queue's "unbounded" design still respects, since its segment pool is a
// fixed preallocation rather than the Rust original's unbounded system
// allocator.
var ErrFull = errors.New("queue: segment pool exhausted")

// New builds a fresh queue with enough segment capacity for roughly
// segments*4 pending entries, returning an independent Sender (cloneable
// by the caller for multiple producers, since Sender holds no per-producer
// state beyond a shared tail pointer) and the single Receiver.
func New[T any](segments int) (*Sender[T], *Receiver[T]) {
	p := newPool[T](segments)
	first, _ := p.allocate()
	first.refCount.Add(1)

	tail := &atomic.Pointer[segment[T]]{}
	tail.Store(first)

	return &Sender[T]{pool: p, tail: tail}, &Receiver[T]{pool: p, head: first}
}

// Sender enqueues values onto the tail segment, allocating and chaining a
// new segment when the current tail fills. Safe for concurrent use by
// multiple producers (spec §4.5: multi-producer, single-consumer).
type Sender[T any] struct {
	pool *pool[T]
	tail *atomic.Pointer[segment[T]]
}

// TryEnqueue pushes data onto the queue, growing the segment chain as
// needed. Returns ErrFull only once the pool's fixed segment capacity is
// exhausted.
func (s *Sender[T]) TryEnqueue(data T) error {
	for {
		tail := s.tail.Load()

		if tail.tryEnqueue(data) {
			return nil
		}

		next := tail.next.Load()
		if next == nil {
			newSeg, ok := s.pool.allocate()
			if !ok {
				return ErrFull
			}
			if tail.next.CompareAndSwap(nil, newSeg) {
				next = newSeg
			} else {
				s.pool.free(newSeg)
				next = tail.next.Load()
			}
		}

		next.refCount.Add(1)
		if s.tail.CompareAndSwap(tail, next) {
			tail.refCount.Add(-1)
		} else {
			next.refCount.Add(-1)
			tail.refCount.Add(-1)
		}
	}
}

// Receiver pulls entries off the head segment in FIFO order, freeing
// fully-drained segments back to the pool as it advances past them. Must
// only be used from a single consumer.
type Receiver[T any] struct {
	pool    *pool[T]
	head    *segment[T]
	pos     int
	initial bool
}

// TryDequeue returns the next ready entry, or ErrEmpty if none is
// available yet.
func (r *Receiver[T]) TryDequeue() (T, error) {
	buf := r.head
	startPos := r.pos
	initial := true

	for {
		for i := startPos; i < segmentSize; i++ {
			e := &buf.entries[i]
			if entryState(e.state.Load()) != entryReady {
				continue
			}

			data := e.data
			var zero T
			e.data = zero
			e.state.Store(uint32(entryConsumed))

			if initial && r.pos == i {
				r.pos++
			}
			return data, nil
		}

		next := buf.next.Load()
		if next == nil {
			var zero T
			return zero, ErrEmpty
		}

		if allConsumed(buf) && buf.refCount.Load() == 0 && r.head == buf && initial {
			r.head = next
			r.pos = 0
			r.pool.free(buf)
		}

		buf = next
		startPos = 0
		initial = false
	}
}

func allConsumed[T any](s *segment[T]) bool {
	for i := range s.entries {
		if entryState(s.entries[i].state.Load()) != entryConsumed {
			return false
		}
	}
	return true
}
