// Unbounded lock-free MPSC queue over a preallocated segment pool
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package queue implements an unbounded (within its preallocated segment
// pool) single-consumer, multi-producer queue, built from fixed-size
// segments chained together as producers outgrow the current tail (spec
// §4.5), grounded on the original Rust `utils::queue::unbounded::mpsc`.
//
// Unlike the Rust original, which hands each new segment to the system
// allocator through a generic core::alloc::Allocator, this package pools a
// fixed number of segments up front and threads its own CAS free list
// through them: overlaying a typed Go struct onto alloc.Allocator's raw
// byte arena would require unsafe pointer casts that the rest of this
// module avoids, so the segment pool below reimplements the same
// Treiber-stack free-list technique alloc.Allocator uses, specialized to
// segment[T] nodes instead of byte blocks.
package queue

import "sync/atomic"

// segmentSize is the fixed entry count per segment (spec §4.5: N=4).
const segmentSize = 4

type entryState uint32

const (
	entryEmpty entryState = iota
	entryWriting
	entryReady
	entryConsumed
)

type entry[T any] struct {
	state atomic.Uint32
	data  T
}

// segment is one fixed-size chunk of the queue: a small array of entries,
// a write-position counter producers claim slots from, a reference count
// of producers that have observed it as the tail, and a pointer chaining
// it to the next segment once this one fills up.
type segment[T any] struct {
	entries  [segmentSize]entry[T]
	pos      atomic.Int32
	refCount atomic.Int32
	next     atomic.Pointer[segment[T]]
	freeNext atomic.Pointer[segment[T]]
}

func (s *segment[T]) reset() {
	s.pos.Store(0)
	s.refCount.Store(0)
	s.next.Store(nil)
	var zero T
	for i := range s.entries {
		s.entries[i].state.Store(uint32(entryEmpty))
		s.entries[i].data = zero
	}
}

// tryEnqueue claims the next free entry in this segment, if any, and
// stores data into it. Returns false if the segment is already full —
// the caller must then advance to (or allocate) the next segment.
func (s *segment[T]) tryEnqueue(data T) bool {
	pos := s.pos.Add(1) - 1
	if pos >= segmentSize {
		return false
	}

	e := &s.entries[pos]
	e.state.Store(uint32(entryWriting))
	e.data = data
	e.state.Store(uint32(entryReady))
	return true
}

// pool is the fixed-capacity store segments are leased from and returned
// to via CAS, so the queue never asks the Go runtime for memory once
// constructed.
type pool[T any] struct {
	storage []segment[T]
	head    atomic.Pointer[segment[T]]
}

func newPool[T any](capacity int) *pool[T] {
	p := &pool[T]{storage: make([]segment[T], capacity)}
	for i := range p.storage {
		if i < capacity-1 {
			p.storage[i].freeNext.Store(&p.storage[i+1])
		}
	}
	p.head.Store(&p.storage[0])
	return p
}

func (p *pool[T]) allocate() (*segment[T], bool) {
	for {
		head := p.head.Load()
		if head == nil {
			return nil, false
		}
		next := head.freeNext.Load()
		if p.head.CompareAndSwap(head, next) {
			head.reset()
			return head, true
		}
	}
}

func (p *pool[T]) free(s *segment[T]) {
	for {
		head := p.head.Load()
		s.freeNext.Store(head)
		if p.head.CompareAndSwap(head, s) {
			return
		}
	}
}
