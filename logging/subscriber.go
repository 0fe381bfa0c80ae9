// Tracing-style logging sink, drained over the async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package logging

import (
	"sync/atomic"

	"github.com/tamago-rack/rackfw/queue"
)

// Subscriber is the tracing-style front end: it captures span lifecycle
// calls and events, assigns span ids from a monotonic counter seeded at 1,
// and enqueues a Record per call for Pump to drain (spec §4.9, ported from
// `stm32l432/logging.rs`'s `SerialLoggerFrontend`). Calls never block —
// queue overflow is dropped, matching the original's fire-and-forget
// `try_enqueue`.
type Subscriber struct {
	nextSpanID atomic.Uint32
	tx         *queue.Sender[Record]
}

// NewSubscriber builds a Subscriber enqueuing onto tx. The companion Pump
// task must be constructed from the Receiver half of the same queue.
func NewSubscriber(tx *queue.Sender[Record]) *Subscriber {
	s := &Subscriber{tx: tx}
	s.nextSpanID.Store(1)
	return s
}

// NewSpan allocates a fresh span id, records it, and returns it to the
// caller for use in subsequent Enter/Exit/Record calls.
func (s *Subscriber) NewSpan() uint32 {
	id := s.nextSpanID.Add(1) - 1
	s.enqueue(Record{Kind: KindNewSpan, SpanID: id})
	return id
}

// Enter records entry into the span identified by id.
func (s *Subscriber) Enter(id uint32) { s.enqueue(Record{Kind: KindEnter, SpanID: id}) }

// Exit records departure from the span identified by id.
func (s *Subscriber) Exit(id uint32) { s.enqueue(Record{Kind: KindExit, SpanID: id}) }

// Record captures a field/value recorded against the span identified by id.
func (s *Subscriber) Record(id uint32, message string) {
	s.enqueue(Record{Kind: KindRecord, SpanID: id, Message: message})
}

// Event captures a standalone log event, not associated with any span.
func (s *Subscriber) Event(message string) {
	s.enqueue(Record{Kind: KindEvent, Message: message})
}

func (s *Subscriber) enqueue(r Record) {
	_ = s.tx.TryEnqueue(r)
}
