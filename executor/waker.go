// Cooperative, allocation-free task scheduler
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package executor

import "sync/atomic"

// WakeBit is the single atomic boolean backing one task's scheduling state.
// Its storage must outlive the executor and be addressable from any context
// that can observe hardware completion — including a simulated interrupt
// callback — since it is set without any lock.
type WakeBit struct {
	flag atomic.Bool
}

func (b *WakeBit) init() { b.flag.Store(true) }

func (b *WakeBit) set(v bool) { b.flag.Store(v) }

func (b *WakeBit) ready() bool { return b.flag.Load() }

// Waker is handed to a Task's Poll method as the sole channel it has to
// request re-scheduling. It references a single wake-bit cell; cloning a
// Waker is identity (copying the struct copies the pointer, nothing more)
// and dropping one is a no-op, matching spec §4.1's waker contract.
type Waker struct {
	bit *WakeBit
}

// Wake sets the referenced wake-bit to true with sequentially-consistent
// ordering. Safe to call from any context, including one simulating a
// hardware interrupt handler.
func (w *Waker) Wake() { w.bit.set(true) }

// WakeByRef has identical semantics to Wake; the distinction only matters
// in the Rust original where Wake consumes the waker by value.
func (w *Waker) WakeByRef() { w.bit.set(true) }

// Clone returns a Waker referencing the same wake-bit. Because a Waker is a
// single pointer, clone is simply a copy.
func (w *Waker) Clone() *Waker { return &Waker{bit: w.bit} }

// NewWaker creates a standalone Waker around its own wake-bit, for driving a
// single suspendable operation directly rather than through an Executor's
// task list — e.g. a role's init handshake, or a test.
func NewWaker() *Waker {
	return &Waker{bit: &WakeBit{}}
}

// Woken reports whether this waker's bit is currently set.
func (w *Waker) Woken() bool { return w.bit.ready() }

// Reset clears the wake bit so only subsequent Wake calls are observed.
func (w *Waker) Reset() { w.bit.set(false) }
