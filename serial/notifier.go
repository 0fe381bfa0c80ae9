// DMA-backed, frame-oriented async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package serial implements a DMA-backed, frame-oriented async transport:
// fixed 256-byte transfers in either direction, driven through an executor
// task's Poll rather than blocking (spec §4.3: "AsyncSerial").
package serial

import (
	"sync"

	"github.com/tamago-rack/rackfw/executor"
)

// DMAChannel is the hardware collaborator a transport is built on: Start
// kicks off a one-shot transfer of buf, and Complete is polled by the
// TxFuture/RxFuture Poll methods to retrieve it back once it is done.
type DMAChannel interface {
	Start(buf [256]byte) error
	Complete() (buf [256]byte, ok bool)
}

// Notifier pairs a registered waker with whatever context observes the DMA
// channel finish — mirroring the Rust original's SerialNotifier<KEY> (a
// NoInterruptMutex<Option<Waker>>), without the generic KEY marker type
// since Go distinguishes the Tx and Rx notifiers by field, not by type
// parameter. Completion itself is reported through DMAChannel.Complete,
// polled directly by TxFuture/RxFuture; the Notifier only carries the
// waker across the interrupt boundary.
type Notifier struct {
	mu    sync.Mutex
	waker *executor.Waker
}

// register stores the waker that should be woken on the next Complete.
func (n *Notifier) register(w *executor.Waker) {
	n.mu.Lock()
	n.waker = w
	n.mu.Unlock()
}

// startTransfer is a no-op hook kept for symmetry with the original's
// SerialNotifier::start_transfer, called right before a DMA Start.
func (n *Notifier) startTransfer() {}

// complete wakes whichever waker is registered. Safe to call from an
// interrupt-like context.
func (n *Notifier) complete() {
	n.mu.Lock()
	w := n.waker
	n.mu.Unlock()

	if w != nil {
		w.WakeByRef()
	}
}
