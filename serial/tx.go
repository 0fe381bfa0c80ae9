// DMA-backed, frame-oriented async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package serial

import (
	"github.com/tamago-rack/rackfw/executor"
)

type txState int

const (
	txInitial txState = iota
	txSendAndWaiting
	txDone
)

// TxFuture drives one 256-byte frame out over a DMAChannel, re-registering
// its waker on every poll the way the Rust original's TxFuture locks the
// notifier's waker slot on every call (`stm32l432/serial.rs`'s
// `impl Future for TxFuture`).
type TxFuture struct {
	channel  DMAChannel
	notifier *Notifier
	data     [256]byte
	state    txState
}

func newTxFuture(channel DMAChannel, notifier *Notifier, data [256]byte) *TxFuture {
	return &TxFuture{channel: channel, notifier: notifier, data: data, state: txInitial}
}

// Poll implements executor.Task. A finished transmit carries no result
// value; errors are not modeled for transmit since a busy channel is always
// retried rather than surfaced.
func (f *TxFuture) Poll(w *executor.Waker) executor.State {
	f.notifier.register(w)

	switch f.state {
	case txInitial:
		f.notifier.startTransfer()
		if err := f.channel.Start(f.data); err != nil {
			// A transmit Start failure is always transient (busy) since
			// there is nothing else to do with the frame but retry it.
			w.WakeByRef()
			return executor.Pending
		}
		f.state = txSendAndWaiting
		w.WakeByRef()
		return executor.Pending

	case txSendAndWaiting:
		if _, ok := f.channel.Complete(); ok {
			f.state = txDone
			return executor.Ready
		}
		w.WakeByRef()
		return executor.Pending

	default:
		return executor.Ready
	}
}
