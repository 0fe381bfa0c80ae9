// DMA-backed, frame-oriented async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package serial

import (
	"errors"

	"github.com/tamago-rack/rackfw/executor"
)

type rxState int

const (
	rxInitial rxState = iota
	rxSendAndWaiting
	rxDone
)

// RxFuture receives one 256-byte frame through a DMAChannel. Unlike the
// Rust original's circular-buffer RxFuture, which zero-fills its output
// buffer and reports it as a successful Ready on a read error, a failed
// Start here ends the future with ErrReceiveFailed and no buffer at all
// (spec §9 decision 4).
type RxFuture struct {
	channel  DMAChannel
	notifier *Notifier
	state    rxState
	buf      [256]byte
	err      error
}

func newRxFuture(channel DMAChannel, notifier *Notifier) *RxFuture {
	return &RxFuture{channel: channel, notifier: notifier, state: rxInitial}
}

func (f *RxFuture) Poll(w *executor.Waker) executor.State {
	f.notifier.register(w)

	switch f.state {
	case rxInitial:
		f.notifier.startTransfer()
		if err := f.channel.Start([256]byte{}); err != nil {
			if errors.Is(err, ErrBusy) {
				w.WakeByRef()
				return executor.Pending
			}
			f.err = ErrReceiveFailed
			f.state = rxDone
			return executor.Ready
		}
		f.state = rxSendAndWaiting
		w.WakeByRef()
		return executor.Pending

	case rxSendAndWaiting:
		if buf, ok := f.channel.Complete(); ok {
			f.buf = buf
			f.state = rxDone
			return executor.Ready
		}
		w.WakeByRef()
		return executor.Pending

	default:
		return executor.Ready
	}
}

// Result returns the received frame and any error, valid only once Poll has
// returned Ready.
func (f *RxFuture) Result() ([256]byte, error) { return f.buf, f.err }
