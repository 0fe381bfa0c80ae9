// DMA-backed, frame-oriented async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package serial

// AsyncSerial bundles a transmit and a receive DMA channel behind a single
// transport, matching the Rust original's `general::AsyncSerial<256>` trait
// (`general/src/serial.rs`) that `rack/extension`'s run phase and
// `logging` are written against rather than a concrete UART.
// (`rack/controller` uses blocking byte I/O instead.)
type AsyncSerial struct {
	txChannel DMAChannel
	rxChannel DMAChannel
	txNotify  Notifier
	rxNotify  Notifier
}

// New wraps a pair of DMA channels — one dedicated to transmit, one to
// receive — as a single frame-oriented transport.
func New(tx, rx DMAChannel) *AsyncSerial {
	return &AsyncSerial{txChannel: tx, rxChannel: rx}
}

// Write returns a suspendable operation that sends one 256-byte frame.
func (s *AsyncSerial) Write(frame [256]byte) *TxFuture {
	return newTxFuture(s.txChannel, &s.txNotify, frame)
}

// Read returns a suspendable operation that receives one 256-byte frame.
func (s *AsyncSerial) Read() *RxFuture {
	return newRxFuture(s.rxChannel, &s.rxNotify)
}

// TransmitComplete notifies the pending TxFuture, if any, that the channel
// finished its transfer. Intended to be called from whatever context
// observes hardware completion (an interrupt handler in firmware, a test
// driving a fake channel directly here).
func (s *AsyncSerial) TransmitComplete() { s.txNotify.complete() }

// ReceiveComplete is TransmitComplete's receive-side counterpart.
func (s *AsyncSerial) ReceiveComplete() { s.rxNotify.complete() }
