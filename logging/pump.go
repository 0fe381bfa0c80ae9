// Tracing-style logging sink, drained over the async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package logging

import (
	"github.com/tamago-rack/rackfw/executor"
	"github.com/tamago-rack/rackfw/queue"
	"github.com/tamago-rack/rackfw/serial"
)

// Pump is the background task that drains Records off the MPSC queue and
// writes each one through the async serial transport as a fixed 256-byte
// frame (spec §4.9, ported from `stm32l432/logging.rs`'s `run_backend`).
// Unlike the original, which sends a "Starting Logging" banner before
// entering its loop, startup framing is left to the caller (logging is a
// library here, not a fixed firmware image) — see DESIGN.md.
type Pump struct {
	rx        *queue.Receiver[Record]
	transport *serial.AsyncSerial

	yield    executor.Yield
	tx       *serial.TxFuture
	inFlight bool
}

// NewPump builds a Pump draining rx and writing through transport.
func NewPump(rx *queue.Receiver[Record], transport *serial.AsyncSerial) *Pump {
	return &Pump{rx: rx, transport: transport}
}

// Poll implements executor.Task. It never returns Ready: the logging pump
// runs for the lifetime of the firmware image (spec §5: nothing besides
// the documented suspension points ever terminates a background task).
func (p *Pump) Poll(w *executor.Waker) executor.State {
	for {
		if p.inFlight {
			if p.tx.Poll(w) == executor.Pending {
				return executor.Pending
			}
			p.tx = nil
			p.inFlight = false
		}

		record, err := p.rx.TryDequeue()
		if err != nil {
			if p.yield.Poll(w) == executor.Pending {
				return executor.Pending
			}
			p.yield.Reset()
			continue
		}

		p.tx = p.transport.Write(record.Encode())
		p.inFlight = true
	}
}
