// Extension role of the rack protocol
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package extension implements the Extension role of the rack protocol:
// passive until selected, then servicing the command loop once assigned an
// id (spec §4.8).
package extension

import (
	"errors"
	"fmt"

	"github.com/tamago-rack/rackfw/executor"
	"github.com/tamago-rack/rackfw/proto"
	"github.com/tamago-rack/rackfw/serial"
)

// ReadyLine is the output pin an Extension raises to announce its presence
// and lowers on Restart (spec §6, ported from `extension.rs`'s
// `embedded_hal::digital::blocking::OutputPin` bound).
type ReadyLine interface {
	SetHigh()
	SetLow()
}

// SelectSense is the input pin an Extension reads to know whether it is the
// board currently addressed on the shared bus (spec §6, ported from
// `extension.rs`'s `InputPin` bound).
type SelectSense interface {
	High() bool
}

// Serial bundles the blocking byte transport the init handshake needs,
// mirroring rack/controller.Serial.
type Serial interface {
	proto.ByteReader
	proto.ByteWriter
}

// Extension is a single peripheral board: passive until selected and
// assigned an id, after which Run services the command loop (spec §4.8).
type Extension struct {
	ready     ReadyLine
	selection SelectSense
	id        byte
}

// Init raises the ready line, then blocks reading frames, ignoring any
// frame unless the selection line is high and the receiver is Everyone.
// It replies to InitProbe with "present but uninitialised" and keeps
// looping; it accepts the first Init{id} it sees, replies Acknowledge, and
// returns (spec §4.8 "Init phase", ported from `extension.rs`'s
// `Extension::init`).
func Init(ready ReadyLine, selection SelectSense, serial Serial) (*Extension, error) {
	ready.SetHigh()

	for {
		pkt, err := proto.ReadBlocking(serial)
		if errors.Is(err, proto.ErrChecksumMismatch) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extension: reading init frame: %w", err)
		}

		if !selection.High() || !pkt.Receiver.IsEveryone() {
			continue
		}

		switch pkt.Data.Kind {
		case proto.KindInitProbe:
			reply := proto.Packet{
				ProtocolVersion: proto.Version,
				Receiver:        proto.ReceiverController,
				Data:            proto.InitProbeResponse(false, 0),
			}
			if err := proto.WriteBlocking(serial, reply); err != nil {
				return nil, fmt.Errorf("extension: replying to init probe: %w", err)
			}

		case proto.KindInit:
			if err := proto.WriteBlocking(serial, proto.NewAck(proto.ReceiverController)); err != nil {
				return nil, fmt.Errorf("extension: acknowledging assignment: %w", err)
			}
			return &Extension{ready: ready, selection: selection, id: pkt.Data.ID}, nil

		default:
			return nil, fmt.Errorf("extension: unexpected frame kind %d during init", pkt.Data.Kind)
		}
	}
}

// ID returns the id this Extension was assigned during Init.
func (e *Extension) ID() byte { return e.id }

// Callbacks bundles the host application's hooks into the command loop:
// Metrics samples the board's current readings, Configure applies an
// incoming setting, and Options lists the static set of configurable
// settings this board supports (spec §4.8's Configure/Metrics/
// ConfigureOptions rows).
type Callbacks struct {
	Metrics   func() []proto.DataPoint
	Configure func(proto.DataPoint)
	Options   []proto.ConfigOption
}

// NewRun builds the Run-phase executor.Task: it loops reading frames over
// transport, accepting ones addressed to Everyone-while-selected or to this
// Extension's own id, and replies per spec §4.8's table. Restart lowers the
// ready line and the task completes (spec §4.8's "Cancellation"); a receive
// error also completes the task, without touching the ready line.
func (e *Extension) NewRun(transport *serial.AsyncSerial, cb Callbacks) executor.Task {
	return &runner{ext: e, transport: transport, cb: cb}
}

type runStage int

const (
	stageAwaitingFrame runStage = iota
	stageAwaitingReply
	stageDone
)

type runner struct {
	ext       *Extension
	transport *serial.AsyncSerial
	cb        Callbacks

	stage runStage
	rx    *serial.RxFuture
	tx    *serial.TxFuture
}

// Poll implements executor.Task. It loops synchronously through as many
// frame-less transitions (drop-and-retry, no-reply replies) as it can make
// without suspending, returning Pending only where Run's suspension points
// (spec §5) actually are: the pending Rx read, or the pending Tx reply.
func (r *runner) Poll(w *executor.Waker) executor.State {
	for {
		switch r.stage {
		case stageAwaitingFrame:
			if r.rx == nil {
				r.rx = r.transport.Read()
			}
			if r.rx.Poll(w) == executor.Pending {
				return executor.Pending
			}
			buf, err := r.rx.Result()
			r.rx = nil
			if err != nil {
				r.stage = stageDone
				return executor.Ready
			}

			pkt, err := proto.Deserialize(buf)
			if err != nil {
				continue
			}
			if !r.addressed(pkt.Receiver) {
				continue
			}

			reply, terminate := r.handle(pkt.Data)
			if terminate {
				r.stage = stageDone
				return executor.Ready
			}
			if reply == nil {
				continue
			}

			frame, err := reply.Serialize()
			if err != nil {
				continue
			}
			r.tx = r.transport.Write(frame)
			r.stage = stageAwaitingReply

		case stageAwaitingReply:
			if r.tx.Poll(w) == executor.Pending {
				return executor.Pending
			}
			r.tx = nil
			r.stage = stageAwaitingFrame

		default:
			return executor.Ready
		}
	}
}

// addressed reports whether recv is a frame this Extension must act on
// (spec §4.8's "accepting frames whose receiver is either
// Everyone-while-selected or ID(self.id)").
func (r *runner) addressed(recv proto.ReceiverID) bool {
	if recv.IsEveryone() {
		return r.ext.selection.High()
	}
	id, ok := recv.ExtensionID()
	return ok && id == r.ext.id
}

// handle acts on one incoming PacketData, returning the reply packet (if
// any) and whether Run should terminate (spec §4.8's reply table).
func (r *runner) handle(data proto.PacketData) (reply *proto.Packet, terminate bool) {
	ack := func(d proto.PacketData) *proto.Packet {
		return &proto.Packet{ProtocolVersion: proto.Version, Receiver: proto.ReceiverController, Data: d}
	}

	switch data.Kind {
	case proto.KindInitProbe:
		return ack(proto.InitProbeResponse(true, r.ext.id)), false

	case proto.KindRestart:
		r.ext.ready.SetLow()
		return nil, true

	case proto.KindConfigure:
		if r.cb.Configure != nil {
			r.cb.Configure(data.ConfigureOption)
		}
		return ack(proto.Acknowledge()), false

	case proto.KindMetrics:
		var points []proto.DataPoint
		if r.cb.Metrics != nil {
			points = r.cb.Metrics()
		}
		return ack(proto.MetricsResponse(proto.FixedOptions(points))), false

	case proto.KindConfigureOptions:
		return ack(proto.ConfigureOptionsResponse(proto.FixedOptions(r.cb.Options))), false

	default:
		// Init, InitProbeResponse, Acknowledge, Error, MetricsResponse and
		// ConfigureOptionsResponse are never valid incoming requests once
		// assigned; spec §4.8 has the Extension answer them with Error.
		return ack(proto.ProtocolError()), false
	}
}
