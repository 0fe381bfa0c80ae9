// Controller role of the rack protocol
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package controller implements the Controller role of the rack protocol:
// slot enumeration over a shared serial bus (spec §4.7).
package controller

import (
	"fmt"

	"github.com/tamago-rack/rackfw/proto"
)

// Select pulses the per-slot selection line so exactly one Extension drives
// the bus while the Controller probes it (spec §6).
type Select interface {
	Select(slot int)
}

// ReadyCheck reports whether a slot's ready line is asserted, i.e. whether
// an Extension board is physically present there (spec §6).
type ReadyCheck interface {
	Check(slot int) bool
}

// Extension records what the Controller learned about one rack slot during
// enumeration (spec §4.7's "per-slot extension table").
type Extension struct {
	ID          byte
	Initialized bool
}

// Controller owns the shared bus and the per-slot extension table built by
// Init (spec §4.7: "Controller role"). N is fixed by the caller via the
// numSlots argument passed to Init; there is no generic array dimension
// since Go arrays aren't parameterized by a runtime value.
type Controller struct {
	selector Select
	ready    ReadyCheck
	serial   Serial
	slots    []Extension
}

// Serial bundles the blocking byte transport the Controller's synchronous
// handshake needs (spec §6's ByteReader/ByteWriter, combined the way
// embedded_hal's nb::Read + nb::Write are combined in the reference init
// loop).
type Serial interface {
	proto.ByteReader
	proto.ByteWriter
}

// Init probes every slot in turn: if a slot's ready line isn't asserted it's
// recorded uninitialised without touching the bus; otherwise the Controller
// selects it, sends InitProbe, and blocks for a reply (spec §4.7's
// enumeration loop, ported from `controller.rs`'s `Controller::init`).
//
// numSlots is the rack's slot count (the Rust original's const generic N).
func Init(selector Select, ready ReadyCheck, serial Serial, numSlots int) (*Controller, error) {
	c := &Controller{
		selector: selector,
		ready:    ready,
		serial:   serial,
		slots:    make([]Extension, numSlots),
	}

	for slot := 0; slot < numSlots; slot++ {
		if !ready.Check(slot) {
			c.slots[slot] = Extension{ID: byte(slot), Initialized: false}
			continue
		}

		selector.Select(slot)

		if err := proto.WriteBlocking(serial, proto.NewInitProbe()); err != nil {
			return nil, fmt.Errorf("controller: probing slot %d: %w", slot, err)
		}

		response, err := proto.ReadBlocking(serial)
		if err != nil {
			return nil, fmt.Errorf("controller: reading slot %d probe reply: %w", slot, err)
		}
		if response.Data.Kind != proto.KindInitProbeResponse {
			return nil, fmt.Errorf("controller: slot %d replied with unexpected packet kind %d", slot, response.Data.Kind)
		}

		if response.Data.Status {
			c.slots[slot] = Extension{ID: response.Data.ID, Initialized: true}
		} else {
			c.slots[slot] = Extension{ID: byte(slot), Initialized: false}
		}
	}

	return c, nil
}

// Extensions returns the enumerated per-slot table (SPEC_FULL.md §3's
// "Extension table entry" accessors). The returned slice is the
// Controller's own table, not a copy.
func (c *Controller) Extensions() []Extension {
	return c.slots
}

// Assign sends an Init packet carrying id to slot, completing the
// assignment half of the handshake spec.md §8's S2 scenario exercises
// (the probe-and-record loop above only covers bare presence detection;
// assigning a durable id is a distinct request the command phase issues
// once enumeration has found an unassigned, ready slot).
func (c *Controller) Assign(slot int, id byte) error {
	c.selector.Select(slot)

	if err := proto.WriteBlocking(c.serial, proto.Packet{
		ProtocolVersion: proto.Version,
		Receiver:        proto.ReceiverEveryone,
		Data:            proto.InitAssign(id),
	}); err != nil {
		return fmt.Errorf("controller: assigning slot %d: %w", slot, err)
	}

	response, err := proto.ReadBlocking(c.serial)
	if err != nil {
		return fmt.Errorf("controller: reading slot %d assignment ack: %w", slot, err)
	}
	if response.Data.Kind != proto.KindAcknowledge {
		return fmt.Errorf("controller: slot %d did not acknowledge assignment (got kind %d)", slot, response.Data.Kind)
	}

	c.slots[slot] = Extension{ID: id, Initialized: true}
	return nil
}
