// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

// ReceiverID names who a Packet is addressed to (spec §3: "ReceiverID").
type ReceiverID struct {
	everyone bool
	id       byte // 0x00 means Controller when !everyone
}

// ReceiverController addresses the Controller.
var ReceiverController = ReceiverID{}

// ReceiverEveryone addresses every Extension on the bus.
var ReceiverEveryone = ReceiverID{everyone: true}

// ReceiverExtension addresses a single Extension by its assigned id.
func ReceiverExtension(id byte) ReceiverID { return ReceiverID{id: id} }

// receiverFromByte decodes the wire receiver byte.
func receiverFromByte(b byte) ReceiverID {
	switch b {
	case 0x00:
		return ReceiverController
	case 0xff:
		return ReceiverEveryone
	default:
		return ReceiverExtension(b)
	}
}

// Byte encodes the receiver as its wire byte.
func (r ReceiverID) Byte() byte {
	if r.everyone {
		return 0xff
	}
	return r.id
}

// IsController reports whether this targets the Controller.
func (r ReceiverID) IsController() bool { return !r.everyone && r.id == 0x00 }

// IsEveryone reports whether this targets every Extension.
func (r ReceiverID) IsEveryone() bool { return r.everyone }

// ExtensionID returns the targeted Extension's id, if this addresses one
// specifically rather than the Controller or everyone.
func (r ReceiverID) ExtensionID() (byte, bool) {
	if r.everyone || r.id == 0x00 {
		return 0, false
	}
	return r.id, true
}
