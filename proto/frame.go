// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

import "errors"

// ErrChecksumMismatch is returned by Deserialize when the trailing CRC byte
// doesn't match the frame's first 255 bytes. Per the Open Question
// resolution (SPEC_FULL.md §3), no caller emits an Error reply for it: the
// Extension role drops the frame and keeps reading, while the Controller's
// Init and Assign return the error to their caller.
var ErrChecksumMismatch = errors.New("proto: crc mismatch")

// ErrWouldBlock is returned by a ByteReader/ByteWriter when no byte is
// currently available without blocking.
var ErrWouldBlock = errors.New("proto: would block")

// ByteReader is the single-byte, non-blocking read collaborator ReadBlocking
// polls (spec §6).
type ByteReader interface {
	ReadByte() (byte, error)
}

// ByteWriter is the single-byte, non-blocking write collaborator
// WriteBlocking polls (spec §6).
type ByteWriter interface {
	WriteByte(b byte) error
}

// Packet is the full 256-byte wire frame: version, receiver, payload, CRC
// (spec §3: "Packet").
type Packet struct {
	ProtocolVersion byte
	Receiver        ReceiverID
	Data            PacketData
}

// NewInitProbe builds the broadcast InitProbe packet the Controller sends
// while enumerating slots.
func NewInitProbe() Packet {
	return Packet{ProtocolVersion: Version, Receiver: ReceiverEveryone, Data: InitProbe()}
}

// NewAck builds an Acknowledge packet addressed to recv.
func NewAck(recv ReceiverID) Packet {
	return Packet{ProtocolVersion: Version, Receiver: recv, Data: Acknowledge()}
}

// Serialize encodes the packet into its fixed 256-byte wire form, with the
// CRC-8/SMBUS checksum computed over the first 255 bytes written into the
// trailing byte.
func (p Packet) Serialize() ([256]byte, error) {
	var frame [256]byte
	frame[0] = p.ProtocolVersion
	frame[1] = p.Receiver.Byte()

	var payload [253]byte
	if err := p.Data.serialize(&payload); err != nil {
		return frame, err
	}
	copy(frame[2:255], payload[:])

	frame[255] = crc8(frame[:255])
	return frame, nil
}

// Deserialize decodes a 256-byte wire frame into a Packet, validating its
// CRC first.
func Deserialize(frame [256]byte) (Packet, error) {
	if crc8(frame[:255]) != frame[255] {
		return Packet{}, ErrChecksumMismatch
	}

	var payload [253]byte
	copy(payload[:], frame[2:255])

	data, err := parsePacketData(&payload)
	if err != nil {
		return Packet{}, err
	}

	return Packet{
		ProtocolVersion: frame[0],
		Receiver:        receiverFromByte(frame[1]),
		Data:            data,
	}, nil
}

// ReadBlocking fills a 256-byte frame one byte at a time from reader,
// retrying on ErrWouldBlock, then deserializes it (spec §4.6:
// "read_blocking").
func ReadBlocking(reader ByteReader) (Packet, error) {
	var frame [256]byte
	for i := range frame {
		for {
			b, err := reader.ReadByte()
			if errors.Is(err, ErrWouldBlock) {
				continue
			}
			if err != nil {
				return Packet{}, err
			}
			frame[i] = b
			break
		}
	}
	return Deserialize(frame)
}

// WriteBlocking serializes p and writes every byte to writer one at a time,
// retrying on ErrWouldBlock, mirroring the Controller and Extension roles'
// synchronous init-phase handshake.
func WriteBlocking(writer ByteWriter, p Packet) error {
	frame, err := p.Serialize()
	if err != nil {
		return err
	}
	for _, b := range frame {
		for {
			err := writer.WriteByte(b)
			if errors.Is(err, ErrWouldBlock) {
				continue
			}
			if err != nil {
				return err
			}
			break
		}
	}
	return nil
}
