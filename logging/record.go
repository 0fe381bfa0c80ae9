// Tracing-style logging sink, drained over the async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package logging implements the rack's tracing-style logging sink: a
// front end that captures span/event calls and a background task that
// drains them over the async serial transport (spec §4.9).
package logging

import "encoding/binary"

// EventKind tags which of the five captured call shapes a Record came from
// (spec §4.9: "NewSpan, Enter(id), Exit(id), Record(id), Event").
type EventKind byte

const (
	KindNewSpan EventKind = iota
	KindEnter
	KindExit
	KindRecord
	KindEvent
)

// Record is one captured logging call, queued between Subscriber and Pump.
type Record struct {
	Kind    EventKind
	SpanID  uint32
	Message string
}

// frameLayout: offset 0 = kind tag, offset 1:5 = span id (u32 LE, 0 if not
// applicable), offset 5 = message length byte, remainder = UTF-8 message
// text, zero-padded to 256 bytes total (SPEC_FULL.md §4.9 expansion — the
// original leaves this wire format unspecified, see DESIGN.md).
const (
	offsetKind    = 0
	offsetSpanID  = 1
	offsetMsgLen  = 5
	offsetMsgData = 6
	maxMessageLen = 256 - offsetMsgData
)

// Encode renders r into a 256-byte frame, truncating Message if it would
// overflow the fixed frame.
func (r Record) Encode() [256]byte {
	var frame [256]byte
	frame[offsetKind] = byte(r.Kind)
	binary.LittleEndian.PutUint32(frame[offsetSpanID:], r.SpanID)

	msg := r.Message
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	frame[offsetMsgLen] = byte(len(msg))
	copy(frame[offsetMsgData:], msg)

	return frame
}

// Decode parses a frame produced by Encode, for tests and any host-side
// log tailer.
func Decode(frame [256]byte) Record {
	n := int(frame[offsetMsgLen])
	if n > maxMessageLen {
		n = maxMessageLen
	}
	return Record{
		Kind:    EventKind(frame[offsetKind]),
		SpanID:  binary.LittleEndian.Uint32(frame[offsetSpanID:]),
		Message: string(frame[offsetMsgData : offsetMsgData+n]),
	}
}
