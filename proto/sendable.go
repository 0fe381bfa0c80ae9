// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package proto implements the rack wire protocol: a fixed 256-byte framed
// packet codec shared by the Controller and every Extension (spec §4.6),
// grounded on the original Rust `protocol` crate.
package proto

import "errors"

// Version is the current protocol version byte. Receivers observing any
// other value must reply Error (reserved, not yet emitted by this version
// per spec §6).
const Version byte = 0

// ErrBufferTooShort is returned by any serialize/deserialize step that runs
// out of room, mirroring the Rust original's bare `()` Sendable errors with
// an actual diagnostic.
var ErrBufferTooShort = errors.New("proto: buffer too short")

// serializeString writes a length-prefixed UTF-8 string (the Sendable impl
// for &str in traits.rs) and returns the remaining buffer.
func serializeString(s string, buf []byte) ([]byte, error) {
	if len(buf) < len(s)+1 {
		return nil, ErrBufferTooShort
	}
	buf[0] = byte(len(s))
	copy(buf[1:1+len(s)], s)
	return buf[1+len(s):], nil
}

// deserializeString reads a length-prefixed UTF-8 string and returns the
// remaining buffer.
func deserializeString(buf []byte) (string, []byte, error) {
	if len(buf) < 1 {
		return "", nil, ErrBufferTooShort
	}
	n := int(buf[0])
	if len(buf) < 1+n {
		return "", nil, ErrBufferTooShort
	}
	return string(buf[1 : 1+n]), buf[1+n:], nil
}
