// Rack wire protocol: fixed 256-byte framed packet codec
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package proto

// OptionsList is a length-prefixed sequence of Sendable items, either
// borrowed from a fixed slice the caller owns or parsed lazily out of wire
// bytes (spec §3: "OptionsList"), generalizing the Rust original's
// `OptionsIter<'r, T>` enum with a Go generic instead of a lifetime-bound
// borrow, since items here (DataPoint, ConfigOption) are small value types
// copied freely rather than referenced.
type OptionsList[T any] struct {
	fixed    []T
	received []byte
	length   int
	isFixed  bool
}

// FixedOptions builds an OptionsList serving values directly from items,
// with no further decoding needed.
func FixedOptions[T any](items []T) OptionsList[T] {
	return OptionsList[T]{fixed: items, isFixed: true}
}

// Length reports how many items the list holds.
func (o OptionsList[T]) Length() int {
	if o.isFixed {
		return len(o.fixed)
	}
	return o.length
}

// Next consumes and returns the next item. Iterating a Received list is
// destructive: each call deserializes one item out of the remaining wire
// bytes (spec §3: "Iteration is destructive for received lists").
func (o *OptionsList[T]) Next(deserializeItem func([]byte) (T, []byte, error)) (T, bool) {
	var zero T

	if o.isFixed {
		if len(o.fixed) == 0 {
			return zero, false
		}
		item := o.fixed[0]
		o.fixed = o.fixed[1:]
		return item, true
	}

	if o.length == 0 {
		return zero, false
	}

	item, rest, err := deserializeItem(o.received)
	if err != nil {
		return zero, false
	}
	o.length--
	o.received = rest
	return item, true
}

// SerializeOptionsList writes the list-length byte followed by each item's
// wire encoding, consuming a Fixed list only (a Received list is already
// encoded bytes the caller forwards verbatim, matching the original's
// unimplemented `Received` serialize arm — a list obtained from the wire
// is passed through, never re-serialized, by this module's callers).
func SerializeOptionsList[T any](o OptionsList[T], buf []byte, serializeItem func(T, []byte) ([]byte, error)) ([]byte, error) {
	if len(buf) < 1 {
		return nil, ErrBufferTooShort
	}
	if !o.isFixed {
		return nil, ErrBufferTooShort
	}

	buf[0] = byte(len(o.fixed))
	rest := buf[1:]
	for _, item := range o.fixed {
		var err error
		rest, err = serializeItem(item, rest)
		if err != nil {
			return nil, err
		}
	}
	return rest, nil
}

// DeserializeOptionsList reads the list-length byte, scans forward through
// that many wire-encoded items to determine the byte span they occupy, and
// returns a Received OptionsList lazily covering that span plus whatever
// buffer follows it.
func DeserializeOptionsList[T any](buf []byte, deserializeItem func([]byte) (T, []byte, error)) (OptionsList[T], []byte, error) {
	if len(buf) < 1 {
		return OptionsList[T]{}, nil, ErrBufferTooShort
	}

	items := int(buf[0])
	rest := buf[1:]
	consumed := 0

	for i := 0; i < items; i++ {
		_, tail, err := deserializeItem(rest)
		if err != nil {
			return OptionsList[T]{}, nil, err
		}
		consumed += len(rest) - len(tail)
		rest = tail
	}

	return OptionsList[T]{
		received: buf[1 : 1+consumed],
		length:   items,
	}, rest, nil
}
