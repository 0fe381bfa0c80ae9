// Hierarchical, bounded-memory timer wheel
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package timer implements a hierarchical, bounded-memory timer wheel on
// top of a hardware tick source, giving tasks a sleep primitive without any
// dynamic allocation (spec §4.2).
package timer

// Scale maps an application-millisecond duration onto wheel ticks,
// rounding up so a sleep never fires early.
type Scale interface {
	ScaleMs(ms uint32) uint32
}

// scaleN implements Scale for a fixed millisecond-per-tick granularity.
type scaleN uint32

func (n scaleN) ScaleMs(ms uint32) uint32 {
	if ms%uint32(n) == 0 {
		return ms / uint32(n)
	}
	return ms/uint32(n) + 1
}

// Scale1Ms, Scale10Ms and Scale100Ms are the granularities the original
// design names explicitly.
const (
	Scale1Ms   scaleN = 1
	Scale10Ms  scaleN = 10
	Scale100Ms scaleN = 100
)
