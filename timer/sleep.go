// Hierarchical, bounded-memory timer wheel
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package timer

import "github.com/tamago-rack/rackfw/executor"

// Sleep is the suspendable operation returned by Wheel.SleepMs. On first
// poll it registers itself with the wheel; on every subsequent poll it
// reports Ready iff its slot's fired flag has been set by a Tick (spec
// §4.2: "sleep_ms").
type Sleep struct {
	wheel  *Wheel
	ticks  uint32
	handle *Handle
	err    error
}

// Poll implements executor.Task so a Sleep can be driven directly by the
// executor, or embedded inside a larger task's own Poll.
func (s *Sleep) Poll(w *executor.Waker) executor.State {
	if s.handle == nil {
		h, err := s.wheel.addTicks(s.ticks, w)
		if err != nil {
			s.err = err
			return executor.Ready
		}
		s.handle = h

		if s.handle.Fired() {
			return executor.Ready
		}
		return executor.Pending
	}

	if s.handle.isFiredSlot() {
		return executor.Ready
	}

	return executor.Pending
}

// Err returns the registration error, if Poll returned Ready because the
// wheel rejected the request (Full or OutOfRange) rather than because the
// timer actually fired.
func (s *Sleep) Err() error { return s.err }

// Close releases the timer slot, equivalent to dropping the sleep future in
// the Rust original. Safe to call multiple times and safe to call after
// the timer has already fired.
func (s *Sleep) Close() {
	if s.handle != nil {
		s.handle.Release()
		s.handle = firedHandle
	}
}
