// Cooperative, allocation-free task scheduler
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package executor

// Yield is the manual "yield once" primitive named in spec §4.3 and §5: a
// task composes it to hand control back to the executor for exactly one
// pass without waiting on any external event. First poll re-arms its own
// wake-bit and returns Pending; second poll returns Ready.
type Yield struct {
	polled bool
}

// Poll implements the suspension-point contract directly, so Yield can be
// embedded inline in a larger state machine's own Poll method.
func (y *Yield) Poll(w *Waker) State {
	if !y.polled {
		y.polled = true
		w.WakeByRef()
		return Pending
	}

	return Ready
}

// Reset allows a Yield value to be reused across suspension points within
// the same task.
func (y *Yield) Reset() { y.polled = false }
