// Hierarchical, bounded-memory timer wheel
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package timer

import (
	"errors"
	"sync/atomic"

	"github.com/tamago-rack/rackfw/executor"
)

// ErrFull is returned when a SlotStorage has no free slot left.
var ErrFull = errors.New("timer: slot storage full")

const (
	slotFree int32 = iota
	slotReserving
	slotArmed
)

// Slot holds one timer's waker plus its fired flag, exactly as spec §3's
// "Timer slot" describes: { state, waker, fired_flag }.
type Slot struct {
	state    atomic.Int32
	waker    *executor.Waker
	fired    atomic.Bool
	// remaining holds leftover ticks for an entry cascaded down from a
	// higher wheel level; unused (zero) for level-1-only entries.
	remaining atomic.Int32
}

// SlotStorage is a fixed-capacity array of waker slots shared by a wheel's
// buckets, referenced by index.
type SlotStorage struct {
	slots []Slot
	used  atomic.Int64
}

// NewSlotStorage allocates a SlotStorage with room for n concurrently
// armed timers.
func NewSlotStorage(n int) *SlotStorage {
	return &SlotStorage{slots: make([]Slot, n)}
}

// Len reports total slot capacity.
func (s *SlotStorage) Len() int { return len(s.slots) }

// addWaker reserves a free slot, stores the waker, flips it to Armed and
// returns its index. Concurrent producers race on distinct slots via CAS.
func (s *SlotStorage) addWaker(w *executor.Waker) (int, error) {
	usage := s.used.Add(1)
	if usage > int64(len(s.slots)) {
		s.used.Add(-1)
		return 0, ErrFull
	}

	for {
		for i := range s.slots {
			sl := &s.slots[i]

			if sl.state.Load() != slotFree {
				continue
			}
			if !sl.state.CompareAndSwap(slotFree, slotReserving) {
				continue
			}

			sl.fired.Store(false)
			sl.remaining.Store(0)
			sl.waker = w
			sl.state.Store(slotArmed)

			return i, nil
		}
	}
}

// takeSlot atomically claims an Armed slot for firing, returning its waker
// and fired flag. Returns ok=false if the slot was not Armed (already
// claimed by a racing tick, or released by the owner dropping its handle).
func (s *SlotStorage) takeSlot(index int) (w *executor.Waker, fired *atomic.Bool, ok bool) {
	sl := &s.slots[index]

	if !sl.state.CompareAndSwap(slotArmed, slotReserving) {
		return nil, nil, false
	}

	w = sl.waker
	sl.waker = nil

	return w, &sl.fired, true
}

// release returns a slot to Free, for Handle.Release / timer.Sleep Close.
func (s *SlotStorage) release(index int) {
	sl := &s.slots[index]
	sl.state.Store(slotFree)
	sl.fired.Store(false)
	sl.waker = nil
	s.used.Add(-1)
}
