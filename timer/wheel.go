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

// width is the fixed bucket count of a single wheel level (spec §3: "A
// level-1 wheel has 32 buckets").
const width = 32

// ErrOutOfRange is returned when a requested delay exceeds wheel capacity.
var ErrOutOfRange = errors.New("timer: delay out of range")

type bucket struct {
	// slotRef is -1 when empty, else the SlotStorage index of the armed
	// waker this bucket references (spec §3: "Wheel bucket").
	slotRef atomic.Int32
}

func newBucket() bucket {
	b := bucket{}
	b.slotRef.Store(-1)
	return b
}

type level1 struct {
	current atomic.Uint32
	buckets [width]bucket
}

func newLevel1() *level1 {
	l := &level1{}
	for i := range l.buckets {
		l.buckets[i] = newBucket()
	}
	return l
}

// tick advances by one bucket and fires whatever is armed there. It reports
// whether this tick completed a full rotation (current wrapped to 0),
// which is the cascading signal a higher wheel level needs.
func (l *level1) tick(storage *SlotStorage) (wrapped bool) {
	next := l.current.Add(1) % width
	wrapped = next == 0
	fireBucket(&l.buckets[next], storage)
	return wrapped
}

// addStep stakes the first empty bucket found by probing forward from
// current+ticks, up to width-1 buckets, per spec §4.2's collision policy.
func (l *level1) addStep(ticks uint32, w *executor.Waker, storage *SlotStorage) (*Handle, error) {
	if ticks >= width {
		return nil, ErrOutOfRange
	}

	idx, err := storage.addWaker(w)
	if err != nil {
		return nil, err
	}

	base := l.current.Load()
	for i := uint32(0); i < width-1; i++ {
		slotIndex := (base + ticks + i) % width
		if l.buckets[slotIndex].slotRef.CompareAndSwap(-1, int32(idx)) {
			return &Handle{registered: true, storage: storage, slotIndex: idx}, nil
		}
	}

	storage.release(idx)
	return nil, ErrFull
}

func fireBucket(b *bucket, storage *SlotStorage) {
	ref := b.slotRef.Load()
	if ref < 0 {
		return
	}
	if !b.slotRef.CompareAndSwap(ref, -1) {
		return
	}

	w, fired, ok := storage.takeSlot(int(ref))
	if !ok {
		return
	}

	fired.Store(true)
	w.Wake()
}

// level2 cascades whole rotations of a level1 wheel: each of its buckets
// represents "this many level1 rotations from now", with any leftover
// sub-rotation ticks stashed in the armed slot's remaining field.
//
// The upstream Rust source left tick/add_step as todo!() for this level;
// spec §9 requires a conforming implementation to cascade correctly. This
// is new design, grounded only in the spec's requirement, not a port.
type level2 struct {
	current atomic.Uint32
	buckets [width]bucket
}

func newLevel2() *level2 {
	l := &level2{}
	for i := range l.buckets {
		l.buckets[i] = newBucket()
	}
	return l
}

func (l *level2) addStep(outer uint32, remainder uint32, w *executor.Waker, storage *SlotStorage) (*Handle, error) {
	if outer >= width {
		return nil, ErrOutOfRange
	}

	idx, err := storage.addWaker(w)
	if err != nil {
		return nil, err
	}
	storage.slots[idx].remaining.Store(int32(remainder))

	base := l.current.Load()
	for i := uint32(0); i < width-1; i++ {
		slotIndex := (base + outer + i) % width
		if l.buckets[slotIndex].slotRef.CompareAndSwap(-1, int32(idx)) {
			return &Handle{registered: true, storage: storage, slotIndex: idx}, nil
		}
	}

	storage.release(idx)
	return nil, ErrFull
}

// Wheel is a (possibly two-level) timer wheel driven by an external tick
// source, plus the shared waker storage behind its buckets.
type Wheel struct {
	scale   Scale
	l1      *level1
	l2      *level2
	storage *SlotStorage
}

// New constructs a single-level wheel: up to width-1 ticks of capacity
// (spec §4.2's basic LevelOneWheel).
func New(scale Scale, capacity int) *Wheel {
	return &Wheel{
		scale:   scale,
		l1:      newLevel1(),
		storage: NewSlotStorage(capacity),
	}
}

// NewCascading constructs a two-level wheel with width*width capacity,
// resolving spec §9's open question on level-2 behaviour.
func NewCascading(scale Scale, capacity int) *Wheel {
	return &Wheel{
		scale:   scale,
		l1:      newLevel1(),
		l2:      newLevel2(),
		storage: NewSlotStorage(capacity),
	}
}

// Tick advances the wheel by one step; it is intended to be invoked from a
// hardware timer interrupt handler bound at startup (spec §4.2).
func (w *Wheel) Tick() {
	if w.l1.tick(w.storage) && w.l2 != nil {
		w.cascade()
	}
}

// cascade runs when the level-1 wheel completes a full rotation: it
// advances the level-2 dial by one and drains that bucket back down into
// level-1 (or fires immediately if its remaining sub-rotation delay is
// zero, or if level-1 has no free bucket left to re-probe into — firing
// early rather than losing the timer).
func (w *Wheel) cascade() {
	next := w.l2.current.Add(1) % width
	b := &w.l2.buckets[next]

	ref := b.slotRef.Load()
	if ref < 0 {
		return
	}
	if !b.slotRef.CompareAndSwap(ref, -1) {
		return
	}

	rem := w.storage.slots[ref].remaining.Load()
	if rem == 0 {
		fireTaken(int(ref), w.storage)
		return
	}

	base := w.l1.current.Load()
	for i := uint32(0); i < width-1; i++ {
		slotIndex := (base + uint32(rem) + i) % width
		if w.l1.buckets[slotIndex].slotRef.CompareAndSwap(-1, ref) {
			return
		}
	}

	fireTaken(int(ref), w.storage)
}

func fireTaken(ref int, storage *SlotStorage) {
	w, fired, ok := storage.takeSlot(ref)
	if !ok {
		return
	}
	fired.Store(true)
	w.Wake()
}

var firedHandle = &Handle{registered: false}

// addTicks arms waker to fire after the given number of wheel ticks. A
// ticks value of 0 fires immediately and returns the shared Fired handle.
func (w *Wheel) addTicks(ticks uint32, waker *executor.Waker) (*Handle, error) {
	if ticks == 0 {
		waker.Wake()
		return firedHandle, nil
	}

	if ticks < width {
		return w.l1.addStep(ticks, waker, w.storage)
	}

	if w.l2 == nil {
		return nil, ErrOutOfRange
	}

	// Level-2 buckets drain at level-1 wrap points, so count the delay from
	// the start of the current level-1 rotation.
	total := ticks + w.l1.current.Load()%width
	return w.l2.addStep(total/width, total%width, waker, w.storage)
}

// SleepMs returns a suspendable sleep operation for the given duration,
// scaled to wheel ticks per the wheel's configured Scale.
func (w *Wheel) SleepMs(ms uint32) *Sleep {
	return &Sleep{wheel: w, ticks: w.scale.ScaleMs(ms)}
}

// Handle is either Fired (the requested time was 0, the waker already ran)
// or Registered, referencing a live slot. Releasing a Registered handle
// frees its slot and decrements the storage's used-slot counter (spec §3:
// "Timer handle").
type Handle struct {
	registered bool
	storage    *SlotStorage
	slotIndex  int
}

// Fired reports whether this handle represents an already-fired, slotless
// timer.
func (h *Handle) Fired() bool { return !h.registered }

// Release returns a Registered handle's slot to the free pool. It is a
// no-op for the Fired handle. Matches the Rust original's Drop impl.
func (h *Handle) Release() {
	if !h.registered {
		return
	}
	h.storage.release(h.slotIndex)
}

func (h *Handle) isFiredSlot() bool {
	if !h.registered {
		return true
	}
	return h.storage.slots[h.slotIndex].fired.Load()
}
