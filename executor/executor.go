// Cooperative, allocation-free task scheduler
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package executor implements a fixed-count, allocation-free cooperative
// task scheduler for single-threaded, no-OS firmware.
//
// Tasks are polled in a single round-robin pass over a fixed array; a task
// is only polled when its wake-bit is set, and the executor clears the bit
// before polling so a synchronous re-wake (inside Poll) is not lost. The
// scheduler never preempts, never spawns, and never returns once started —
// Run is divergent by design (see spec §4.1).
package executor

// State is the outcome of a single Poll call.
type State int

const (
	// Pending means the task made no forward progress and should be
	// polled again once its wake-bit is next set.
	Pending State = iota
	// Ready means the task has completed and must never be polled again.
	Ready
)

// Task is the polymorphic polling capability every scheduled unit of work
// implements. Go has no first-class compile-time heterogeneous list (unlike
// the Rust original's const-generic cons-list), so futures are erased to
// this interface and stored in a fixed array, exactly as suggested by the
// upstream design notes.
type Task interface {
	Poll(w *Waker) State
}

// TaskFunc adapts a plain poll function to the Task interface.
type TaskFunc func(w *Waker) State

// Poll implements Task.
func (f TaskFunc) Poll(w *Waker) State { return f(w) }

type slot struct {
	task Task
	wake WakeBit
	done bool
}

// Executor is a fixed-size array of task slots, parameterised at
// construction by the task list. It performs no dynamic allocation once
// built.
type Executor struct {
	slots []slot
}

// New constructs an Executor over the given tasks. Every wake-bit starts
// set so the first pass polls every task once, matching spec §3's "Wake-bit"
// invariant.
func New(tasks []Task) *Executor {
	e := &Executor{slots: make([]slot, len(tasks))}

	for i, t := range tasks {
		e.slots[i].task = t
		e.slots[i].wake.init()
	}

	return e
}

// Run scans the task array in fixed index order, forever. For each
// not-done slot whose wake-bit is set, it clears the bit and polls the task
// exactly once. It never returns: if every task has completed, that is a
// fatal invariant violation (the firmware has nothing left to schedule) and
// Run panics rather than spin a dead loop.
func (e *Executor) Run() {
	for {
		anyAlive := false

		for i := range e.slots {
			s := &e.slots[i]

			if s.done {
				continue
			}
			anyAlive = true

			if !s.wake.ready() {
				continue
			}
			s.wake.set(false)

			w := &Waker{bit: &s.wake}

			if s.task.Poll(w) == Ready {
				s.done = true
			}
		}

		if !anyAlive {
			panic("executor: all tasks completed, nothing left to schedule")
		}
	}
}

// Len reports the number of task slots.
func (e *Executor) Len() int { return len(e.slots) }
