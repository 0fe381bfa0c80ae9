// DMA-backed, frame-oriented async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package serial

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamago-rack/rackfw/executor"
)

// fakeChannel stands in for a real DMA peripheral: Start records the buffer
// (or fails with startErr if set, or reports ErrBusy while busyUntilFinish
// is set and a transfer has started), and finish() arms Complete to hand
// the buffer back on the next poll.
type fakeChannel struct {
	busyUntilFinish bool
	startErr        error
	started         bool
	pending         [256]byte
	ready           bool
}

func (c *fakeChannel) Start(buf [256]byte) error {
	if c.startErr != nil {
		return c.startErr
	}
	if c.busyUntilFinish && c.started {
		return ErrBusy
	}
	c.started = true
	c.pending = buf
	return nil
}

func (c *fakeChannel) Complete() ([256]byte, bool) {
	if !c.ready {
		return [256]byte{}, false
	}
	c.ready = false
	return c.pending, true
}

func (c *fakeChannel) finish() { c.ready = true }

func TestTxFutureLifecycle(t *testing.T) {
	ch := &fakeChannel{}
	s := New(ch, &fakeChannel{})
	w := executor.NewWaker()

	var frame [256]byte
	frame[0] = 0xAB

	tx := s.Write(frame)

	state := tx.Poll(w)
	require.Equal(t, executor.Pending, state, "first poll starts the transfer")
	require.True(t, ch.started)

	state = tx.Poll(w)
	require.Equal(t, executor.Pending, state, "still waiting for completion")

	ch.finish()
	s.TransmitComplete()

	state = tx.Poll(w)
	require.Equal(t, executor.Ready, state)

	state = tx.Poll(w)
	require.Equal(t, executor.Ready, state, "polling again after Done stays Ready")
}

func TestTxFutureRetriesWhileBusy(t *testing.T) {
	ch := &fakeChannel{busyUntilFinish: true}
	ch.started = true // simulate a transfer already in flight
	s := New(ch, &fakeChannel{})
	w := executor.NewWaker()

	tx := s.Write([256]byte{})

	state := tx.Poll(w)
	require.Equal(t, executor.Pending, state)
	state = tx.Poll(w)
	require.Equal(t, executor.Pending, state)

	ch.busyUntilFinish = false
	state = tx.Poll(w)
	require.Equal(t, executor.Pending, state, "start now succeeds, waiting on completion")

	ch.finish()
	state = tx.Poll(w)
	assert.Equal(t, executor.Ready, state)
}

func TestRxFutureReceivesFrame(t *testing.T) {
	ch := &fakeChannel{}
	s := New(&fakeChannel{}, ch)
	w := executor.NewWaker()

	rx := s.Read()

	state := rx.Poll(w)
	require.Equal(t, executor.Pending, state)

	ch.pending[5] = 0x42
	ch.finish()
	s.ReceiveComplete()

	state = rx.Poll(w)
	require.Equal(t, executor.Ready, state)

	buf, err := rx.Result()
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), buf[5])
}

func TestRxFutureReportsTypedErrorWithoutZeroFillMasking(t *testing.T) {
	sentinel := errors.New("hardware fault")
	ch := &fakeChannel{startErr: sentinel}
	s := New(&fakeChannel{}, ch)
	w := executor.NewWaker()

	rx := s.Read()
	state := rx.Poll(w)
	require.Equal(t, executor.Ready, state, "a non-busy start error ends the future immediately")

	_, err := rx.Result()
	require.ErrorIs(t, err, ErrReceiveFailed)
}

func TestNotifierWakesRegisteredWaker(t *testing.T) {
	var n Notifier
	w := executor.NewWaker()
	n.register(w)

	require.False(t, w.Woken())
	n.complete()
	assert.True(t, w.Woken())
}
