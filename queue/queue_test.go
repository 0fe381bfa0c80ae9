// Unbounded lock-free MPSC queue over a preallocated segment pool
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDequeueEmptyReturnsErrEmpty(t *testing.T) {
	_, rx := New[byte](4)

	_, err := rx.TryDequeue()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestEnqueueDequeueSingleValue(t *testing.T) {
	tx, rx := New[int](4)

	require.NoError(t, tx.TryEnqueue(13))

	v, err := rx.TryDequeue()
	require.NoError(t, err)
	assert.Equal(t, 13, v)

	_, err = rx.TryDequeue()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestEnqueueDequeueFIFOAcrossSegments(t *testing.T) {
	tx, rx := New[int](32)

	const n = 100
	for i := 0; i < n; i++ {
		require.NoError(t, tx.TryEnqueue(i))
	}

	for i := 0; i < n; i++ {
		v, err := rx.TryDequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	_, err := rx.TryDequeue()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestSegmentFillsAndChains(t *testing.T) {
	tx, rx := New[int](4)

	for i := 0; i < segmentSize+1; i++ {
		require.NoError(t, tx.TryEnqueue(i))
	}

	for i := 0; i < segmentSize+1; i++ {
		v, err := rx.TryDequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestPoolExhaustionReturnsErrFull(t *testing.T) {
	tx, _ := New[int](1)

	for i := 0; i < segmentSize; i++ {
		require.NoError(t, tx.TryEnqueue(i))
	}

	err := tx.TryEnqueue(segmentSize)
	require.ErrorIs(t, err, ErrFull)
}

func TestMultipleProducersInterleaveButEachStaysFIFOWithItself(t *testing.T) {
	tx, rx := New[int](64)

	done := make(chan struct{}, 2)
	producer := func(base int) {
		for i := 0; i < 50; i++ {
			_ = tx.TryEnqueue(base + i)
		}
		done <- struct{}{}
	}

	go producer(0)
	go producer(1000)
	<-done
	<-done

	seenLow, seenHigh := -1, 999
	count := 0
	for {
		v, err := rx.TryDequeue()
		if err != nil {
			break
		}
		count++
		if v < 1000 {
			require.Greater(t, v, seenLow)
			seenLow = v
		} else {
			require.Greater(t, v, seenHigh)
			seenHigh = v
		}
	}
	assert.Equal(t, 100, count)
}
