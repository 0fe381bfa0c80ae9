// Lock-free fixed-block-size memory allocator over a byte arena
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnsupportedBlockSize(t *testing.T) {
	_, err := New(BlockSize(100), 4)
	require.ErrorIs(t, err, ErrInvalidBlockSize)
}

func TestAllocateAndFreeRoundTrip(t *testing.T) {
	a, err := New(Block256, 4)
	require.NoError(t, err)

	b, err := a.Allocate()
	require.NoError(t, err)
	require.Len(t, b.Bytes(), 256)

	// Bytes beyond the free-list's own next-pointer storage (the first 8
	// bytes of a freed block) survive a free/reallocate round trip.
	b.Bytes()[16] = 0xAA
	a.Free(b)

	b2, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), b2.Bytes()[16])
}

func TestExhaustiveAllocationsThenFreeAll(t *testing.T) {
	a, err := New(Block256, 4)
	require.NoError(t, err)

	var blocks []Block
	for i := 0; i < 4; i++ {
		b, err := a.Allocate()
		require.NoError(t, err)
		blocks = append(blocks, b)
	}

	for _, b := range blocks {
		a.Free(b)
	}

	for i := 0; i < 4; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
}

func TestOverAllocationReturnsErrorNotPanic(t *testing.T) {
	a, err := New(Block256, 4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}

	_, err = a.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestBlocksDoNotOverlap(t *testing.T) {
	a, err := New(Block64, 3)
	require.NoError(t, err)

	var blocks []Block
	for i := 0; i < 3; i++ {
		b, err := a.Allocate()
		require.NoError(t, err)
		for j := range b.Bytes() {
			b.Bytes()[j] = byte(i + 1)
		}
		blocks = append(blocks, b)
	}

	for i, b := range blocks {
		for _, v := range b.Bytes() {
			require.Equal(t, byte(i+1), v)
		}
	}
}
