// Tracing-style logging sink, drained over the async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Record{
		{Kind: KindNewSpan, SpanID: 1},
		{Kind: KindEnter, SpanID: 7},
		{Kind: KindExit, SpanID: 7},
		{Kind: KindRecord, SpanID: 7, Message: "voltage=12"},
		{Kind: KindEvent, Message: "boot complete"},
	}

	for _, r := range cases {
		got := Decode(r.Encode())
		assert.Equal(t, r, got)
	}
}

func TestRecordEncodeTruncatesOverlongMessage(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}

	r := Record{Kind: KindEvent, Message: string(long)}
	frame := r.Encode()

	got := Decode(frame)
	assert.Equal(t, maxMessageLen, len(got.Message))
}
