// DMA-backed, frame-oriented async serial transport
// https://github.com/tamago-rack/rackfw
//
// Copyright (c) The rackfw Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package serial

import "errors"

// ErrBusy is returned by a DMAChannel's Start when the channel cannot begin
// a new transfer yet; it is transient and the caller should retry on its
// next poll rather than treat it as failure.
var ErrBusy = errors.New("serial: channel busy")

// ErrReceiveFailed is returned by a Read future when the underlying channel
// rejects Start with anything other than ErrBusy. Unlike the Rust original
// (spec §9 decision), the caller gets this typed error rather than a
// zero-filled buffer silently disguised as a successful read.
var ErrReceiveFailed = errors.New("serial: receive failed")
