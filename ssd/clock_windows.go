//go:build windows

// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import "time"

// MonotonicNow falls back to time.Now().UnixNano() on platforms without the unix
// ClockGettime syscall. That is a wall-clock reading, so it is not guaranteed monotonic.
func MonotonicNow() uint64 {
	return uint64(time.Now().UnixNano())
}
