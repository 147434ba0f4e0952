// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Non-sleeping spinlock for the write buffer and PCIe model, which spec §5 calls out as
// resources shared across partition threads and accessed under a try-lock/busy-wait
// discipline "so as never to sleep in dispatch" — adapted from buffer_allocate's
// spin_trylock(&buf->lock) + cpu_relax() loop in the original.

package ssd

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a try-lock, busy-wait mutex. A blocking mutex would distort the latency
// measurements this simulator exists to produce (spec §9), so it never parks a goroutine.
type SpinLock struct {
	state int32
}

// TryLock attempts to acquire the lock without blocking.
func (s *SpinLock) TryLock() bool {
	return atomic.CompareAndSwapInt32(&s.state, 0, 1)
}

// Lock spins, yielding the processor between attempts, until the lock is acquired.
func (s *SpinLock) Lock() {
	for !s.TryLock() {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (s *SpinLock) Unlock() {
	atomic.StoreInt32(&s.state, 0)
}
