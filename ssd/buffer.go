// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Write-buffer capacity tracking (buffer_* in the original) and the firmware + PCIe write
// pipeline built on top of it.

package ssd

import "fmt"

// ErrRequestExceedsBuffer is returned by Buffer.Allocate when the requested size is larger
// than the buffer's total capacity — a caller bug distinct from "temporarily full", preserved
// from buffer_allocate's NVMEV_ASSERT(size <= buf->size) (see SPEC_FULL.md §4).
var ErrRequestExceedsBuffer = fmt.Errorf("ssd: requested size exceeds write buffer capacity")

// Buffer tracks remaining capacity of the firmware write buffer. All mutation goes through
// a SpinLock, matching the non-sleeping discipline of spec §5/§4.3.
type Buffer struct {
	size      uint64
	remaining uint64
	lock      SpinLock
}

// NewBuffer constructs a Buffer with the given total capacity.
func NewBuffer(size uint64) *Buffer {
	return &Buffer{size: size, remaining: size}
}

// Allocate reserves n bytes of buffer capacity. It returns n on success, or 0 if the buffer
// does not currently have n bytes free (the caller should treat this as "stall, retry on the
// next dispatch tick" per spec §7's buffer-full policy). A request larger than the buffer's
// total size is a configuration/caller error, reported via ErrRequestExceedsBuffer.
func (b *Buffer) Allocate(n uint64) (uint64, error) {
	if n > b.size {
		return 0, ErrRequestExceedsBuffer
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if b.remaining < n {
		return 0, nil
	}
	b.remaining -= n
	return n, nil
}

// Release returns n bytes of capacity to the buffer.
func (b *Buffer) Release(n uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.remaining += n
}

// Refill resets the buffer to full capacity.
func (b *Buffer) Refill() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.remaining = b.size
}

// Remaining reports the buffer's current free capacity.
func (b *Buffer) Remaining() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.remaining
}

// AdvancePCIe schedules a length-byte DMA through the (shared) PCIe channel model.
func (d *Device) AdvancePCIe(start, length uint64) uint64 {
	d.pcieLock.Lock()
	defer d.pcieLock.Unlock()
	return d.PCIe.Request(start, length)
}

// AdvanceWriteBuffer models the firmware write-buffer pipeline: a fixed handshake cost plus
// a per-4KiB firmware cost, followed by a PCIe DMA. Y = A + B*X, X in 4KiB units, per spec §4.3.
func (d *Device) AdvanceWriteBuffer(start, length uint64) uint64 {
	nsecs := start
	nsecs += uint64(d.Params.FWWriteBufferLatency0Ns)
	nsecs += uint64(d.Params.FWWriteBufferLatency1Ns) * ceilDiv(length, 4096)
	return d.AdvancePCIe(nsecs, length)
}
