// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Channel bandwidth-queue timing model (chmodel_* in the original).

package ssd

// ChannelModel maintains a single monotonically nondecreasing "next-free" timestamp and
// serializes transfer requests against it. Used both for per-NAND-channel transfer queues
// (one per Channel, owned by its partition thread — no locking needed) and for the shared
// PCIe transfer queue (wrapped by a SpinLock in Device, since spec §5 calls PCIe a resource
// shared across partitions).
type ChannelModel struct {
	bandwidthMiBs uint64 // MiB/s
	nextFree      uint64 // ns
	fwOverheadNs  int64  // fixed per-request firmware overhead folded into the model
}

// NewChannelModel constructs a channel model with the given bandwidth in MiB/s.
func NewChannelModel(bandwidthMiBs uint64) *ChannelModel {
	return &ChannelModel{bandwidthMiBs: bandwidthMiBs}
}

// Request schedules a transfer of the given size, starting no earlier than max(start,
// nextFree), and returns its completion time. Arithmetic is integer nanoseconds with
// division rounded up, to avoid drift from repeated truncation.
func (c *ChannelModel) Request(start, bytes uint64) uint64 {
	s := max64(start, c.nextFree)
	bytesPerSec := c.bandwidthMiBs * 1024 * 1024
	lat := ceilDiv(bytes*1_000_000_000, bytesPerSec)
	if c.fwOverheadNs > 0 {
		lat += uint64(c.fwOverheadNs)
	}
	completion := s + lat
	c.nextFree = completion
	return completion
}

// NextFree returns the channel's current next-available timestamp without scheduling anything.
func (c *ChannelModel) NextFree() uint64 { return c.nextFree }
