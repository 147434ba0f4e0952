// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Dispatch clock. Spec §9 says cpu_nr_dispatcher "is used only to read a per-CPU monotonic
// clock" and should be "abstracted as fn now() -> u64 injected at construction" — Clock is
// that injected function, and MonotonicNow is the default implementation.

package ssd

// Clock returns the current simulated time in nanoseconds. Submitted command arrival
// timestamps and returned completion timestamps share this clock's epoch.
type Clock func() uint64

// PinPartition pins the calling goroutine's OS thread to the CPU named by cpuNrDispatcher,
// honoring it as a literal affinity hint the way the original's per-partition dispatcher
// thread would be scheduled. It is best-effort: platforms without CPU affinity support
// (anything but Linux) simply do nothing.
func (d *Device) PinPartition(cpuNrDispatcher int) error {
	return pinPartition(cpuNrDispatcher)
}
