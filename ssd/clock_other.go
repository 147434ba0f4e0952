//go:build !linux

// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

// pinPartition is a no-op on platforms without CPU affinity support. cpu_nr_dispatcher
// remains an opaque hint there, per spec §9.
func pinPartition(cpu int) error { return nil }
