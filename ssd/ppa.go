// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Physical page address packing. Spec §9 requires explicit shift/mask helpers rather than
// a native bitfield, since the packed layout is a contract tests assert field extraction
// against — adapted from bitops.go's style of small, explicit bit-twiddling helpers.

package ssd

// Bit widths of the packed PPA, matching conv_ftl's struct ppa 64-bit union layout:
// {page:16, block:16, plane:8, lun:8, channel:8, reserved:8}.
const (
	pageBits = 16
	blkBits  = 16
	plBits   = 8
	lunBits  = 8
	chBits   = 8
	rsvBits  = 64 - (pageBits + blkBits + plBits + lunBits + chBits)

	pageShift = 0
	blkShift  = pageShift + pageBits
	plShift   = blkShift + blkBits
	lunShift  = plShift + plBits
	chShift   = lunShift + lunBits
	rsvShift  = chShift + chBits

	pageMask = (uint64(1) << pageBits) - 1
	blkMask  = (uint64(1) << blkBits) - 1
	plMask   = (uint64(1) << plBits) - 1
	lunMask  = (uint64(1) << lunBits) - 1
	chMask   = (uint64(1) << chBits) - 1
)

// PPA is a packed physical page address. The all-ones value is the unmapped sentinel.
type PPA uint64

// UnmappedPPA is the sentinel PPA value denoting "no physical page assigned".
const UnmappedPPA PPA = ^PPA(0)

// LPN is a logical page number. The all-ones value is the unmapped sentinel.
type LPN uint64

// UnmappedLPN is the sentinel LPN value denoting "never written".
const UnmappedLPN LPN = ^LPN(0)

// PackPPA assembles a PPA from its geometric coordinates.
func PackPPA(ch, lun, pl, blk, pg uint32) PPA {
	return PPA((uint64(pg)&pageMask)<<pageShift |
		(uint64(blk)&blkMask)<<blkShift |
		(uint64(pl)&plMask)<<plShift |
		(uint64(lun)&lunMask)<<lunShift |
		(uint64(ch)&chMask)<<chShift)
}

// Page returns the packed page field.
func (p PPA) Page() uint32 { return uint32((uint64(p) >> pageShift) & pageMask) }

// Block returns the packed block field.
func (p PPA) Block() uint32 { return uint32((uint64(p) >> blkShift) & blkMask) }

// Plane returns the packed plane field.
func (p PPA) Plane() uint32 { return uint32((uint64(p) >> plShift) & plMask) }

// LUN returns the packed LUN field.
func (p PPA) LUN() uint32 { return uint32((uint64(p) >> lunShift) & lunMask) }

// Channel returns the packed channel field.
func (p PPA) Channel() uint32 { return uint32((uint64(p) >> chShift) & chMask) }

// Unmapped reports whether p is the unmapped sentinel.
func (p PPA) Unmapped() bool { return p == UnmappedPPA }

// Unmapped reports whether l is the unmapped sentinel.
func (l LPN) Unmapped() bool { return l == UnmappedLPN }
