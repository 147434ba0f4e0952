// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Greedy garbage collection: victim selection, copy-forward of valid pages, and erase
// (do_gc / gc_write_page / mark_block_free in conv_ftl).

package ftl

import (
	"errors"
	"fmt"

	"github.com/nvmevsim/ssdsim/ssd"
)

// ErrGCCannotFree is returned when the victim queue is empty, or its cheapest candidate
// carries no invalid pages — GC has nothing left to reclaim. Per spec §7 this is fatal to the
// partition: it means the workload has outrun the device's over-provisioning.
var ErrGCCannotFree = fmt.Errorf("ftl: garbage collection cannot free any line")

// gcCycle reclaims exactly one victim line: it copy-forwards every still-valid page onto the
// GC write pointer, then erases every member block. base is the simulated time the cycle is
// considered to start from (chained off of whatever triggered it); it returns the completion
// time of the last NAND operation the cycle issued.
func (f *FTL) gcCycle(base uint64) (uint64, error) {
	victim := f.lineMgr.Victims.Pop()
	if victim == nil {
		return base, ErrGCCannotFree
	}
	if victim.InvalidCount == 0 {
		// Nothing to reclaim here; this shouldn't normally be queued, but guard anyway.
		f.lineMgr.Victims.Push(victim)
		return base, ErrGCCannotFree
	}

	cursor := base
	p := f.params

	for ch := 0; ch < p.Channels; ch++ {
		for lun := 0; lun < p.LUNsPerChannel; lun++ {
			for pg := 0; pg < p.PagesPerBlock; pg++ {
				oldPPA := ssd.PackPPA(uint32(ch), uint32(lun), 0, uint32(victim.ID), uint32(pg))
				page := f.device.Page(oldPPA)
				if page.Status != ssd.PageValid {
					continue
				}

				lpn := f.mapTbl.Reverse(oldPPA)

				readDone := f.device.AdvanceNAND(ssd.NandCmd{
					Op:         ssd.NandRead,
					Kind:       ssd.GCIO,
					TargetPPA:  oldPPA,
					XferBytes:  uint64(p.PageSize),
					SubmitTime: cursor,
				})

				newPPA, err := f.allocateFromWP(&f.gcWP)
				if err != nil {
					f.lineMgr.Victims.Push(victim)
					return cursor, err
				}

				f.mapTbl.Assign(lpn, newPPA)
				newPage := f.device.Page(newPPA)
				newPage.Status = ssd.PageValid
				newBlk := f.device.Block(newPPA)
				newBlk.ValidCount++
				newLine := f.lineMgr.Line(int(newPPA.Block()))
				newLine.ValidCount++

				writeDone := f.device.AdvanceNAND(ssd.NandCmd{
					Op:         ssd.NandWrite,
					Kind:       ssd.GCIO,
					TargetPPA:  newPPA,
					XferBytes:  uint64(p.PageSize),
					SubmitTime: readDone,
				})
				if writeDone > cursor {
					cursor = writeDone
				}
			}
		}
	}

	for ch := 0; ch < p.Channels; ch++ {
		for lun := 0; lun < p.LUNsPerChannel; lun++ {
			blkPPA := ssd.PackPPA(uint32(ch), uint32(lun), 0, uint32(victim.ID), 0)
			blk := f.device.Block(blkPPA)

			eraseDone := f.device.AdvanceNAND(ssd.NandCmd{
				Op:         ssd.NandErase,
				Kind:       ssd.GCIO,
				TargetPPA:  blkPPA,
				SubmitTime: cursor,
			})
			if eraseDone > cursor {
				cursor = eraseDone
			}

			for i := range blk.Pages {
				blk.Pages[i].Status = ssd.PageFree
			}
			blk.ValidCount = 0
			blk.InvalidCount = 0
			blk.EraseCount++
			blk.WritePointer = 0
		}
	}

	f.lineMgr.Reclaim(victim)
	f.wfc.Refill()

	return cursor, nil
}

// gcForeground runs GC cycles back to back, blocking the calling write, until the free line
// count climbs back above the high watermark (or GC runs out of victims, which is fatal).
func (f *FTL) gcForeground(base uint64) (uint64, error) {
	cursor := base
	for f.lineMgr.FreeCount() <= int(f.cp.GCThresLinesHigh) {
		var err error
		cursor, err = f.gcCycle(cursor)
		if err != nil {
			return cursor, err
		}
	}
	return cursor, nil
}

// maybeRunGC implements the write-triggered GC policy (spec §4.7): once free lines drop to
// the high watermark, GC runs in the foreground until recovered, optionally pushing the
// triggering write's own completion out to match (enable_gc_delay); between the high and low
// watermarks, a single opportunistic cycle runs without affecting the write's completion.
//
// Unlike the credit-exhaustion check in Write, a watermark trigger finding no victim left to
// reclaim (ErrGCCannotFree) is not fatal here — it just means GC has nothing more useful to do
// at this instant, and the watermark will be rechecked on the next write. ErrNoFreeLine is a
// different failure entirely: it means copy-forward itself deadlocked for lack of a line to
// copy into, the genuine "deadlock" spec §4.5 describes, and is always propagated as fatal.
func (f *FTL) maybeRunGC(writeCompletion uint64) (uint64, error) {
	free := f.lineMgr.FreeCount()

	switch {
	case free <= int(f.cp.GCThresLinesHigh):
		last := writeCompletion
		for f.lineMgr.FreeCount() <= int(f.cp.GCThresLinesHigh) {
			c, err := f.gcCycle(last)
			if err != nil {
				if errors.Is(err, ErrNoFreeLine) {
					return c, err
				}
				break // ErrGCCannotFree: nothing left to reclaim yet; recheck on next write
			}
			last = c
		}
		if f.cp.EnableGCDelay && last > writeCompletion {
			return last, nil
		}
		return writeCompletion, nil

	case free <= int(f.cp.GCThresLines):
		if _, err := f.gcCycle(writeCompletion); err != nil && errors.Is(err, ErrNoFreeLine) {
			return writeCompletion, err
		}
		return writeCompletion, nil

	default:
		return writeCompletion, nil
	}
}
