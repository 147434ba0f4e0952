// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Top-level page-mapped FTL: wires the mapping table, line manager, write pointers, write
// flow control and GC together into the host read/write path (struct conv_ftl, conv_read,
// conv_write in the original).

package ftl

import (
	"fmt"

	"github.com/nvmevsim/ssdsim/ssd"
)

// ErrLPNOutOfRange is returned when a caller addresses a logical page beyond the namespace's
// provisioned capacity.
var ErrLPNOutOfRange = fmt.Errorf("ftl: lpn out of range")

// ErrBufferFull is returned from Write when the firmware write buffer has no room for this
// write right now. The logical write has already committed (the L2P mapping now points at the
// new physical page; see Write's doc comment) — only the NAND program and the completion
// timestamp are deferred. Per spec §7 this is non-fatal: the caller should retry admission
// on its next dispatch tick.
var ErrBufferFull = fmt.Errorf("ftl: write buffer has no room for this request")

// Config carries the tunables conv_ftl reads out of convparams: GC watermarks, the
// delay/opportunistic policy switch, and the over-provisioning ratio used to size the
// logical address space relative to the device's raw physical capacity.
type Config struct {
	GCThresLines     uint32
	GCThresLinesHigh uint32
	EnableGCDelay    bool

	// Exactly one of these should be set; PBAPcent takes precedence if both are nonzero.
	OPAreaPcent float64
	PBAPcent    int
}

// FTL is one namespace partition's page-mapped flash translation layer, bound to one
// ssd.Device's worth of simulated NAND.
type FTL struct {
	device *ssd.Device
	params *ssd.Params
	cp     Config

	mapTbl  *MapTable
	lineMgr *LineManager
	userWP  WritePointer
	gcWP    WritePointer
	wfc     WriteFlowControl

	totalLPNs uint64
}

// New builds an FTL over device, with the logical capacity derived from cp's
// over-provisioning ratio. Every line starts FREE, every LPN starts unmapped.
func New(device *ssd.Device, cp Config) (*FTL, error) {
	p := device.Params
	if p.TotalLines == 0 {
		return nil, fmt.Errorf("ftl: device has no lines")
	}

	logicalBytes := logicalCapacity(p, cp)
	totalLPNs := logicalBytes / uint64(p.PageSize)
	if totalLPNs == 0 {
		return nil, fmt.Errorf("ftl: computed zero logical pages")
	}

	f := &FTL{
		device:    device,
		params:    p,
		cp:        cp,
		totalLPNs: totalLPNs,
		mapTbl:    NewMapTable(totalLPNs, p),
		lineMgr:   NewLineManager(int(p.TotalLines), int(p.PagesPerLine)),
	}
	f.wfc = WriteFlowControl{
		Credits:         uint32(p.PagesPerLine) * 2,
		CreditsToRefill: uint32(p.PagesPerLine),
	}
	return f, nil
}

func logicalCapacity(p *ssd.Params, cp Config) uint64 {
	physical := p.TotalSecs * uint64(p.SectorSize)
	switch {
	case cp.PBAPcent > 0:
		return physical * 100 / uint64(cp.PBAPcent)
	case cp.OPAreaPcent > 0:
		return uint64(float64(physical) * 100 / (100 + cp.OPAreaPcent))
	default:
		return physical
	}
}

// TotalLPNs reports the namespace's logical page count.
func (f *FTL) TotalLPNs() uint64 { return f.totalLPNs }

// allocateFromWP hands out the next page from wp's current line, opening a fresh line from
// the free list first if none is held. If the returned page was the line's last, the line is
// handed off to the line manager as FULL (or immediately VICTIM, if it already carries
// invalid pages from writes that raced ahead of GC).
func (f *FTL) allocateFromWP(wp *WritePointer) (ssd.PPA, error) {
	if wp.CurLine == nil {
		line, err := f.lineMgr.PopFreeLine()
		if err != nil {
			return ssd.UnmappedPPA, err
		}
		wp.AssignLine(line)
	}

	ppa, full := wp.Next(f.params)
	if full {
		completed := wp.CurLine
		wp.CurLine = nil
		f.lineMgr.OnLineFull(completed)
	}
	return ppa, nil
}

func (f *FTL) invalidate(ppa ssd.PPA) {
	page := f.device.Page(ppa)
	page.Status = ssd.PageInvalid

	blk := f.device.Block(ppa)
	blk.ValidCount--
	blk.InvalidCount++

	line := f.lineMgr.Line(int(ppa.Block()))
	line.ValidCount--
	line.InvalidCount++
	f.lineMgr.OnInvalidate(line)
}

// Write services one host write of lpn, submitted at arrival. It returns the simulated
// completion timestamp the host should see.
//
// Order of operations follows the original conv_write: (1) consume a write credit, running a
// blocking foreground GC pass first if the bucket was already empty; (2) invalidate whatever
// page lpn previously mapped to, if any; (3) allocate a fresh physical page from the user
// write pointer and record the new mapping; (4) admit the write to the firmware write buffer
// and schedule its NAND program; (5) re-check the GC watermarks now that a page has been
// consumed. Note that the L2P mapping is committed in step 3, before the write buffer is
// consulted in step 4 — a buffer-full result does not roll the mapping back, since by
// contract the caller retries admission for the same (already-mapped) write.
func (f *FTL) Write(lpn ssd.LPN, arrival uint64) (uint64, error) {
	if lpn >= ssd.LPN(f.totalLPNs) {
		return arrival, ErrLPNOutOfRange
	}

	cursor := arrival
	if f.wfc.NeedsForegroundGC() {
		var err error
		cursor, err = f.gcForeground(cursor)
		if err != nil {
			return cursor, err
		}
	}
	f.wfc.Consume()

	oldPPA := f.mapTbl.Translate(lpn)
	if !oldPPA.Unmapped() {
		f.invalidate(oldPPA)
	}

	newPPA, err := f.allocateFromWP(&f.userWP)
	if err != nil {
		return cursor, err
	}
	f.mapTbl.Assign(lpn, newPPA)

	page := f.device.Page(newPPA)
	page.Status = ssd.PageValid
	blk := f.device.Block(newPPA)
	blk.ValidCount++
	line := f.lineMgr.Line(int(newPPA.Block()))
	line.ValidCount++

	pageSize := uint64(f.params.PageSize)
	n, err := f.device.WriteBuf.Allocate(pageSize)
	if err != nil {
		return cursor, err // ErrRequestExceedsBuffer: a config bug, not a transient stall
	}
	if n == 0 {
		return cursor, ErrBufferFull
	}

	var completion uint64
	if f.params.WriteEarlyCompletion {
		completion = f.device.AdvanceWriteBuffer(cursor, pageSize)
		// The NAND program still runs on the simulated clock, serializing later commands
		// on this LUN, even though the host isn't made to wait for it.
		f.device.AdvanceNAND(ssd.NandCmd{
			Op:         ssd.NandWrite,
			Kind:       ssd.UserIO,
			TargetPPA:  newPPA,
			XferBytes:  pageSize,
			SubmitTime: cursor,
		})
	} else {
		progStart := f.device.AdvanceWriteBuffer(cursor, pageSize)
		completion = f.device.AdvanceNAND(ssd.NandCmd{
			Op:         ssd.NandWrite,
			Kind:       ssd.UserIO,
			TargetPPA:  newPPA,
			XferBytes:  pageSize,
			SubmitTime: progStart,
		})
	}
	f.device.WriteBuf.Release(pageSize)

	return f.maybeRunGC(completion)
}

// Read services one host read of lpn, submitted at arrival. hit reports whether lpn was
// mapped; an unmapped read is a well-formed zero-fill, not an error (spec §7), but it still
// costs the firmware its read-dispatch overhead: spec §8 boundary scenario 6 pins its
// completion at arrival + fw_rd_lat, not an instantaneous return.
func (f *FTL) Read(lpn ssd.LPN, arrival uint64) (hit bool, completion uint64, err error) {
	if lpn >= ssd.LPN(f.totalLPNs) {
		return false, arrival, ErrLPNOutOfRange
	}

	ppa := f.mapTbl.Translate(lpn)
	if ppa.Unmapped() {
		return false, arrival + uint64(f.params.FirmwareReadLatencyNs()), nil
	}

	completion = f.device.AdvanceNAND(ssd.NandCmd{
		Op:                ssd.NandRead,
		Kind:              ssd.UserIO,
		TargetPPA:         ppa,
		XferBytes:         uint64(f.params.PageSize),
		SubmitTime:        arrival,
		InterleavePCIeDMA: true,
	})
	return true, completion, nil
}

// FreeLines, VictimLines and FullLines expose the line manager's list sizes, mainly for tests
// asserting the free+victim+full+open == total-lines invariant.
func (f *FTL) FreeLines() int   { return f.lineMgr.FreeCount() }
func (f *FTL) VictimLines() int { return f.lineMgr.VictimCount() }
func (f *FTL) FullLines() int   { return f.lineMgr.FullCount() }

// OpenLines reports how many of the (at most two) write pointers currently hold an open line.
func (f *FTL) OpenLines() int {
	n := 0
	if f.userWP.CurLine != nil {
		n++
	}
	if f.gcWP.CurLine != nil {
		n++
	}
	return n
}
