// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Write pointer striping: the order in which a line's pages are filled (write_pointer in
// conv_ftl). Host writes and GC copy-forward each have their own pointer so the two traffic
// classes never collide on the same line.

package ftl

import "github.com/nvmevsim/ssdsim/ssd"

// WritePointer tracks the next physical page a stream of sequential writes (host or GC) will
// land on, within whichever line it currently owns. Striping order is LUN, then channel, then
// in-block page index — so consecutive logical writes spread across LUNs before advancing to
// the next page, maximizing parallelism across independent NAND dies.
type WritePointer struct {
	CurLine *Line
	Ch      uint32
	Lun     uint32
	Pl      uint32
	Pg      uint32
}

// AssignLine resets the pointer to the first page of a newly opened line.
func (wp *WritePointer) AssignLine(l *Line) {
	wp.CurLine = l
	wp.Ch, wp.Lun, wp.Pl, wp.Pg = 0, 0, 0, 0
}

// Next returns the PPA the pointer currently addresses and advances it one step. The second
// return value reports whether this was the line's last page, i.e. the line just became FULL.
// Plane is always 0: line sizing assumes one plane per LUN (spec §9 open question, resolved
// the same way NewParams resolves BlocksPerLine).
func (wp *WritePointer) Next(p *ssd.Params) (ssd.PPA, bool) {
	ppa := ssd.PackPPA(wp.Ch, wp.Lun, wp.Pl, uint32(wp.CurLine.ID), wp.Pg)

	switch {
	case int(wp.Lun)+1 < p.LUNsPerChannel:
		wp.Lun++
		return ppa, false
	case int(wp.Ch)+1 < p.Channels:
		wp.Lun = 0
		wp.Ch++
		return ppa, false
	case int(wp.Pg)+1 < p.PagesPerBlock:
		wp.Ch = 0
		wp.Lun = 0
		wp.Pg++
		return ppa, false
	default:
		return ppa, true
	}
}
