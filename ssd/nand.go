// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// NAND timing engine: per-LUN availability arithmetic for READ/WRITE/ERASE/NOP (ssd_advance_nand
// in the original).

package ssd

import "fmt"

// NAND command opcodes.
const (
	NandRead = iota
	NandWrite
	NandErase
	NandNop
)

// I/O kind, carried through for future GC-aware scheduling (spec §9 open question); unused by
// the timing engine itself.
const (
	UserIO = iota
	GCIO
)

// Page status.
const (
	PageFree = iota
	PageValid
	PageInvalid
)

// SectorStatus mirrors page status at sector granularity.
type SectorStatus int

const (
	SectorFree SectorStatus = iota
	SectorValid
	SectorInvalid
)

// NandPage is the finest-grained simulated storage unit.
type NandPage struct {
	Sectors []SectorStatus
	Status  int
}

// NandBlock tracks per-block counters: valid and invalid page counts, erase count, and a
// write-pointer field. The ftl write paths do not advance WritePointer; it is only reset to 0
// on erase, so it does not track the block's next free page.
type NandBlock struct {
	Pages          []NandPage
	ValidCount     int
	InvalidCount   int
	EraseCount     int
	WritePointer   int // reset to 0 on erase; not advanced by writes
}

// NandPlane groups blocks. Multi-plane parallel programming is a non-goal (spec §1); planes
// are modeled for addressing completeness only.
type NandPlane struct {
	Blocks []NandBlock
}

// NandLUN is the NAND operation unit (a die). NextAvailTime is the single clock the timing
// engine serializes all commands against.
type NandLUN struct {
	Planes        []NandPlane
	NextAvailTime uint64
}

// Channel is the NAND<->controller data transfer unit: a set of LUNs sharing one bandwidth
// queue (its Model).
type Channel struct {
	LUNs  []NandLUN
	Model *ChannelModel
}

// NandCmd is a single command submitted to the timing engine.
type NandCmd struct {
	Op                int
	Kind              int // UserIO or GCIO; unused by AdvanceNAND, kept for callers/telemetry
	TargetPPA         PPA
	XferBytes         uint64
	SubmitTime        uint64
	InterleavePCIeDMA bool
}

func newNandPage(secsPerPg int) NandPage {
	pg := NandPage{Sectors: make([]SectorStatus, secsPerPg), Status: PageFree}
	return pg
}

func newNandBlock(p *Params) NandBlock {
	blk := NandBlock{Pages: make([]NandPage, p.PagesPerBlock)}
	secsPerPg := p.PageSize / p.SectorSize
	for i := range blk.Pages {
		blk.Pages[i] = newNandPage(secsPerPg)
	}
	return blk
}

func newNandPlane(p *Params) NandPlane {
	pl := NandPlane{Blocks: make([]NandBlock, p.BlocksPerPlane)}
	for i := range pl.Blocks {
		pl.Blocks[i] = newNandBlock(p)
	}
	return pl
}

func newNandLUN(p *Params) NandLUN {
	lun := NandLUN{Planes: make([]NandPlane, p.PlanesPerLUN)}
	for i := range lun.Planes {
		lun.Planes[i] = newNandPlane(p)
	}
	return lun
}

func newChannel(p *Params, bandwidthMiBs uint64, fwChXferLatencyNs int64) *Channel {
	ch := &Channel{LUNs: make([]NandLUN, p.LUNsPerChannel)}
	for i := range ch.LUNs {
		ch.LUNs[i] = newNandLUN(p)
	}
	ch.Model = NewChannelModel(bandwidthMiBs)
	// Firmware overhead of a channel transfer, folded into the per-transfer latency the same
	// way ssd_init_ch adds fw_ch_xfer_lat to the channel model's per-request cost.
	ch.Model.fwOverheadNs = fwChXferLatencyNs
	return ch
}

func (d *Device) lun(ppa PPA) (*NandLUN, *Channel, error) {
	ch := int(ppa.Channel())
	lun := int(ppa.LUN())
	if ch < 0 || ch >= len(d.Channels) || lun < 0 || lun >= len(d.Channels[ch].LUNs) {
		return nil, nil, fmt.Errorf("ssd: ppa %#x addresses out-of-range ch/lun", uint64(ppa))
	}
	return &d.Channels[ch].LUNs[lun], d.Channels[ch], nil
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// AdvanceNAND is the NAND timing engine's sole entry point. It returns the command's
// completion time and has no effect on logical (mapping/line) state — see ftl.FTL for that.
func (d *Device) AdvanceNAND(cmd NandCmd) uint64 {
	if cmd.TargetPPA.Unmapped() {
		d.logf("AdvanceNAND: invalid ppa %#x", uint64(cmd.TargetPPA))
		return cmd.SubmitTime
	}

	lun, ch, err := d.lun(cmd.TargetPPA)
	if err != nil {
		d.logf("AdvanceNAND: %v", err)
		return cmd.SubmitTime
	}

	cell := d.Params.CellType(cmd.TargetPPA.Page())

	switch cmd.Op {
	case NandRead:
		nandStime := max64(lun.NextAvailTime, cmd.SubmitTime)
		var nandEtime uint64
		if cmd.XferBytes == 4096 {
			nandEtime = nandStime + uint64(d.Params.Page4KiBReadLatencyNs[cell])
		} else {
			nandEtime = nandStime + uint64(d.Params.PageReadLatencyNs[cell])
		}

		chnlStime := nandEtime
		remaining := cmd.XferBytes
		var chnlEtime, completed uint64
		for remaining > 0 {
			xfer := remaining
			if max := uint64(d.Params.MaxChannelXferSize); xfer > max {
				xfer = max
			}
			chnlEtime = ch.Model.Request(chnlStime, xfer)
			if cmd.InterleavePCIeDMA {
				completed = d.AdvancePCIe(chnlEtime, xfer)
			} else {
				completed = chnlEtime
			}
			remaining -= xfer
			chnlStime = chnlEtime
		}
		lun.NextAvailTime = chnlEtime
		return completed

	case NandWrite:
		chnlStime := max64(lun.NextAvailTime, cmd.SubmitTime)
		chnlEtime := ch.Model.Request(chnlStime, cmd.XferBytes)
		nandEtime := chnlEtime + uint64(d.Params.PageWriteLatencyNs)
		lun.NextAvailTime = nandEtime
		return nandEtime

	case NandErase:
		nandStime := max64(lun.NextAvailTime, cmd.SubmitTime)
		nandEtime := nandStime + uint64(d.Params.BlockEraseLatencyNs)
		lun.NextAvailTime = nandEtime
		return nandEtime

	case NandNop:
		nandStime := max64(lun.NextAvailTime, cmd.SubmitTime)
		lun.NextAvailTime = nandStime
		return nandStime

	default:
		d.logf("AdvanceNAND: unsupported NAND command %d", cmd.Op)
		return 0
	}
}

// NextIdleTime returns the latest next-available time across every LUN of the device, or the
// current clock reading (d.Now) if that is later —
// ssd_next_idle_time in the original (supplemental feature, see SPEC_FULL.md §4).
func (d *Device) NextIdleTime() uint64 {
	latest := d.Now()
	for i := range d.Channels {
		for j := range d.Channels[i].LUNs {
			latest = max64(latest, d.Channels[i].LUNs[j].NextAvailTime)
		}
	}
	return latest
}
