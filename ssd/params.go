// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// NAND geometry and timing parameters.

package ssd

import (
	"fmt"

	"github.com/nvmevsim/ssdsim/internal/bitutil"
)

// Cell type indices, derived from which bit-plane of a multi-level cell a logical page
// belongs to. LSB pages are fastest to read, CSB slowest.
const (
	CellTypeLSB = iota
	CellTypeMSB
	CellTypeCSB
	MaxCellTypes
)

// RawGeometry is the device shape as read from configuration: channels, LUNs, planes,
// block/page sizing, and cell mode. Mirrors the inputs ssd_init_params derives the rest
// of ssdparams from.
type RawGeometry struct {
	SectorSize      int `yaml:"sector_size"`       // bytes, e.g. 512
	FlashPageSize   int `yaml:"flash_page_size"`   // bytes, NAND sensing unit
	OneshotPageSize int `yaml:"oneshot_page_size"` // bytes, NAND program unit
	BlockSize       int `yaml:"block_size"`        // bytes; 0 means derive from BlocksPerPlane
	BlocksPerPlane  int `yaml:"blocks_per_plane"`  // 0 means derive from BlockSize
	PlanesPerLUN    int `yaml:"planes_per_lun"`    // spec assumes 1 (§9 open question)
	LUNsPerChannel  int `yaml:"luns_per_channel"`
	Channels        int `yaml:"channels"`
	CellMode        int `yaml:"cell_mode"` // 1=SLC, 2=MLC, 3=TLC: also the modulus for cell type
	WriteUnitSize   int `yaml:"write_unit_size"`
}

// TimingConfig holds every NAND/firmware/transport latency constant enumerated in spec §6.
type TimingConfig struct {
	Page4KiBReadLatencyNs [MaxCellTypes]int64 `yaml:"page_4kb_read_latency_ns"`
	PageReadLatencyNs     [MaxCellTypes]int64 `yaml:"page_read_latency_ns"`
	PageWriteLatencyNs    int64               `yaml:"page_write_latency_ns"`
	BlockEraseLatencyNs   int64               `yaml:"block_erase_latency_ns"`
	MaxChannelXferSize    int                 `yaml:"max_channel_xfer_size"`

	FW4KiBReadLatencyNs      int64 `yaml:"fw_4kb_read_latency_ns"`
	FWReadLatencyNs          int64 `yaml:"fw_read_latency_ns"`
	FWWriteBufferLatency0Ns  int64 `yaml:"fw_wbuf_latency0_ns"`
	FWWriteBufferLatency1Ns  int64 `yaml:"fw_wbuf_latency1_ns"`
	FWChannelXferLatencyNs   int64 `yaml:"fw_ch_xfer_latency_ns"`
	ChannelBandwidthMiBs     uint64 `yaml:"channel_bandwidth_mibs"`
	PCIeBandwidthMiBs        uint64 `yaml:"pcie_bandwidth_mibs"`
	WriteBufferSize          uint64 `yaml:"write_buffer_size"`
	WriteEarlyCompletion     bool   `yaml:"write_early_completion"`
}

// Params is the fully computed geometry + timing table for one partition's share of the
// device (ssdparams in the original). Immutable after NewParams, except for the latency
// fields AdjustLatency is allowed to rewrite (a supplemental feature, see SPEC_FULL.md §4).
type Params struct {
	RawGeometry
	TimingConfig

	PagesPerFlashPage    int
	FlashPagesPerBlock   int
	PagesPerOneshotPage  int
	OneshotPagesPerBlock int
	PagesPerBlock        int

	PageSize int

	SecsPerBlock uint64
	SecsPerPlane uint64
	SecsPerLUN   uint64
	SecsPerCh    uint64
	TotalSecs    uint64

	PagesPerPlane uint64
	PagesPerLUN   uint64
	PagesPerCh    uint64
	TotalPages    uint64

	BlocksPerLUN uint64
	BlocksPerCh  uint64
	TotalBlocks  uint64

	SecsPerLine   uint64
	PagesPerLine  uint64
	BlocksPerLine uint64
	TotalLines    uint64

	PlanesPerCh uint64
	TotalPlanes uint64
	TotalLUNs   uint64
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// fieldBitsErr reports a geometry dimension that overflows its reserved field in the packed
// PPA layout, naming the bit width it would actually need (via bitutil.Log2b) alongside the
// width it was given.
func fieldBitsErr(name string, value, fieldBits int) error {
	return fmt.Errorf("ssd: %s (%d) needs %d bits, exceeds %d-bit PPA field",
		name, value, bitutil.Log2b(uint(value))+1, fieldBits)
}

// NewParams computes a full Params from a raw geometry + timing config, a total device
// capacity in bytes, and the number of partitions the device is split across. Partitioning
// divides channels (and capacity) evenly, exactly as ssd_init_params does.
func NewParams(capacity uint64, nparts uint32, raw RawGeometry, timing TimingConfig) (*Params, error) {
	if nparts == 0 {
		return nil, fmt.Errorf("ssd: nparts must be > 0")
	}
	if raw.Channels%int(nparts) != 0 {
		return nil, fmt.Errorf("ssd: channels (%d) not evenly divisible by nparts (%d)", raw.Channels, nparts)
	}

	p := &Params{RawGeometry: raw, TimingConfig: timing}
	p.Channels = raw.Channels / int(nparts)
	capacity /= uint64(nparts)

	p.PageSize = p.SectorSize * (4096 / p.SectorSize)
	secsPerPg := p.PageSize / p.SectorSize

	var blockSize uint64
	if p.BlocksPerPlane > 0 {
		blockSize = ceilDiv(capacity, uint64(p.BlocksPerPlane*p.PlanesPerLUN*p.LUNsPerChannel*p.Channels))
	} else {
		if p.BlockSize <= 0 {
			return nil, fmt.Errorf("ssd: either blocks_per_plane or block_size must be set")
		}
		blockSize = uint64(p.BlockSize)
		p.BlocksPerPlane = int(ceilDiv(capacity, blockSize*uint64(p.PlanesPerLUN*p.LUNsPerChannel*p.Channels)))
	}

	if p.OneshotPageSize%p.PageSize != 0 || p.FlashPageSize%p.PageSize != 0 {
		return nil, fmt.Errorf("ssd: oneshot/flash page size must be a multiple of page size")
	}
	if p.OneshotPageSize%p.FlashPageSize != 0 {
		return nil, fmt.Errorf("ssd: oneshot page size must be a multiple of flash page size")
	}

	p.PagesPerOneshotPage = p.OneshotPageSize / p.PageSize
	p.OneshotPagesPerBlock = int(ceilDiv(blockSize, uint64(p.OneshotPageSize)))
	p.PagesPerFlashPage = p.FlashPageSize / p.PageSize
	p.FlashPagesPerBlock = (p.OneshotPageSize / p.FlashPageSize) * p.OneshotPagesPerBlock
	p.PagesPerBlock = p.PagesPerOneshotPage * p.OneshotPagesPerBlock

	if !bitutil.FitsBits(uint64(p.PagesPerBlock), pageBits) {
		return nil, fieldBitsErr("pages per block", p.PagesPerBlock, pageBits)
	}
	if !bitutil.FitsBits(uint64(p.BlocksPerPlane), blkBits) {
		return nil, fieldBitsErr("blocks per plane", p.BlocksPerPlane, blkBits)
	}
	if !bitutil.FitsBits(uint64(p.PlanesPerLUN), plBits) {
		return nil, fieldBitsErr("planes per lun", p.PlanesPerLUN, plBits)
	}
	if !bitutil.FitsBits(uint64(p.LUNsPerChannel), lunBits) {
		return nil, fieldBitsErr("luns per channel", p.LUNsPerChannel, lunBits)
	}
	if !bitutil.FitsBits(uint64(p.Channels), chBits) {
		return nil, fieldBitsErr("channels", p.Channels, chBits)
	}

	p.SecsPerBlock = uint64(secsPerPg * p.PagesPerBlock)
	p.SecsPerPlane = p.SecsPerBlock * uint64(p.BlocksPerPlane)
	p.SecsPerLUN = p.SecsPerPlane * uint64(p.PlanesPerLUN)
	p.SecsPerCh = p.SecsPerLUN * uint64(p.LUNsPerChannel)
	p.TotalSecs = p.SecsPerCh * uint64(p.Channels)

	p.PagesPerPlane = uint64(p.PagesPerBlock) * uint64(p.BlocksPerPlane)
	p.PagesPerLUN = p.PagesPerPlane * uint64(p.PlanesPerLUN)
	p.PagesPerCh = p.PagesPerLUN * uint64(p.LUNsPerChannel)
	p.TotalPages = p.PagesPerCh * uint64(p.Channels)

	p.BlocksPerLUN = uint64(p.BlocksPerPlane) * uint64(p.PlanesPerLUN)
	p.BlocksPerCh = p.BlocksPerLUN * uint64(p.LUNsPerChannel)
	p.TotalBlocks = p.BlocksPerCh * uint64(p.Channels)

	p.PlanesPerCh = uint64(p.PlanesPerLUN) * uint64(p.LUNsPerChannel)
	p.TotalPlanes = p.PlanesPerCh * uint64(p.Channels)

	p.TotalLUNs = uint64(p.LUNsPerChannel) * uint64(p.Channels)

	// Line is special: one block per LUN, put it at the end. Assumes one plane per LUN for
	// line sizing.
	p.BlocksPerLine = p.TotalLUNs
	p.PagesPerLine = p.BlocksPerLine * uint64(p.PagesPerBlock)
	p.SecsPerLine = p.PagesPerLine * uint64(secsPerPg)
	p.TotalLines = p.BlocksPerLUN

	return p, nil
}

// AdjustLatency rewrites one of the NAND timing constants at runtime (supplemental feature
// recovered from the original's stubbed adjust_ftl_latency; see SPEC_FULL.md §4). Intended
// for fault-injection tests simulating a degraded/aging device.
func (p *Params) AdjustLatency(op int, latencyNs int64) error {
	switch op {
	case NandRead:
		for i := range p.PageReadLatencyNs {
			p.PageReadLatencyNs[i] = latencyNs
		}
	case NandWrite:
		p.PageWriteLatencyNs = latencyNs
	case NandErase:
		p.BlockEraseLatencyNs = latencyNs
	default:
		return fmt.Errorf("ssd: unsupported NAND command for latency adjustment: %d", op)
	}
	return nil
}

// CellType returns which bit-plane (LSB/MSB/CSB) the page at the given in-block page index
// resides on, i.e. get_cell() in the original.
func (p *Params) CellType(pg uint32) int {
	return int(uint64(pg) / uint64(p.PagesPerFlashPage) % uint64(p.CellMode))
}

// FirmwareReadLatencyNs is the fixed dispatch overhead a READ command pays before any NAND
// or transfer timing begins, mirroring the nand/channel split between fw_4kb_read_latency_ns
// and fw_read_latency_ns: a 4KiB read uses the former, anything else the latter. Charged on
// an unmapped read too (spec §8 boundary scenario 6: completion = arrival + fw_rd_lat), since
// the firmware still has to dispatch the command before discovering the L2P miss.
func (p *Params) FirmwareReadLatencyNs() int64 {
	if p.PageSize == 4096 {
		return p.FW4KiBReadLatencyNs
	}
	return p.FWReadLatencyNs
}

// PPAOrdinal flattens a PPA to a dense index into a device-wide array sized TotalPages,
// for the reverse mapping table (rmap in the original, "assume it's stored in OOB").
func (p *Params) PPAOrdinal(ppa PPA) uint64 {
	return uint64(ppa.Page()) +
		uint64(p.PagesPerBlock)*(uint64(ppa.Block())+
			uint64(p.BlocksPerPlane)*(uint64(ppa.Plane())+
				uint64(p.PlanesPerLUN)*(uint64(ppa.LUN())+
					uint64(p.LUNsPerChannel)*uint64(ppa.Channel()))))
}
