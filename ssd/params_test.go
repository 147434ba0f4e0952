// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallGeometry() (RawGeometry, TimingConfig) {
	raw := RawGeometry{
		SectorSize:      512,
		FlashPageSize:   4096,
		OneshotPageSize: 4096,
		BlocksPerPlane:  2,
		PlanesPerLUN:    1,
		LUNsPerChannel:  2,
		Channels:        2,
		CellMode:        2,
	}
	timing := TimingConfig{
		Page4KiBReadLatencyNs: [MaxCellTypes]int64{40, 80, 0},
		PageReadLatencyNs:     [MaxCellTypes]int64{50, 100, 0},
		PageWriteLatencyNs:    500,
		BlockEraseLatencyNs:   2000,
		MaxChannelXferSize:    4096,
	}
	return raw, timing
}

func TestNewParamsComputesDerivedGeometry(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw, timing := smallGeometry()
	p, err := NewParams(131072, 1, raw, timing)
	require.NoError(err)

	assert.Equal(4096, p.PageSize)
	assert.EqualValues(4, p.PagesPerBlock)
	assert.EqualValues(2, p.TotalLines)
	assert.EqualValues(16, p.PagesPerLine)
	assert.EqualValues(32, p.TotalPages)
}

func TestNewParamsDividesCapacityAndChannelsAcrossPartitions(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw, timing := smallGeometry()
	raw.Channels = 4

	whole, err := NewParams(262144, 1, raw, timing)
	require.NoError(err)

	half, err := NewParams(262144, 2, raw, timing)
	require.NoError(err)

	assert.Equal(whole.Channels/2, half.Channels)
	assert.Equal(whole.TotalSecs/2, half.TotalSecs)
}

func TestNewParamsRejectsUnevenChannelSplit(t *testing.T) {
	require := require.New(t)

	raw, timing := smallGeometry()
	raw.Channels = 3
	_, err := NewParams(131072, 2, raw, timing)
	require.Error(err)
}

func TestNewParamsRejectsZeroParts(t *testing.T) {
	require := require.New(t)

	raw, timing := smallGeometry()
	_, err := NewParams(131072, 0, raw, timing)
	require.Error(err)
}

func TestNewParamsRejectsFieldsThatOverflowThePackedPPA(t *testing.T) {
	require := require.New(t)

	raw, timing := smallGeometry()
	raw.Channels = 1
	raw.LUNsPerChannel = 2
	raw.PlanesPerLUN = 1
	raw.BlocksPerPlane = 1 << 17 // exceeds the 16-bit block field

	_, err := NewParams(uint64(raw.BlocksPerPlane)*16384, 1, raw, timing)
	require.Error(err)
}

func TestCellTypeCyclesThroughCellMode(t *testing.T) {
	assert := assert.New(t)

	raw, timing := smallGeometry()
	p, err := NewParams(131072, 1, raw, timing)
	require.New(t).NoError(err)

	// cell_mode=2 (MLC): pages alternate LSB, MSB as page index increases, since
	// PagesPerFlashPage here is 1.
	assert.Equal(CellTypeLSB, p.CellType(0))
	assert.Equal(CellTypeMSB, p.CellType(1))
	assert.Equal(CellTypeLSB, p.CellType(2))
}

func TestAdjustLatencyRewritesTheTargetedOp(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw, timing := smallGeometry()
	p, err := NewParams(131072, 1, raw, timing)
	require.NoError(err)

	require.NoError(p.AdjustLatency(NandWrite, 12345))
	assert.EqualValues(12345, p.PageWriteLatencyNs)

	require.NoError(p.AdjustLatency(NandErase, 99999))
	assert.EqualValues(99999, p.BlockEraseLatencyNs)

	err = p.AdjustLatency(NandNop, 1)
	assert.Error(err)
}

func TestPPAOrdinalIsDenseAndUnique(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	raw, timing := smallGeometry()
	p, err := NewParams(131072, 1, raw, timing)
	require.NoError(err)

	seen := make(map[uint64]PPA)
	for ch := uint32(0); ch < uint32(p.Channels); ch++ {
		for lun := uint32(0); lun < uint32(p.LUNsPerChannel); lun++ {
			for blk := uint32(0); blk < uint32(p.BlocksPerPlane); blk++ {
				for pg := uint32(0); pg < uint32(p.PagesPerBlock); pg++ {
					ppa := PackPPA(ch, lun, 0, blk, pg)
					ord := p.PPAOrdinal(ppa)
					assert.Less(ord, p.TotalPages)
					if other, ok := seen[ord]; ok {
						t.Fatalf("ordinal %d reused by %#x and %#x", ord, uint64(other), uint64(ppa))
					}
					seen[ord] = ppa
				}
			}
		}
	}
	assert.Len(seen, int(p.TotalPages))
}
