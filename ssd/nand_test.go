// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeviceParams(t *testing.T) *Params {
	t.Helper()
	raw := RawGeometry{
		SectorSize:      512,
		FlashPageSize:   4096,
		OneshotPageSize: 4096,
		BlocksPerPlane:  2,
		PlanesPerLUN:    1,
		LUNsPerChannel:  2,
		Channels:        2,
		CellMode:        1,
	}
	timing := TimingConfig{
		Page4KiBReadLatencyNs: [MaxCellTypes]int64{50, 50, 50},
		PageReadLatencyNs:     [MaxCellTypes]int64{60, 60, 60},
		PageWriteLatencyNs:    100,
		BlockEraseLatencyNs:   1000,
		MaxChannelXferSize:    4096,
		ChannelBandwidthMiBs:  1000,
		PCIeBandwidthMiBs:     4000,
		WriteBufferSize:       1 << 20,
	}
	p, err := NewParams(131072, 1, raw, timing)
	require.NoError(t, err)
	return p
}

func TestAdvanceNANDWriteThenReadIsMonotonic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, func() uint64 { return 0 }, nil)

	ppa := PackPPA(0, 0, 0, 0, 0)
	writeDone := d.AdvanceNAND(NandCmd{Op: NandWrite, TargetPPA: ppa, XferBytes: 4096, SubmitTime: 0})
	require.Greater(writeDone, uint64(0))

	readDone := d.AdvanceNAND(NandCmd{Op: NandRead, TargetPPA: ppa, XferBytes: 4096, SubmitTime: writeDone})
	assert.GreaterOrEqual(readDone, writeDone)
}

func TestAdvanceNANDSerializesCommandsOnTheSameLUN(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, func() uint64 { return 0 }, nil)

	ppaA := PackPPA(0, 0, 0, 0, 0)
	ppaB := PackPPA(0, 0, 0, 0, 1) // same channel/lun, different page

	firstDone := d.AdvanceNAND(NandCmd{Op: NandWrite, TargetPPA: ppaA, XferBytes: 4096, SubmitTime: 0})
	secondDone := d.AdvanceNAND(NandCmd{Op: NandWrite, TargetPPA: ppaB, XferBytes: 4096, SubmitTime: 0})

	require.Greater(secondDone, firstDone)
	assert.Equal(secondDone, d.Channels[0].LUNs[0].NextAvailTime)
}

func TestAdvanceNANDEraseAddsBlockEraseLatency(t *testing.T) {
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, func() uint64 { return 0 }, nil)

	ppa := PackPPA(0, 0, 0, 0, 0)
	done := d.AdvanceNAND(NandCmd{Op: NandErase, TargetPPA: ppa, SubmitTime: 1000})
	assert.EqualValues(1000+p.BlockEraseLatencyNs, done)
}

func TestAdvanceNANDOnUnmappedPPAIsANoOp(t *testing.T) {
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, func() uint64 { return 0 }, nil)

	done := d.AdvanceNAND(NandCmd{Op: NandRead, TargetPPA: UnmappedPPA, SubmitTime: 42})
	assert.EqualValues(42, done)
}

func TestNextIdleTimeReflectsTheBusiestLUN(t *testing.T) {
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, func() uint64 { return 0 }, nil)

	ppa := PackPPA(1, 1, 0, 0, 0)
	done := d.AdvanceNAND(NandCmd{Op: NandWrite, TargetPPA: ppa, XferBytes: 4096, SubmitTime: 0})

	assert.Equal(done, d.NextIdleTime())
}
