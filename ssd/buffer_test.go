// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAllocateAndRelease(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	b := NewBuffer(4096)
	n, err := b.Allocate(4096)
	require.NoError(err)
	assert.EqualValues(4096, n)
	assert.EqualValues(0, b.Remaining())

	n, err = b.Allocate(1)
	require.NoError(err)
	assert.EqualValues(0, n) // full, caller should stall and retry

	b.Release(4096)
	assert.EqualValues(4096, b.Remaining())
}

func TestBufferAllocateRejectsRequestLargerThanCapacity(t *testing.T) {
	b := NewBuffer(4096)
	_, err := b.Allocate(8192)
	require.ErrorIs(t, err, ErrRequestExceedsBuffer)
}

func TestBufferRefillRestoresFullCapacity(t *testing.T) {
	assert := assert.New(t)

	b := NewBuffer(4096)
	b.Allocate(4096)
	b.Refill()
	assert.EqualValues(4096, b.Remaining())
}

func TestAdvanceWriteBufferAppliesFirmwareModelThenPCIe(t *testing.T) {
	assert := assert.New(t)

	p := &Params{}
	p.FWWriteBufferLatency0Ns = 100
	p.FWWriteBufferLatency1Ns = 10
	p.PCIeBandwidthMiBs = 1000

	d := &Device{Params: p}
	d.PCIe = NewChannelModel(p.PCIeBandwidthMiBs)

	completion := d.AdvanceWriteBuffer(0, 4096)
	assert.Greater(completion, uint64(100))
}
