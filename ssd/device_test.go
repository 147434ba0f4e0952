// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDeviceAllocatesFullGeometry(t *testing.T) {
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, nil, nil)

	assert.Len(d.Channels, p.Channels)
	assert.Len(d.Channels[0].LUNs, p.LUNsPerChannel)
	assert.Len(d.Channels[0].LUNs[0].Planes, p.PlanesPerLUN)
	assert.Len(d.Channels[0].LUNs[0].Planes[0].Blocks, p.BlocksPerPlane)
	assert.Len(d.Channels[0].LUNs[0].Planes[0].Blocks[0].Pages, p.PagesPerBlock)
	assert.NotNil(d.Now)
	assert.NotNil(d.Logger)
}

func TestDevicePageAndBlockLookupAddressTheRightCoordinates(t *testing.T) {
	assert := assert.New(t)

	p := testDeviceParams(t)
	d := NewDevice(p, nil, nil)

	ppa := PackPPA(1, 1, 0, 1, 2)
	page := d.Page(ppa)
	blk := d.Block(ppa)

	assert.Same(page, &d.Channels[1].LUNs[1].Planes[0].Blocks[1].Pages[2])
	assert.Same(blk, &d.Channels[1].LUNs[1].Planes[0].Blocks[1])
}
