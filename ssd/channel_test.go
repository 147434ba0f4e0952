// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelModelRequestComputesCeilDivLatency(t *testing.T) {
	assert := assert.New(t)

	// 1 MiB/s => 1 byte takes ceil(1e9/1048576) ns.
	c := NewChannelModel(1)
	completion := c.Request(0, 1)
	assert.EqualValues(ceilDiv(1_000_000_000, 1024*1024), completion)
	assert.Equal(completion, c.NextFree())
}

func TestChannelModelSerializesBackToBackRequests(t *testing.T) {
	assert := assert.New(t)

	c := NewChannelModel(1000)
	first := c.Request(0, 4096)
	second := c.Request(0, 4096) // submitted at 0 again, but queue is busy until `first`
	assert.GreaterOrEqual(second, first)
}

func TestChannelModelHonorsFirmwareOverhead(t *testing.T) {
	assert := assert.New(t)

	plain := NewChannelModel(1000)
	withOverhead := NewChannelModel(1000)
	withOverhead.fwOverheadNs = 500

	a := plain.Request(0, 4096)
	b := withOverhead.Request(0, 4096)
	assert.Equal(a+500, b)
}
