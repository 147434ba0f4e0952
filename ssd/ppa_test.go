// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ssd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackPPARoundTrips(t *testing.T) {
	assert := assert.New(t)

	ppa := PackPPA(3, 5, 1, 1234, 42)
	assert.EqualValues(3, ppa.Channel())
	assert.EqualValues(5, ppa.LUN())
	assert.EqualValues(1, ppa.Plane())
	assert.EqualValues(1234, ppa.Block())
	assert.EqualValues(42, ppa.Page())
}

func TestPackPPAZeroFieldsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	ppa := PackPPA(0, 0, 0, 0, 0)
	assert.EqualValues(0, ppa.Channel())
	assert.EqualValues(0, ppa.LUN())
	assert.EqualValues(0, ppa.Plane())
	assert.EqualValues(0, ppa.Block())
	assert.EqualValues(0, ppa.Page())
	assert.False(ppa.Unmapped())
}

func TestUnmappedSentinels(t *testing.T) {
	assert := assert.New(t)

	assert.True(UnmappedPPA.Unmapped())
	assert.True(UnmappedLPN.Unmapped())
	assert.False(PackPPA(0, 0, 0, 0, 0).Unmapped())
	assert.False(LPN(0).Unmapped())
}
