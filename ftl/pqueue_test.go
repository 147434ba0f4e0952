// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ftl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVictimQueueOrdersByAscendingValidCount(t *testing.T) {
	assert := assert.New(t)

	q := newVictimQueue()
	a := &Line{ID: 2, ValidCount: 5, pqIndex: -1}
	b := &Line{ID: 0, ValidCount: 1, pqIndex: -1}
	c := &Line{ID: 1, ValidCount: 3, pqIndex: -1}

	q.Push(a)
	q.Push(b)
	q.Push(c)

	assert.Equal(b, q.Pop())
	assert.Equal(c, q.Pop())
	assert.Equal(a, q.Pop())
	assert.Nil(q.Pop())
}

func TestVictimQueueTiebreaksOnLineID(t *testing.T) {
	assert := assert.New(t)

	q := newVictimQueue()
	a := &Line{ID: 3, ValidCount: 2, pqIndex: -1}
	b := &Line{ID: 1, ValidCount: 2, pqIndex: -1}

	q.Push(a)
	q.Push(b)

	assert.Equal(b, q.Pop())
	assert.Equal(a, q.Pop())
}

func TestVictimQueueFixReordersAfterValidCountChanges(t *testing.T) {
	assert := assert.New(t)

	q := newVictimQueue()
	a := &Line{ID: 0, ValidCount: 5, pqIndex: -1}
	b := &Line{ID: 1, ValidCount: 1, pqIndex: -1}
	q.Push(a)
	q.Push(b)

	assert.Equal(b, q.Peek())

	b.ValidCount = 10
	q.Fix(b)

	assert.Equal(a, q.Peek())
}
