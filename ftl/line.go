// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Line (superblock) lifecycle and the free/full/victim line lists (line struct and
// line_mgmt in conv_ftl).

package ftl

import "fmt"

// LineState is a line's position in its FREE -> OPEN -> FULL -> VICTIM -> (erase) -> FREE
// lifecycle.
type LineState int

const (
	LineFree LineState = iota
	LineOpen
	LineFull
	LineVictim
)

// Line is one superblock: the set of same-numbered blocks across every LUN, sharing a single
// erase unit. ValidCount and InvalidCount are the sums of their member blocks' counters.
type Line struct {
	ID           int
	ValidCount   int
	InvalidCount int
	State        LineState

	pqIndex int // position in the victim heap; -1 when not queued
}

// ErrNoFreeLine is returned by LineManager.PopFreeLine when the free list is exhausted.
var ErrNoFreeLine = fmt.Errorf("ftl: no free line available")

// LineManager owns every line's lifecycle state: the free list, the set of FULL-but-clean
// lines not yet eligible for GC, and the victim priority queue.
type LineManager struct {
	lines    []*Line
	freeList []*Line
	fullList []*Line
	Victims  *VictimQueue

	pagesPerLine int
}

// NewLineManager builds a LineManager for totalLines lines, all initially FREE.
func NewLineManager(totalLines, pagesPerLine int) *LineManager {
	lm := &LineManager{
		lines:        make([]*Line, totalLines),
		freeList:     make([]*Line, 0, totalLines),
		Victims:      newVictimQueue(),
		pagesPerLine: pagesPerLine,
	}
	for i := range lm.lines {
		l := &Line{ID: i, State: LineFree, pqIndex: -1}
		lm.lines[i] = l
		lm.freeList = append(lm.freeList, l)
	}
	return lm
}

// Line returns the line with the given ID (block index within a LUN; line ID == block ID).
func (lm *LineManager) Line(id int) *Line { return lm.lines[id] }

// PopFreeLine removes and returns the line at the head of the free list, marking it OPEN.
func (lm *LineManager) PopFreeLine() (*Line, error) {
	if len(lm.freeList) == 0 {
		return nil, ErrNoFreeLine
	}
	l := lm.freeList[0]
	lm.freeList = lm.freeList[1:]
	l.State = LineOpen
	return l, nil
}

// FreeCount, VictimCount and FullCount report the size of each list, for the GC trigger
// (conv_ftl's free_line_cnt checked against gc_thres_lines / gc_thres_lines_high).
func (lm *LineManager) FreeCount() int   { return len(lm.freeList) }
func (lm *LineManager) VictimCount() int { return lm.Victims.Len() }
func (lm *LineManager) FullCount() int   { return len(lm.fullList) }

// OnLineFull transitions a line that has just finished being written (its write pointer has
// reached the end of the line) from OPEN. A line with no invalid pages goes onto the full
// list, inert until something invalidates one of its pages; a line already carrying invalid
// pages (overwritten while still open) is immediately GC-eligible.
func (lm *LineManager) OnLineFull(l *Line) {
	if l.InvalidCount > 0 {
		l.State = LineVictim
		lm.Victims.Push(l)
		return
	}
	l.State = LineFull
	lm.fullList = append(lm.fullList, l)
}

// OnInvalidate notifies the manager that one of l's pages was just invalidated. A FULL line
// is promoted into the victim queue; a line already in the victim queue has its key fixed up
// (its valid-page count just dropped). OPEN lines need no action here.
func (lm *LineManager) OnInvalidate(l *Line) {
	switch l.State {
	case LineFull:
		lm.removeFromFullList(l)
		l.State = LineVictim
		lm.Victims.Push(l)
	case LineVictim:
		lm.Victims.Fix(l)
	}
}

func (lm *LineManager) removeFromFullList(l *Line) {
	for i, c := range lm.fullList {
		if c == l {
			lm.fullList = append(lm.fullList[:i], lm.fullList[i+1:]...)
			return
		}
	}
}

// Reclaim resets a fully-erased victim line back to FREE and returns it to the free list.
func (lm *LineManager) Reclaim(l *Line) {
	l.ValidCount = 0
	l.InvalidCount = 0
	l.State = LineFree
	lm.freeList = append(lm.freeList, l)
}
