// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Victim line priority queue, ordered by ascending valid-page count (greedy GC picks the
// cheapest line to reclaim first). Spec treats the queue as an abstract ordered collaborator;
// container/heap is the standard library's own priority queue and no example repo in the
// corpus pulls in a third-party one, so this is the one deliberate stdlib-only piece of the
// FTL (see DESIGN.md).

package ftl

import "container/heap"

type victimHeap []*Line

func (h victimHeap) Len() int { return len(h) }

func (h victimHeap) Less(i, j int) bool {
	if h[i].ValidCount != h[j].ValidCount {
		return h[i].ValidCount < h[j].ValidCount
	}
	return h[i].ID < h[j].ID
}

func (h victimHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pqIndex = i
	h[j].pqIndex = j
}

func (h *victimHeap) Push(x interface{}) {
	l := x.(*Line)
	l.pqIndex = len(*h)
	*h = append(*h, l)
}

func (h *victimHeap) Pop() interface{} {
	old := *h
	n := len(old)
	l := old[n-1]
	old[n-1] = nil
	l.pqIndex = -1
	*h = old[:n-1]
	return l
}

// VictimQueue is the GC's candidate pool: every FULL line carrying at least one invalid page,
// ordered so the line with the fewest valid pages (cheapest to copy-forward) pops first.
type VictimQueue struct {
	h *victimHeap
}

func newVictimQueue() *VictimQueue {
	h := &victimHeap{}
	heap.Init(h)
	return &VictimQueue{h: h}
}

// Push inserts l into the queue, marking it VICTIM.
func (q *VictimQueue) Push(l *Line) {
	l.State = LineVictim
	heap.Push(q.h, l)
}

// Pop removes and returns the line with the fewest valid pages, or nil if the queue is empty.
func (q *VictimQueue) Pop() *Line {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(q.h).(*Line)
}

// Fix re-establishes heap order for l after its ValidCount has changed in place.
func (q *VictimQueue) Fix(l *Line) {
	if l.pqIndex >= 0 {
		heap.Fix(q.h, l.pqIndex)
	}
}

// Len reports the number of lines currently queued.
func (q *VictimQueue) Len() int { return q.h.Len() }

// Peek returns the current minimum without removing it, or nil if the queue is empty.
func (q *VictimQueue) Peek() *Line {
	if q.h.Len() == 0 {
		return nil
	}
	return (*q.h)[0]
}
