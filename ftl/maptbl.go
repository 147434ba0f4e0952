// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Page-level logical-to-physical mapping table and its reverse (maptbl/rmap in conv_ftl).

package ftl

import "github.com/nvmevsim/ssdsim/ssd"

// MapTable is the page-mapped FTL's forward (L2P) and reverse (P2L) tables. The reverse
// table is sized to the device's total physical page count and indexed by a flattened PPA
// ordinal (ssd.Params.PPAOrdinal), standing in for the original's per-page OOB metadata.
type MapTable struct {
	l2p    []ssd.PPA
	rmap   []ssd.LPN
	params *ssd.Params
}

// NewMapTable allocates a MapTable for totalLPNs logical pages against the given device
// geometry, with every entry set to its unmapped sentinel.
func NewMapTable(totalLPNs uint64, p *ssd.Params) *MapTable {
	mt := &MapTable{
		params: p,
		l2p:    make([]ssd.PPA, totalLPNs),
		rmap:   make([]ssd.LPN, p.TotalPages),
	}
	for i := range mt.l2p {
		mt.l2p[i] = ssd.UnmappedPPA
	}
	for i := range mt.rmap {
		mt.rmap[i] = ssd.UnmappedLPN
	}
	return mt
}

// Translate returns the physical page currently mapped for lpn, or ssd.UnmappedPPA if lpn
// has never been written.
func (mt *MapTable) Translate(lpn ssd.LPN) ssd.PPA {
	return mt.l2p[lpn]
}

// Assign records that lpn now lives at ppa, updating both the forward and reverse tables.
// The caller is responsible for having already invalidated whatever page lpn previously
// mapped to; Assign itself performs no validity bookkeeping.
func (mt *MapTable) Assign(lpn ssd.LPN, ppa ssd.PPA) {
	mt.l2p[lpn] = ppa
	mt.rmap[mt.params.PPAOrdinal(ppa)] = lpn
}

// Reverse returns the logical page number last assigned to ppa. Stale (not yet overwritten
// by Assign) entries for pages the owning line has since invalidated are expected; callers
// must cross-check against the page's physical status before trusting the result.
func (mt *MapTable) Reverse(ppa ssd.PPA) ssd.LPN {
	return mt.rmap[mt.params.PPAOrdinal(ppa)]
}
