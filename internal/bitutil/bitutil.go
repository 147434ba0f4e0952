// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Miscellaneous bit and byte-quantity helpers, shared by the ssd and cmd packages.

package bitutil

import (
	"fmt"
	"math/bits"
)

// Log2b finds the most significant bit set in x (floor log2; 0 for x == 0). Used to report
// how many bits a geometry dimension (pages per block, LUNs per channel, ...) needs when it
// overflows the bit width reserved for it in the packed PPA layout.
func Log2b(x uint) int {
	if x == 0 {
		return 0
	}
	return bits.Len(x) - 1
}

// FitsBits reports whether x can be represented in the given number of bits.
func FitsBits(x uint64, nbits uint) bool {
	if nbits >= 64 {
		return true
	}
	return x < (uint64(1) << nbits)
}

// FormatBytes formats a byte quantity using human-readable units (KB, MB, ...), matching the
// teacher's formatBytes/FormatBytes helpers.
func FormatBytes(v uint64) string {
	var i int

	suffixes := [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	d := uint64(1)

	for i = 0; i < len(suffixes)-1; i++ {
		if v >= d*1000 {
			d *= 1000
		} else {
			break
		}
	}

	if i == 0 {
		return fmt.Sprintf("%d %s", v, suffixes[i])
	}
	return fmt.Sprintf("%.3g %s", float64(v)/float64(d), suffixes[i])
}
