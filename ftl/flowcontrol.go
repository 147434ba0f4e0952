// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Write flow control: a token-bucket pacing host writes against GC's ability to reclaim
// lines (write_flow_control in conv_ftl).

package ftl

// WriteFlowControl paces host writes so they never outrun GC's reclaim rate by more than a
// fixed margin. Credits are consumed one per host write; when they reach zero, the FTL must
// run a foreground (blocking) GC pass before accepting the next write. GC reclaim refills the
// bucket by one line's worth of pages.
type WriteFlowControl struct {
	Credits         uint32
	CreditsToRefill uint32
}

// NeedsForegroundGC reports whether the credit bucket is exhausted.
func (w *WriteFlowControl) NeedsForegroundGC() bool { return w.Credits == 0 }

// Consume spends one write credit. It saturates at zero rather than wrapping: a write that
// goes through while credits are already exhausted (because free lines were still above the
// high watermark, so the forced foreground GC pass ran no cycle) must leave the bucket empty,
// not wrap it around to full.
func (w *WriteFlowControl) Consume() {
	if w.Credits > 0 {
		w.Credits--
	}
}

// Refill adds back one reclaimed line's worth of credits.
func (w *WriteFlowControl) Refill() { w.Credits += w.CreditsToRefill }
