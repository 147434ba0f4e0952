package bitutil

import "testing"

func TestLog2b(t *testing.T) {
	cases := map[uint]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 1023: 9, 1024: 10}
	for in, want := range cases {
		if got := Log2b(in); got != want {
			t.Errorf("Log2b(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFitsBits(t *testing.T) {
	if !FitsBits(0xffff, 16) {
		t.Error("0xffff should fit in 16 bits")
	}
	if FitsBits(0x10000, 16) {
		t.Error("0x10000 should not fit in 16 bits")
	}
	if !FitsBits(1<<40, 64) {
		t.Error("anything fits in 64 bits")
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(500); got != "500 B" {
		t.Errorf("FormatBytes(500) = %q", got)
	}
	if got := FormatBytes(1_500_000); got != "1.5 MB" {
		t.Errorf("FormatBytes(1500000) = %q", got)
	}
}
