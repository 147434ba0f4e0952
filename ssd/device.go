// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Device ties geometry, per-channel NAND state, the PCIe model, and the write buffer into
// one partition's worth of simulated hardware (struct ssd in the original).

package ssd

import "log"

// Device is one partition's simulated NAND hardware: channels of LUNs, a shared PCIe model,
// and a shared write buffer. Spec §5: a Device is owned by exactly one dispatcher goroutine;
// only the write buffer and PCIe model (each under their own SpinLock) may be touched by
// other partitions' goroutines.
type Device struct {
	Params   *Params
	Channels []*Channel
	PCIe     *ChannelModel
	pcieLock SpinLock
	WriteBuf *Buffer

	Now    Clock
	Logger *log.Logger
}

// NewDevice allocates and zero-initializes a Device for the given params. now defaults to
// MonotonicNow if nil; logger defaults to log.Default() if nil.
func NewDevice(p *Params, now Clock, logger *log.Logger) *Device {
	if now == nil {
		now = MonotonicNow
	}
	if logger == nil {
		logger = log.Default()
	}

	d := &Device{
		Params: p,
		Now:    now,
		Logger: logger,
	}

	d.Channels = make([]*Channel, p.Channels)
	for i := range d.Channels {
		d.Channels[i] = newChannel(p, p.ChannelBandwidthMiBs, p.FWChannelXferLatencyNs)
	}

	d.PCIe = NewChannelModel(p.PCIeBandwidthMiBs)
	d.WriteBuf = NewBuffer(p.WriteBufferSize)

	return d
}

func (d *Device) logf(format string, args ...interface{}) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Page looks up the NandPage addressed by ppa.
func (d *Device) Page(ppa PPA) *NandPage {
	ch := d.Channels[ppa.Channel()]
	lun := &ch.LUNs[ppa.LUN()]
	pl := &lun.Planes[ppa.Plane()]
	blk := &pl.Blocks[ppa.Block()]
	return &blk.Pages[ppa.Page()]
}

// Block looks up the NandBlock addressed by ppa.
func (d *Device) Block(ppa PPA) *NandBlock {
	ch := d.Channels[ppa.Channel()]
	lun := &ch.LUNs[ppa.LUN()]
	pl := &lun.Planes[ppa.Plane()]
	return &pl.Blocks[ppa.Block()]
}
