// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Host I/O ingress: NVMe-shaped read/write requests translated down to LPNs and handed to
// the FTL, with a result carrying completion status and timestamp back out.

package nvmeio

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nvmevsim/ssdsim/ftl"
	"github.com/nvmevsim/ssdsim/ssd"
)

// Opcode identifies the command type. Anything outside this set is unsupported.
type Opcode int

const (
	OpRead Opcode = iota
	OpWrite
)

func (op Opcode) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("opcode(%d)", int(op))
	}
}

// Status is the outcome reported back to the host for a completed command.
type Status int

const (
	StatusSuccess Status = iota
	StatusUnsupportedOpcode
	StatusLBAOutOfRange
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnsupportedOpcode:
		return "unsupported opcode"
	case StatusLBAOutOfRange:
		return "lba out of range"
	case StatusInternalError:
		return "internal error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Request is a single host command: an opcode, an LBA range, and the arrival timestamp it
// was submitted at (in the same simulated-nanosecond clock the FTL/NAND layers use).
type Request struct {
	TraceID     uuid.UUID
	Opcode      Opcode
	StartingLBA uint64
	NumLBAs     uint32
	Arrival     uint64
}

// Result is what the host sees once a Request has been serviced.
type Result struct {
	TraceID    uuid.UUID
	Status     Status
	Completion uint64
}

// Processor is the namespace-facing boundary of one FTL partition: it translates LBA ranges
// to LPNs (one LPN per FTL page, covering pageSize/lbaSize LBAs; write_unit_size plays no
// part in the translation) and submits them one page at a time.
type Processor struct {
	ftl         *ftl.FTL
	lbasPerPage uint64
}

// NewProcessor builds a Processor fronting f, addressing pages of pageSize bytes in units of
// lbaSize-byte logical blocks.
func NewProcessor(f *ftl.FTL, pageSize, lbaSize int) (*Processor, error) {
	if lbaSize <= 0 || pageSize <= 0 || pageSize%lbaSize != 0 {
		return nil, fmt.Errorf("nvmeio: page size (%d) must be a positive multiple of lba size (%d)", pageSize, lbaSize)
	}
	return &Processor{ftl: f, lbasPerPage: uint64(pageSize / lbaSize)}, nil
}

// Submit services one host command, dispatching each covered LPN to the FTL in turn. The
// returned Result's completion is the latest completion timestamp across every page touched.
func (p *Processor) Submit(req Request) Result {
	res := Result{TraceID: req.TraceID, Completion: req.Arrival}

	if req.Opcode != OpRead && req.Opcode != OpWrite {
		res.Status = StatusUnsupportedOpcode
		return res
	}

	startLPN := req.StartingLBA / p.lbasPerPage
	endLBA := req.StartingLBA + uint64(req.NumLBAs)
	if req.NumLBAs == 0 {
		endLBA = req.StartingLBA
	}
	endLPN := (endLBA + p.lbasPerPage - 1) / p.lbasPerPage
	if endLPN <= startLPN {
		endLPN = startLPN + 1
	}

	if endLPN > p.ftl.TotalLPNs() {
		res.Status = StatusLBAOutOfRange
		return res
	}

	latest := req.Arrival
	for lpn := startLPN; lpn < endLPN; lpn++ {
		var completion uint64
		var err error

		if req.Opcode == OpWrite {
			completion, err = p.ftl.Write(ssd.LPN(lpn), req.Arrival)
		} else {
			_, completion, err = p.ftl.Read(ssd.LPN(lpn), req.Arrival)
		}
		if err != nil {
			res.Status = StatusInternalError
			res.Completion = completion
			return res
		}
		if completion > latest {
			latest = completion
		}
	}

	res.Status = StatusSuccess
	res.Completion = latest
	return res
}
