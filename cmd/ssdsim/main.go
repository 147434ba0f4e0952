// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// ssdsim runs a synthetic write workload through a configured namespace and reports the
// simulated NAND/FTL timing and line occupancy it produced.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/nvmevsim/ssdsim/config"
	"github.com/nvmevsim/ssdsim/ftl"
	"github.com/nvmevsim/ssdsim/internal/bitutil"
	"github.com/nvmevsim/ssdsim/nvmeio"
	"github.com/nvmevsim/ssdsim/ssd"
)

func main() {
	configPath := flag.String("config", "", "path to namespace YAML config")
	numOps := flag.Int("ops", 1000, "number of synthetic sequential write operations to simulate")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("ssdsim: page-mapped FTL / NAND timing simulator")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*configPath, *numOps); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, numOps int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	params, err := cfg.PartitionParams()
	if err != nil {
		return err
	}

	device := ssd.NewDevice(params, nil, nil)
	if cpu := cfg.DispatcherCPU(0); cpu >= 0 {
		if err := device.PinPartition(cpu); err != nil {
			fmt.Fprintf(os.Stderr, "ssdsim: warning: could not pin dispatcher to cpu %d: %v\n", cpu, err)
		}
	}

	f, err := ftl.New(device, cfg.FTLConfig())
	if err != nil {
		return err
	}

	proc, err := nvmeio.NewProcessor(f, params.PageSize, params.SectorSize)
	if err != nil {
		return err
	}

	lbasPerPage := uint64(params.PageSize / params.SectorSize)
	var clock, maxCompletion uint64

	for i := 0; i < numOps; i++ {
		lpn := uint64(i) % f.TotalLPNs()
		res := proc.Submit(nvmeio.Request{
			TraceID:     uuid.New(),
			Opcode:      nvmeio.OpWrite,
			StartingLBA: lpn * lbasPerPage,
			NumLBAs:     uint32(lbasPerPage),
			Arrival:     clock,
		})
		if res.Status != nvmeio.StatusSuccess {
			return fmt.Errorf("ssdsim: write %d failed: %s", i, res.Status)
		}
		if res.Completion > maxCompletion {
			maxCompletion = res.Completion
		}
		clock++
	}

	logicalBytes := f.TotalLPNs() * uint64(params.PageSize)
	fmt.Printf("Simulated %d writes across %d logical pages (%s)\n",
		numOps, f.TotalLPNs(), bitutil.FormatBytes(logicalBytes))
	fmt.Printf("Final completion timestamp: %d ns\n", maxCompletion)
	fmt.Printf("Free lines: %d  Victim lines: %d  Full lines: %d  Open lines: %d\n",
		f.FreeLines(), f.VictimLines(), f.FullLines(), f.OpenLines())
	return nil
}
