// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Namespace configuration: loads the YAML description of one simulated namespace's geometry,
// timing, partitioning and GC tunables into the structs the ssd and ftl packages consume.

package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"

	"github.com/nvmevsim/ssdsim/ftl"
	"github.com/nvmevsim/ssdsim/ssd"
)

// NamespaceConfig is the on-disk shape of one namespace's full configuration.
type NamespaceConfig struct {
	CapacityBytes   uint64 `yaml:"capacity_bytes"`
	NumParts        uint32 `yaml:"nparts"`
	CPUNrDispatcher []int  `yaml:"cpu_nr_dispatcher"`

	Geometry ssd.RawGeometry  `yaml:"geometry"`
	Timing   ssd.TimingConfig `yaml:"timing"`

	GCThresLines     uint32  `yaml:"gc_thres_lines"`
	GCThresLinesHigh uint32  `yaml:"gc_thres_lines_high"`
	EnableGCDelay    bool    `yaml:"enable_gc_delay"`
	OPAreaPcent      float64 `yaml:"op_area_pcent"`
	PBAPcent         int     `yaml:"pba_pcent"`
}

// Load reads and parses a NamespaceConfig from the YAML file at path.
func Load(path string) (*NamespaceConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg NamespaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.NumParts == 0 {
		cfg.NumParts = 1
	}
	return &cfg, nil
}

// PartitionParams computes one partition's ssd.Params from this namespace config.
func (c *NamespaceConfig) PartitionParams() (*ssd.Params, error) {
	return ssd.NewParams(c.CapacityBytes, c.NumParts, c.Geometry, c.Timing)
}

// FTLConfig extracts the ftl.Config portion of this namespace config.
func (c *NamespaceConfig) FTLConfig() ftl.Config {
	return ftl.Config{
		GCThresLines:     c.GCThresLines,
		GCThresLinesHigh: c.GCThresLinesHigh,
		EnableGCDelay:    c.EnableGCDelay,
		OPAreaPcent:      c.OPAreaPcent,
		PBAPcent:         c.PBAPcent,
	}
}

// DispatcherCPU returns the CPU to pin partition i's dispatcher goroutine to, or -1 if the
// config does not specify one for that partition (spec §9: cpu_nr_dispatcher is advisory).
func (c *NamespaceConfig) DispatcherCPU(partition int) int {
	if partition < 0 || partition >= len(c.CPUNrDispatcher) {
		return -1
	}
	return c.CPUNrDispatcher[partition]
}
