// Package config loads board configuration from YAML (spec.md ambient
// stack addition): the board-specific layout the original encodes at
// compile time through CONFIG() preprocessor selection — which regulator
// backs each supply rail, how many clusters and cores are present, pin
// assignments — is instead read once at startup, so the same firmware
// binary can describe multiple boards.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RegulatorRef names a rail on a specific regulator controller, the YAML
// equivalent of regulator_list.c's CONFIG()-selected struct
// regulator_handle initializers.
type RegulatorRef struct {
	Controller string `yaml:"controller"`
	ID         uint8  `yaml:"id"`
}

// Supplies names the regulator backing each of the board's fixed supply
// rails. A zero-value RegulatorRef (empty Controller) means the rail has
// no regulator on this board, mirroring the original's `.dev = NULL` case.
type Supplies struct {
	CPU    RegulatorRef `yaml:"cpu"`
	DRAM   RegulatorRef `yaml:"dram"`
	VccPLL RegulatorRef `yaml:"vcc_pll"`
	VDDSys RegulatorRef `yaml:"vdd_sys"`
}

// Cluster describes one CSS cluster's core count.
type Cluster struct {
	Cores uint32 `yaml:"cores"`
}

// Pin names a GPIO controller pin, used for board-specific wiring such as
// a reset line or an LED.
type Pin struct {
	Controller string `yaml:"controller"`
	Number     uint32 `yaml:"number"`
}

// Board is the full configuration for one board.
type Board struct {
	Name string `yaml:"name"`

	ClusterClockMHz uint32    `yaml:"cluster_clock_mhz"`
	Clusters        []Cluster `yaml:"clusters"`

	Supplies Supplies `yaml:"supplies"`

	PMICControllers      []string `yaml:"pmic_controllers"`
	WatchdogControllers  []string `yaml:"watchdog_controllers"`

	Pins map[string]Pin `yaml:"pins"`

	HaveDRAMSuspend bool `yaml:"have_dram_suspend"`
}

// Load reads and parses a board configuration file.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a board configuration from raw YAML bytes.
func Parse(data []byte) (*Board, error) {
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("config: invalid board configuration: %w", err)
	}
	if len(b.Clusters) == 0 {
		return nil, fmt.Errorf("config: board %q declares no clusters", b.Name)
	}
	return &b, nil
}

// CoreCounts returns the per-cluster core counts, in the shape the css
// package expects.
func (b *Board) CoreCounts() []uint32 {
	counts := make([]uint32, len(b.Clusters))
	for i, c := range b.Clusters {
		counts[i] = c.Cores
	}
	return counts
}
