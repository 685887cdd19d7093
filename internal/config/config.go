// Package config parses the YAML configuration format described in §6:
// settings, slices, mobility patterns, base stations, and client generators.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DistSpec names a distribution and its parameters, mirroring sim.DistSpec.
// Kept as a separate type so the engine never imports this package directly
// (builder.go is the only translation point).
type DistSpec struct {
	Distribution string    `yaml:"distribution"`
	Params       []float64 `yaml:"params"`
}

// Range is an inclusive [Min, Max] bound used by statistics_params.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// StatisticsParams restricts which clients contribute to per-tick stats and
// trims the reporting window (§6).
type StatisticsParams struct {
	X             Range   `yaml:"x"`
	Y             Range   `yaml:"y"`
	WarmupRatio   float64 `yaml:"warmup_ratio"`
	CooldownRatio float64 `yaml:"cooldown_ratio"`
}

// Settings holds the top-level run parameters (§6).
type Settings struct {
	NumClients               int              `yaml:"num_clients"`
	SimulationTime           int              `yaml:"simulation_time"`
	LimitClosestBaseStations int              `yaml:"limit_closest_base_stations"`
	StatisticsParams         StatisticsParams `yaml:"statistics_params"`
	LatencyTracking          *bool            `yaml:"latency_tracking"`
	DynamicAllocation        *bool            `yaml:"dynamic_allocation"`
	Seed                     int64            `yaml:"seed"`
	LogLevel                 string           `yaml:"log_level"`
}

// SliceConfig is one entry of the top-level slices map (§6).
type SliceConfig struct {
	ClientWeight        float64  `yaml:"client_weight"`
	DelayTolerance      float64  `yaml:"delay_tolerance"`
	QoSClass            int      `yaml:"qos_class"`
	BandwidthGuaranteed float64  `yaml:"bandwidth_guaranteed"`
	BandwidthMax        float64  `yaml:"bandwidth_max"`
	UsagePattern        DistSpec `yaml:"usage_pattern"`
}

// MobilityPatternConfig is one entry of the top-level mobility_patterns map (§6).
type MobilityPatternConfig struct {
	ClientWeight float64   `yaml:"client_weight"`
	Distribution string    `yaml:"distribution"`
	Params       []float64 `yaml:"params"`
}

// BaseStationConfig is one entry of the base_stations list (§6).
type BaseStationConfig struct {
	X                 float64            `yaml:"x"`
	Y                 float64            `yaml:"y"`
	Coverage          float64            `yaml:"coverage"`
	CapacityBandwidth float64            `yaml:"capacity_bandwidth"`
	Ratios            map[string]float64 `yaml:"ratios"`
}

// UsageFrequencyConfig is clients.usage_frequency (§6): the sampled value is
// divided by DivideScale before use.
type UsageFrequencyConfig struct {
	Distribution string    `yaml:"distribution"`
	Params       []float64 `yaml:"params"`
	DivideScale  float64   `yaml:"divide_scale"`
}

// LocationConfig is clients.location (§6).
type LocationConfig struct {
	X DistSpec `yaml:"x"`
	Y DistSpec `yaml:"y"`
}

// ClientsConfig is the top-level clients section (§6).
type ClientsConfig struct {
	Location       LocationConfig       `yaml:"location"`
	UsageFrequency UsageFrequencyConfig `yaml:"usage_frequency"`
}

// Config is the full parsed configuration file (§6). All top-level sections
// must be listed here to satisfy KnownFields(true) strict parsing.
type Config struct {
	Settings         Settings                         `yaml:"settings"`
	Slices           map[string]SliceConfig           `yaml:"slices"`
	MobilityPatterns map[string]MobilityPatternConfig `yaml:"mobility_patterns"`
	BaseStations     []BaseStationConfig              `yaml:"base_stations"`
	Clients          ClientsConfig                    `yaml:"clients"`
}

// LatencyTrackingEnabled returns the configured value, defaulting to true
// when the key is absent (§6).
func (c *Config) LatencyTrackingEnabled() bool {
	if c.Settings.LatencyTracking == nil {
		return true
	}
	return *c.Settings.LatencyTracking
}

// DynamicAllocationEnabled returns the configured value, defaulting to true
// when the key is absent (§6).
func (c *Config) DynamicAllocationEnabled() bool {
	if c.Settings.DynamicAllocation == nil {
		return true
	}
	return *c.Settings.DynamicAllocation
}

// LogLevelOrDefault returns the configured log level, defaulting to "info".
func (c *Config) LogLevelOrDefault() string {
	if c.Settings.LogLevel == "" {
		return "info"
	}
	return c.Settings.LogLevel
}

// Load reads and strictly decodes a configuration file. It never calls
// os.Exit; that decision belongs to cmd (§7).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Settings.NumClients <= 0 {
		return fmt.Errorf("settings.num_clients must be positive, got %d", c.Settings.NumClients)
	}
	if c.Settings.SimulationTime <= 0 {
		return fmt.Errorf("settings.simulation_time must be positive, got %d", c.Settings.SimulationTime)
	}
	if len(c.Slices) == 0 {
		return fmt.Errorf("at least one entry is required under slices")
	}
	if len(c.MobilityPatterns) == 0 {
		return fmt.Errorf("at least one entry is required under mobility_patterns")
	}
	if len(c.BaseStations) == 0 {
		return fmt.Errorf("at least one entry is required under base_stations")
	}
	for name, bs := range c.slicesReferencedBy() {
		if _, ok := c.Slices[name]; !ok {
			return fmt.Errorf("base station ratios reference unknown slice %q (at base station %d)", name, bs)
		}
	}
	return nil
}

// slicesReferencedBy returns, for every slice name appearing in any base
// station's ratios, the index of a base station that references it (for
// error messages).
func (c *Config) slicesReferencedBy() map[string]int {
	out := make(map[string]int)
	for i, bs := range c.BaseStations {
		for name := range bs.Ratios {
			if _, seen := out[name]; !seen {
				out[name] = i
			}
		}
	}
	return out
}
