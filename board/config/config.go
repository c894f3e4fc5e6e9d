// Package config loads a board's clock tree from YAML and builds it.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"ztimer/convert"
)

// Clock sources
const (
	SourceHost    = "host"
	SourceMock    = "mock"
	SourceConvert = "convert"
)

// Config describes a board's clocks. Clocks are built in the listed
// order, so a converted clock must come after its lower clock.
type Config struct {
	Name   string        `yaml:"name"`
	Clocks []ClockConfig `yaml:"clocks"`
}

// ClockConfig describes one clock
type ClockConfig struct {
	Name      string `yaml:"name"`
	Source    string `yaml:"source"`
	Frequency uint32 `yaml:"frequency"`

	// Counter width in bits for host and mock sources
	Width uint `yaml:"width"`

	// Lower clock and conversion method for the convert source
	Lower    string `yaml:"lower"`
	Strategy string `yaml:"strategy"`

	AdjustSet        uint32 `yaml:"adjust_set"`
	AdjustSleep      uint32 `yaml:"adjust_sleep"`
	AdjustClockStart uint32 `yaml:"adjust_clock_start"`
	OnDemand         bool   `yaml:"on_demand"`
}

// LoadConfig parses a YAML configuration and applies defaults. The result
// is not validated.
func LoadConfig(data []byte) (*Config, error) {
	var config Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse board config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// LoadFile reads and parses the configuration at path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board config: %w", err)
	}
	return LoadConfig(data)
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Name == "" {
		config.Name = "host"
	}

	for i := range config.Clocks {
		clock := &config.Clocks[i]

		if clock.Source == "" {
			if clock.Lower != "" {
				clock.Source = SourceConvert
			} else {
				clock.Source = SourceHost
			}
		}
		if clock.Width == 0 && clock.Source != SourceConvert {
			clock.Width = 32
		}
		if clock.Strategy == "" && clock.Source == SourceConvert {
			clock.Strategy = string(convert.StrategyAuto)
		}
	}
}

// Validate reports every problem in the configuration at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if len(c.Clocks) == 0 {
		result = multierror.Append(result, fmt.Errorf("no clocks defined"))
	}

	seen := make(map[string]bool)
	for i, clock := range c.Clocks {
		name := clock.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
			result = multierror.Append(result, fmt.Errorf("clock %s: name is required", name))
		} else if seen[name] {
			result = multierror.Append(result, fmt.Errorf("clock %s: defined twice", name))
		}

		if clock.Frequency == 0 {
			result = multierror.Append(result, fmt.Errorf("clock %s: frequency is required", name))
		}

		switch clock.Source {
		case SourceHost, SourceMock:
			if clock.Width < 1 || clock.Width > 32 {
				result = multierror.Append(result, fmt.Errorf("clock %s: width %d out of range 1..32", name, clock.Width))
			}
			if clock.Lower != "" {
				result = multierror.Append(result, fmt.Errorf("clock %s: %s clocks have no lower clock", name, clock.Source))
			}
		case SourceConvert:
			if clock.Lower == "" {
				result = multierror.Append(result, fmt.Errorf("clock %s: lower clock is required", name))
			} else if !seen[clock.Lower] {
				result = multierror.Append(result, fmt.Errorf("clock %s: lower clock %s must be defined before it", name, clock.Lower))
			}
			if _, err := convert.ParseStrategy(clock.Strategy); err != nil {
				result = multierror.Append(result, fmt.Errorf("clock %s: %w", name, err))
			}
			if clock.Width != 0 {
				result = multierror.Append(result, fmt.Errorf("clock %s: width is derived for converted clocks", name))
			}
		default:
			result = multierror.Append(result, fmt.Errorf("clock %s: unknown source %q", name, clock.Source))
		}

		if clock.Name != "" {
			seen[clock.Name] = true
		}
	}

	return result.ErrorOrNil()
}

// DefaultConfig returns the clock tree used when no configuration is given:
// a microsecond host counter with millisecond and second clocks on top,
// and a 16-bit low-power counter that only runs while in use.
func DefaultConfig() *Config {
	return &Config{
		Name: "host",
		Clocks: []ClockConfig{
			{
				Name:      "usec",
				Source:    SourceHost,
				Frequency: 1000000,
				Width:     32,
				AdjustSet: 2,
			},
			{
				Name:      "msec",
				Source:    SourceConvert,
				Frequency: 1000,
				Lower:     "usec",
				Strategy:  string(convert.StrategyFrac),
			},
			{
				Name:      "sec",
				Source:    SourceConvert,
				Frequency: 1,
				Lower:     "msec",
				Strategy:  string(convert.StrategyMulDiv),
			},
			{
				Name:             "lptim",
				Source:           SourceHost,
				Frequency:        32768,
				Width:            16,
				AdjustClockStart: 3,
				OnDemand:         true,
			},
		},
	}
}
