// Package config loads the si5326ctl configuration file.
//
//	transport: smbus        # smbus | periph | sim
//	bus: "1"                # /dev/i2c-1 for smbus, a periph bus name otherwise
//	address: 0x68
//	strict_probe: false
//	log_level: info
//	reset:
//	  chip: gpiochip0
//	  line: 17
//	  pulse: 10ms
//	  settle: 30ms
//	serve:
//	  socket: /run/si5326.sock
//	  tty: /dev/ttyGS0
//	  baud: 115200
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport kinds.
const (
	TransportSMBus  = "smbus"
	TransportPeriph = "periph"
	TransportSim    = "sim"
)

// DefaultAddress is the Si5326 slave address with A[2:0] tied low.
const DefaultAddress = 0x68

// Config holds the tool configuration.
type Config struct {
	Transport   string      `yaml:"transport"`
	Bus         string      `yaml:"bus"`
	Address     uint16      `yaml:"address"`
	StrictProbe bool        `yaml:"strict_probe"`
	LogLevel    string      `yaml:"log_level"`
	Reset       ResetConfig `yaml:"reset"`
	Serve       ServeConfig `yaml:"serve"`
}

// ResetConfig describes the optional RST GPIO. An empty Chip disables it.
type ResetConfig struct {
	Chip   string        `yaml:"chip"`
	Line   int           `yaml:"line"`
	Pulse  time.Duration `yaml:"pulse"`
	Settle time.Duration `yaml:"settle"`
}

// Enabled reports whether a reset line is configured.
func (r ResetConfig) Enabled() bool {
	return r.Chip != ""
}

// ServeConfig describes where the line protocol is served.
type ServeConfig struct {
	Socket string `yaml:"socket"`
	TTY    string `yaml:"tty"`
	Baud   int    `yaml:"baud"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Transport: TransportSMBus,
		Bus:       "1",
		Address:   DefaultAddress,
		LogLevel:  "info",
		Reset: ResetConfig{
			Pulse:  10 * time.Millisecond,
			Settle: 30 * time.Millisecond,
		},
		Serve: ServeConfig{
			Baud: 115200,
		},
	}
}

// Load reads path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("YAML parse error: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values the tool can't run without.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportSMBus:
		if _, err := c.BusNumber(); err != nil {
			errs = append(errs, err)
		}
	case TransportPeriph, TransportSim:
	default:
		errs = append(errs, fmt.Errorf("unknown transport: %q (supported: smbus, periph, sim)", c.Transport))
	}
	if c.Address > 0x7f {
		errs = append(errs, fmt.Errorf("address must be a 7-bit i2c address, got 0x%x", c.Address))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level: %q", c.LogLevel))
	}
	if c.Reset.Enabled() && c.Reset.Line < 0 {
		errs = append(errs, fmt.Errorf("reset line must not be negative, got %d", c.Reset.Line))
	}
	if c.Serve.TTY != "" && c.Serve.Baud <= 0 {
		errs = append(errs, fmt.Errorf("serve baud must be positive, got %d", c.Serve.Baud))
	}
	return errors.Join(errs...)
}

// BusNumber returns the i2c-dev bus number for the smbus transport.
func (c Config) BusNumber() (int, error) {
	n, err := strconv.Atoi(c.Bus)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("smbus bus must be a bus number, got %q", c.Bus)
	}
	return n, nil
}
