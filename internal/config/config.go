// Package config loads the statusledd configuration.
//
// Precedence is CLI flags > environment (STATUSLED_*) > TOML file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/harveysanders/picostatus/internal/logging"
	"github.com/harveysanders/picostatus/statusled"
)

const envPrefix = "STATUSLED_"

// Config is the daemon configuration. The toml tags give the file layout.
type Config struct {
	GPIO    GPIO    `toml:"gpio"`
	LED     LED     `toml:"led"`
	Status  Status  `toml:"status"`
	Metrics Metrics `toml:"metrics"`
	Logging Logging `toml:"logging"`
}

// GPIO names the periph.io pins wired to each anode.
type GPIO struct {
	Red   string `toml:"red"`
	Green string `toml:"green"`
	Blue  string `toml:"blue"`
}

type LED struct {
	TickPeriod    Duration `toml:"tick_period"`
	InitialStatus string   `toml:"initial_status"` // applied right after Initialize; empty keeps the default blue blink
}

type Status struct {
	File string `toml:"file"` // watched for status words; empty disables the watcher
}

type Metrics struct {
	Listen string `toml:"listen"` // address for /metrics; empty disables it
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a string ("100ms") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when nothing else is set. Pins
// follow the reference wiring on a Raspberry Pi header.
func Default() Config {
	return Config{
		GPIO:    GPIO{Red: "GPIO17", Green: "GPIO27", Blue: "GPIO22"},
		LED:     LED{TickPeriod: Duration{statusled.TickPeriod}},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

type field struct {
	key   string // dotted TOML key
	usage string
	get   func(*Config) string
	set   func(*Config, string) error
}

func (f field) flag() string { return strings.ReplaceAll(strings.ReplaceAll(f.key, ".", "-"), "_", "-") }

func (f field) env() string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(f.key, ".", "_"))
}

func str(p func(*Config) *string) (func(*Config) string, func(*Config, string) error) {
	return func(c *Config) string { return *p(c) },
		func(c *Config, v string) error { *p(c) = v; return nil }
}

var fields = func() []field {
	mk := func(key, usage string, p func(*Config) *string) field {
		get, set := str(p)
		return field{key: key, usage: usage, get: get, set: set}
	}
	return []field{
		mk("gpio.red", "pin driving the red anode", func(c *Config) *string { return &c.GPIO.Red }),
		mk("gpio.green", "pin driving the green anode", func(c *Config) *string { return &c.GPIO.Green }),
		mk("gpio.blue", "pin driving the blue anode", func(c *Config) *string { return &c.GPIO.Blue }),
		{
			key:   "led.tick_period",
			usage: "interval between blink ticks",
			get:   func(c *Config) string { return c.LED.TickPeriod.String() },
			set:   func(c *Config, v string) error { return c.LED.TickPeriod.UnmarshalText([]byte(v)) },
		},
		mk("led.initial_status", "status shown after start, e.g. green|solid", func(c *Config) *string { return &c.LED.InitialStatus }),
		mk("status.file", "file holding the status word to show", func(c *Config) *string { return &c.Status.File }),
		mk("metrics.listen", "listen address for Prometheus metrics", func(c *Config) *string { return &c.Metrics.Listen }),
		mk("logging.level", "log level (debug, info, warn, error)", func(c *Config) *string { return &c.Logging.Level }),
		mk("logging.format", "log format (text, json)", func(c *Config) *string { return &c.Logging.Format }),
	}
}()

// RegisterFlags adds one flag per setting to fs, defaulting to Default().
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	for _, f := range fields {
		fs.String(f.flag(), f.get(&def), f.usage)
	}
}

// Load builds the configuration from the TOML file at path, the
// environment and the flags of fs that were set on the command line. A
// missing file is not an error unless required is true. fs may be nil.
func Load(path string, required bool, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	for _, f := range fields {
		if v, ok := os.LookupEnv(f.env()); ok {
			if err := f.set(&cfg, v); err != nil {
				return cfg, fmt.Errorf("invalid %s: %w", f.env(), err)
			}
		}
	}

	if fs != nil {
		for _, f := range fields {
			fl := fs.Lookup(f.flag())
			if fl == nil || !fl.Changed {
				continue
			}
			if err := f.set(&cfg, fl.Value.String()); err != nil {
				return cfg, fmt.Errorf("invalid --%s: %w", f.flag(), err)
			}
		}
	}
	return cfg, nil
}

// Validate reports the first setting the daemon cannot run with.
func (c Config) Validate() error {
	if c.GPIO.Red == "" || c.GPIO.Green == "" || c.GPIO.Blue == "" {
		return errors.New("gpio: red, green and blue pins are required")
	}
	if c.LED.TickPeriod.Duration <= 0 {
		return fmt.Errorf("led.tick_period must be positive, got %s", c.LED.TickPeriod)
	}
	if c.LED.InitialStatus != "" {
		if _, err := statusled.ParseWord(c.LED.InitialStatus); err != nil {
			return fmt.Errorf("led.initial_status: %w", err)
		}
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	return nil
}
