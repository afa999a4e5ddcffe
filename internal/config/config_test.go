package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[gpio]
red = "GPIO5"
green = "GPIO6"

[led]
tick_period = "50ms"
initial_status = "green|solid"

[status]
file = "/run/statusled/status"

[logging]
level = "debug"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statusled.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), false, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), true, nil)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML), true, nil)
	require.NoError(t, err)

	assert.Equal(t, "GPIO5", cfg.GPIO.Red)
	assert.Equal(t, "GPIO6", cfg.GPIO.Green)
	assert.Equal(t, "GPIO22", cfg.GPIO.Blue, "unset keys keep defaults")
	assert.Equal(t, 50*time.Millisecond, cfg.LED.TickPeriod.Duration)
	assert.Equal(t, "green|solid", cfg.LED.InitialStatus)
	assert.Equal(t, "/run/statusled/status", cfg.Status.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, sampleTOML)
	t.Setenv("STATUSLED_GPIO_RED", "GPIO13")
	t.Setenv("STATUSLED_GPIO_GREEN", "GPIO19")
	t.Setenv("STATUSLED_LED_TICK_PERIOD", "200ms")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--gpio-red", "GPIO26", "--metrics-listen", ":9101"}))

	cfg, err := Load(path, true, fs)
	require.NoError(t, err)

	assert.Equal(t, "GPIO26", cfg.GPIO.Red, "flag beats env")
	assert.Equal(t, "GPIO19", cfg.GPIO.Green, "env beats file")
	assert.Equal(t, 200*time.Millisecond, cfg.LED.TickPeriod.Duration)
	assert.Equal(t, ":9101", cfg.Metrics.Listen)
	assert.Equal(t, "debug", cfg.Logging.Level, "file beats default")
}

func TestUnchangedFlagsDoNotOverrideFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(writeConfig(t, sampleTOML), true, fs)
	require.NoError(t, err)
	assert.Equal(t, "GPIO5", cfg.GPIO.Red)
}

func TestLoadBadInput(t *testing.T) {
	_, err := Load(writeConfig(t, "[led\n"), true, nil)
	assert.ErrorContains(t, err, "TOML")

	_, err = Load(writeConfig(t, "[led]\ntick_period = \"soon\"\n"), true, nil)
	assert.Error(t, err)

	t.Setenv("STATUSLED_LED_TICK_PERIOD", "never")
	_, err = Load("", false, nil)
	assert.ErrorContains(t, err, "STATUSLED_LED_TICK_PERIOD")
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"missing pin":   func(c *Config) { c.GPIO.Blue = "" },
		"zero tick":     func(c *Config) { c.LED.TickPeriod.Duration = 0 },
		"bad status":    func(c *Config) { c.LED.InitialStatus = "purple" },
		"bad log level": func(c *Config) { c.Logging.Level = "loud" },
		"bad format":    func(c *Config) { c.Logging.Format = "yaml" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
