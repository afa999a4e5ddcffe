// Package periphlines drives a statusled.LED from Linux GPIO through periph.io.
package periphlines

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/harveysanders/picostatus/statusled"
)

// Lines implements statusled.Lines on three periph.io output pins.
type Lines struct {
	pins   [3]gpio.PinOut
	logger *slog.Logger
	failed atomic.Uint64
}

// New wraps already opened pins, in red, green, blue order. Every pin is
// driven low before New returns. A nil logger discards.
func New(red, green, blue gpio.PinOut, logger *slog.Logger) (*Lines, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Lines{
		pins:   [3]gpio.PinOut{red, green, blue},
		logger: logger,
	}
	for id, p := range l.pins {
		if p == nil {
			return nil, fmt.Errorf("periphlines: no pin for %s line", statusled.LineID(id))
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("periphlines: drive %s low: %w", p, err)
		}
	}
	return l, nil
}

// Open initializes the periph.io host drivers and looks up the pins by name
// (for example "GPIO17").
func Open(red, green, blue string, logger *slog.Logger) (*Lines, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphlines: host init: %w", err)
	}
	var pins [3]gpio.PinOut
	for i, name := range [3]string{red, green, blue} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("periphlines: unknown pin %q", name)
		}
		pins[i] = p
	}
	return New(pins[0], pins[1], pins[2], logger)
}

// SetLine implements statusled.Lines. Write errors are counted and logged;
// the next tick retries every line anyway.
func (l *Lines) SetLine(id statusled.LineID, high bool) {
	if int(id) >= len(l.pins) {
		return
	}
	level := gpio.Low
	if high {
		level = gpio.High
	}
	if err := l.pins[id].Out(level); err != nil {
		// Only log the first failure of a streak to keep the tick path quiet.
		if l.failed.Add(1) == 1 {
			l.logger.Error("gpio write failed", "line", id.String(), "error", err)
		}
		return
	}
	l.failed.Store(0)
}

// Failures returns the number of consecutive failed writes.
func (l *Lines) Failures() uint64 {
	return l.failed.Load()
}

// Halt drives every line low.
func (l *Lines) Halt() error {
	for _, p := range l.pins {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("periphlines: halt %s: %w", p, err)
		}
	}
	return nil
}
