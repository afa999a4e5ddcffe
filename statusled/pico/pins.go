//go:build tinygo

package pico

import (
	"machine"

	"github.com/harveysanders/picostatus/statusled"
)

// Pins drives the three anodes of a common-cathode RGB LED.
type Pins struct {
	Red   machine.Pin
	Green machine.Pin
	Blue  machine.Pin
}

// Configure sets every pin as an output and drives it low.
func (p Pins) Configure() {
	for _, pin := range [...]machine.Pin{p.Red, p.Green, p.Blue} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
}

// SetLine implements statusled.Lines.
func (p Pins) SetLine(id statusled.LineID, high bool) {
	switch id {
	case statusled.LineRed:
		p.Red.Set(high)
	case statusled.LineGreen:
		p.Green.Set(high)
	case statusled.LineBlue:
		p.Blue.Set(high)
	}
}
