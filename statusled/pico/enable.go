//go:build tinygo && (rp2040 || rp2350)

package pico

import (
	"machine"
	"sync"

	"github.com/harveysanders/picostatus/statusled"
)

// DefaultPins is the reference wiring: red, blue and green on three adjacent pins.
var DefaultPins = Pins{
	Red:   machine.GP15,
	Green: machine.GP13,
	Blue:  machine.GP14,
}

var (
	statusLED  *statusled.LED
	enableOnce sync.Once
)

// EnableStatusLED configures DefaultPins and the SysTick timer, then starts
// the LED on statusled.DefaultStatus. It returns the board's single LED;
// later calls return the same LED and ignore opts.
func EnableStatusLED(opts ...statusled.Option) *statusled.LED {
	enableOnce.Do(func() {
		DefaultPins.Configure()
		statusLED = statusled.New(DefaultPins, &SysTick{}, opts...)
		statusLED.Initialize()
	})
	return statusLED
}
