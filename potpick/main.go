//go:build tinygo

// potpick selects the LED status with a potentiometer on ADC0. The knob's
// travel is split into one slot per color and blink mode combination.
package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/picostatus/statusled"
	"github.com/harveysanders/picostatus/statusled/pico"
)

const (
	max16Bit   uint32 = 65535 // Max ADC value. The Pico's ADC reading is scaled to 16 bits.
	numColors         = 6
	numModes          = 4
	numSlots          = numColors * numModes
	pollPeriod        = 100 * time.Millisecond
)

var colors = [numColors]statusled.Color{
	statusled.Red,
	statusled.Green,
	statusled.Blue,
	statusled.Orange,
	statusled.Teal,
	statusled.Magenta,
}

var modes = [numModes]statusled.BlinkMode{
	statusled.Solid,
	statusled.ShortBlink,
	statusled.LongBlink,
	statusled.Off,
}

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	machine.InitADC()
	sensor := machine.ADC{Pin: machine.ADC0}
	sensor.Configure(machine.ADCConfig{})

	led := pico.EnableStatusLED(statusled.WithLogger(logger))

	slot := -1
	for {
		val := uint32(sensor.Get())
		next := int(val * numSlots / (max16Bit + 1))
		// Only push a change: SetStatus restarts the blink cycle.
		if next != slot {
			slot = next
			s := statusled.Status{
				Color: colors[slot%numColors],
				Mode:  modes[slot/numColors],
			}
			led.Set(s)
			logger.Info("potpick:slot",
				slog.Int("slot", slot),
				slog.Uint64("adc", uint64(val)),
				slog.String("status", s.String()),
			)
		}
		time.Sleep(pollPeriod)
	}
}
