//go:build tinygo

// blinky walks the status LED through every named color and blink mode.
package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/picostatus/statusled"
	"github.com/harveysanders/picostatus/statusled/pico"
)

const holdTime = 4 * time.Second

var (
	colors = []statusled.Word{
		statusled.WordRed,
		statusled.WordGreen,
		statusled.WordBlue,
		statusled.WordOrange,
		statusled.WordTeal,
		statusled.WordMagenta,
	}
	modes = []statusled.Word{
		statusled.WordSolid,
		statusled.WordShortBlink,
		statusled.WordLongBlink,
		statusled.WordOff,
	}
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	led := pico.EnableStatusLED(statusled.WithLogger(logger))
	// Give the serial monitor a chance to attach while the default blue blink runs.
	time.Sleep(holdTime)

	for {
		for _, mode := range modes {
			for _, color := range colors {
				led.SetStatus(color | mode)
				time.Sleep(holdTime)
			}
		}
	}
}
