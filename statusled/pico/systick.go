//go:build tinygo && cortexm

package pico

import (
	"device/arm"
	"machine"
	"sync"
	"time"

	"github.com/harveysanders/picostatus/statusled"
)

// sysTickHandler is called from the SysTick interrupt. There is one SysTick
// per core, so at most one SysTick timer source may be started.
var sysTickHandler func()

// SysTick is a statusled.TimerSource on the Cortex-M system timer.
type SysTick struct {
	// Period between ticks. Zero means statusled.TickPeriod. The reload
	// register is 24 bits wide, which caps the period at about 110ms on a
	// 150MHz RP2350 and 134ms on a 125MHz RP2040.
	Period time.Duration

	once sync.Once
}

// Start installs tick as the SysTick handler and enables the timer. A
// period the timer cannot represent is a wiring fault and panics.
func (s *SysTick) Start(tick func()) {
	s.once.Do(func() {
		period := s.Period
		if period <= 0 {
			period = statusled.TickPeriod
		}
		cycles := uint64(machine.CPUFrequency()) * uint64(period) / uint64(time.Second)

		sysTickHandler = tick
		if err := arm.SetupSystemTimer(uint32(cycles)); err != nil {
			panic("statusled: systick:" + err.Error())
		}
	})
}

//export SysTick_Handler
func handleSysTick() {
	if h := sysTickHandler; h != nil {
		h()
	}
}
