// Package pico runs a statusled.LED on Raspberry Pi Pico boards with TinyGo.
//
// Lines are plain GPIO outputs and ticks come from the Cortex-M SysTick
// interrupt, which the RP2040 and RP2350 runtimes leave unused.
//
// Wiring used by EnableStatusLED (common cathode to GND, one resistor per anode):
//
//	GP15  red    (200 Ohm)
//	GP14  blue   (1k Ohm)
//	GP13  green  (100 Ohm)
//
// The resistor values balance the perceived brightness of the three dies.
package pico
