package statusled

import "time"

// TickPeriod is the interval between ticks. One blink cycle lasts
// CycleTicks*TickPeriod.
const TickPeriod = 100 * time.Millisecond

// Blink cycle shape, in ticks.
const (
	CycleTicks     = 10
	ShortBlinkOn   = 1              // lit on phase 0 only
	LongBlinkOn    = CycleTicks - 1 // dark on the last phase only
	steadyCycleLen = 1
)

// CycleLen returns the number of phases in one cycle of m. Off and Solid
// do not change over time and have a single phase.
func CycleLen(m BlinkMode) uint8 {
	switch m {
	case ShortBlink, LongBlink:
		return CycleTicks
	}
	return steadyCycleLen
}

// Lit returns the lines driven high for s at the given phase.
func Lit(s Status, phase uint8) Color {
	c := s.Color & allColors
	switch s.Mode {
	case Off:
		return NoColor
	case Solid:
		return c
	case ShortBlink:
		if phase < ShortBlinkOn {
			return c
		}
	case LongBlink:
		if phase < LongBlinkOn {
			return c
		}
	}
	return NoColor
}
