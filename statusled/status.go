// Package statusled drives a common-cathode RGB LED that shows device status
// as one of six colors combined with one of four blink modes.
//
// The LED state machine is portable Go. Pin writes go through the Lines
// interface and timing comes from a TimerSource, so the same LED runs on a
// Pico (see package pico), on a Linux board, or against an in-memory
// recorder in tests.
//
//	led := statusled.New(lines, &statusled.Ticker{Period: statusled.TickPeriod})
//	led.Initialize()
//	led.SetStatus(statusled.WordTeal | statusled.WordLongBlink)
package statusled

// Word is the packed 16-bit status word. Bits 15, 14 and 13 select red, blue
// and green. Bits 1..0 hold the blink mode. All other bits are ignored.
type Word uint16

// Blink mode words.
const (
	WordShortBlink Word = 0x0000 // on for a moment, then off for a second
	WordOff        Word = 0x0001
	WordSolid      Word = 0x0002
	WordLongBlink  Word = 0x0003 // on for a second, then off for a moment
)

// Color words. Orange, teal and magenta are two-bit unions.
const (
	WordRed     Word = 0x8000
	WordGreen   Word = 0x2000
	WordBlue    Word = 0x4000
	WordOrange  Word = WordRed | WordGreen
	WordTeal    Word = WordGreen | WordBlue
	WordMagenta Word = WordRed | WordBlue
)

const (
	wordModeMask  Word = 0x0003
	wordColorMask Word = WordRed | WordGreen | WordBlue
)

// LineID names one of the three physical output lines.
type LineID uint8

const (
	LineRed LineID = iota
	LineGreen
	LineBlue

	numLines = 3
)

func (id LineID) String() string {
	switch id {
	case LineRed:
		return "red"
	case LineGreen:
		return "green"
	case LineBlue:
		return "blue"
	}
	return "unknown"
}

// Color is the set of lines that are active.
type Color uint8

const (
	Red   Color = 1 << LineRed
	Green Color = 1 << LineGreen
	Blue  Color = 1 << LineBlue

	Orange  = Red | Green
	Teal    = Green | Blue
	Magenta = Red | Blue

	// NoColor selects no line. It is legal with every mode and keeps the LED dark.
	NoColor Color = 0

	allColors = Red | Green | Blue
)

// Has reports whether line id is part of the color.
func (c Color) Has(id LineID) bool {
	return c&(1<<id) != 0
}

func (c Color) String() string {
	switch c & allColors {
	case NoColor:
		return "none"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Orange:
		return "orange"
	case Teal:
		return "teal"
	case Magenta:
		return "magenta"
	}
	return "red+green+blue"
}

// BlinkMode selects how the color is shown over time. The values match the
// two mode bits of a Word.
type BlinkMode uint8

const (
	ShortBlink BlinkMode = iota
	Off
	Solid
	LongBlink
)

func (m BlinkMode) String() string {
	switch m {
	case ShortBlink:
		return "shortblink"
	case Off:
		return "off"
	case Solid:
		return "solid"
	case LongBlink:
		return "longblink"
	}
	return "unknown"
}

// Status is the decoded form of a Word.
type Status struct {
	Color Color
	Mode  BlinkMode
}

// DefaultStatus is shown right after Initialize.
var DefaultStatus = Status{Color: Blue, Mode: ShortBlink}

// Decode splits w into its color and blink mode. Undefined bits are dropped.
func Decode(w Word) Status {
	var c Color
	if w&WordRed != 0 {
		c |= Red
	}
	if w&WordGreen != 0 {
		c |= Green
	}
	if w&WordBlue != 0 {
		c |= Blue
	}
	return Status{Color: c, Mode: BlinkMode(w & wordModeMask)}
}

// Word packs s back into a status word.
func (s Status) Word() Word {
	w := Word(s.Mode) & wordModeMask
	if s.Color&Red != 0 {
		w |= WordRed
	}
	if s.Color&Green != 0 {
		w |= WordGreen
	}
	if s.Color&Blue != 0 {
		w |= WordBlue
	}
	return w
}

func (s Status) String() string {
	return s.Color.String() + "|" + s.Mode.String()
}
