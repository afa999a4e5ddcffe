package statusled

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Lines writes the physical output lines. Implementations must be safe to
// call from interrupt context: no allocation, no blocking.
type Lines interface {
	SetLine(id LineID, high bool)
}

// LED owns the status of one RGB LED and drives its lines on every tick.
//
// SetStatus may be called from the main flow while Tick runs from a timer
// interrupt or goroutine. Both work on a single atomic cell holding the
// status word and the blink phase, so Tick never sees a half-written status.
type LED struct {
	lines  Lines
	timer  TimerSource
	logger *slog.Logger

	// state packs the status word in bits 0..15 and the phase in bits 16..23.
	state    atomic.Uint32
	initOnce sync.Once
}

// Option configures an LED.
type Option func(*LED)

// WithLogger sets the logger used for status changes. Tick never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(l *LED) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns an LED writing to lines and advanced by timer. The LED is
// inert until Initialize is called.
func New(lines Lines, timer TimerSource, opts ...Option) *LED {
	l := &LED{
		lines:  lines,
		timer:  timer,
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		})),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state.Store(pack(DefaultStatus.Word(), 0))
	return l
}

// Initialize drives every line low, shows DefaultStatus and starts the
// timer. Only the first call has any effect.
func (l *LED) Initialize() {
	l.initOnce.Do(func() {
		l.drive(NoColor)
		l.state.Store(pack(DefaultStatus.Word(), 0))
		l.logger.Info("statusled:init", slog.String("status", DefaultStatus.String()))
		l.timer.Start(l.Tick)
	})
}

// SetStatus replaces the current status and restarts the blink cycle.
// Any value is accepted; bits outside the color and mode fields are ignored.
// The change shows on the next tick.
func (l *LED) SetStatus(w Word) {
	w &= wordColorMask | wordModeMask
	l.state.Store(pack(w, 0))
	l.logger.Debug("statusled:set", slog.String("status", Decode(w).String()))
}

// Set is SetStatus for an already decoded status.
func (l *LED) Set(s Status) {
	l.SetStatus(s.Word())
}

// Status returns the current status.
func (l *LED) Status() Status {
	w, _ := unpack(l.state.Load())
	return Decode(w)
}

// Phase returns the phase the next tick will show.
func (l *LED) Phase() uint8 {
	_, phase := unpack(l.state.Load())
	return phase
}

// Tick shows the current phase on the lines and advances the phase. It is
// called by the TimerSource.
func (l *LED) Tick() {
	for {
		cur := l.state.Load()
		w, phase := unpack(cur)
		s := Decode(w)
		next := pack(w, (phase+1)%CycleLen(s.Mode))
		if l.state.CompareAndSwap(cur, next) {
			l.drive(Lit(s, phase))
			return
		}
	}
}

func (l *LED) drive(c Color) {
	for id := LineID(0); id < numLines; id++ {
		l.lines.SetLine(id, c.Has(id))
	}
}

func pack(w Word, phase uint8) uint32 {
	return uint32(w) | uint32(phase)<<16
}

func unpack(v uint32) (Word, uint8) {
	return Word(v), uint8(v >> 16)
}
