package statusled

import (
	"sync"
	"time"
)

// TimerSource delivers periodic ticks. Start installs tick as the handler
// and enables the timer. Calling Start again must not reconfigure it.
type TimerSource interface {
	Start(tick func())
}

// Ticker is a TimerSource backed by a goroutine and a time.Ticker. It runs
// on hosted Go and on TinyGo alike.
type Ticker struct {
	// Period between ticks. Zero means TickPeriod.
	Period time.Duration

	once sync.Once
	stop chan struct{}
	done chan struct{}
	mu   sync.Mutex
}

// Start begins delivering ticks on a new goroutine.
func (t *Ticker) Start(tick func()) {
	t.once.Do(func() {
		period := t.Period
		if period <= 0 {
			period = TickPeriod
		}
		t.mu.Lock()
		t.stop = make(chan struct{})
		t.done = make(chan struct{})
		stop, done := t.stop, t.done
		t.mu.Unlock()

		go func() {
			defer close(done)
			tk := time.NewTicker(period)
			defer tk.Stop()
			for {
				select {
				case <-stop:
					return
				case <-tk.C:
					tick()
				}
			}
		}()
	})
}

// Stop halts tick delivery and waits for the goroutine to exit. It is safe
// to call before Start and more than once.
func (t *Ticker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop = nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// ManualTimer delivers ticks only when Fire is called. It drives simulations
// and tests.
type ManualTimer struct {
	mu     sync.Mutex
	tick   func()
	starts int
}

// Start records tick. Later calls are ignored.
func (m *ManualTimer) Start(tick func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	if m.tick == nil {
		m.tick = tick
	}
}

// Fire delivers n ticks. It does nothing before Start.
func (m *ManualTimer) Fire(n int) {
	m.mu.Lock()
	tick := m.tick
	m.mu.Unlock()
	if tick == nil {
		return
	}
	for i := 0; i < n; i++ {
		tick()
	}
}

// Starts returns how many times Start was called.
func (m *ManualTimer) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}
