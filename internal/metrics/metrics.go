// Package metrics exports the status LED's activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harveysanders/picostatus/statusled"
)

const namespace = "statusled"

// Metrics holds the collectors for one LED.
type Metrics struct {
	ticks   prometheus.Counter
	changes prometheus.Counter
	word    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Timer ticks delivered to the LED state machine",
		}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Status words applied to the LED",
		}),
		word: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status_word",
			Help:      "Last status word applied to the LED",
		}),
	}
	reg.MustRegister(m.ticks, m.changes, m.word)
	return m
}

// ObserveStatus records that w was applied.
func (m *Metrics) ObserveStatus(w statusled.Word) {
	m.changes.Inc()
	m.word.Set(float64(w))
}

// Timer wraps ts so that every tick it delivers is counted.
func (m *Metrics) Timer(ts statusled.TimerSource) statusled.TimerSource {
	return &countingTimer{src: ts, ticks: m.ticks}
}

type countingTimer struct {
	src   statusled.TimerSource
	ticks prometheus.Counter
}

func (c *countingTimer) Start(tick func()) {
	c.src.Start(func() {
		tick()
		c.ticks.Inc()
	})
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
