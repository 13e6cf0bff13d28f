// Package metrics provides Prometheus metrics for the stopwatch daemon.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/stopwatch/internal/logic"
)

const namespace = "stopwatch"

// Control event sources.
const (
	SourceGPIO = "gpio"
	SourceMQTT = "mqtt"
)

// Metrics holds the daemon's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	mu        sync.Mutex
	lastTicks int

	TicksTotal     prometheus.Counter
	EventsTotal    *prometheus.CounterVec
	ControlTotal   *prometheus.CounterVec
	CoalescedTotal prometheus.Counter
	PublishErrors  prometheus.Counter
	GPIOErrors     prometheus.Counter

	Seconds       prometheus.Gauge
	Mode          *prometheus.GaugeVec
	Status        *prometheus.GaugeVec
	MQTTConnected prometheus.Gauge
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a new registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Ticks consumed while running.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Stopwatch events emitted, by type.",
		}, []string{"type"}),
		ControlTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_events_total",
			Help:      "Control events received, by kind and source.",
		}, []string{"kind", "source"}),
		CoalescedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_coalesced_total",
			Help:      "Control events dropped because one of the same kind was already pending.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "MQTT publish failures.",
		}),
		GPIOErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gpio_errors_total",
			Help:      "GPIO read and write failures.",
		}),
		Seconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "time_seconds",
			Help:      "Displayed time as total seconds.",
		}),
		Mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mode",
			Help:      "Counting mode (1 = active).",
		}, []string{"mode"}),
		Status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status",
			Help:      "Run status (1 = active).",
		}, []string{"status"}),
		MQTTConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "Whether the MQTT connection is open (1 = connected).",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TicksTotal,
		m.EventsTotal,
		m.ControlTotal,
		m.CoalescedTotal,
		m.PublishErrors,
		m.GPIOErrors,
		m.Seconds,
		m.Mode,
		m.Status,
		m.MQTTConnected,
	)

	return m
}

// Registry exposes the registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEvent counts one emitted stopwatch event.
func (m *Metrics) ObserveEvent(e logic.Event) {
	m.EventsTotal.WithLabelValues(string(e.Type)).Inc()
}

// ObserveControl counts one control event received from source.
func (m *Metrics) ObserveControl(kind logic.InputKind, source string) {
	m.ControlTotal.WithLabelValues(string(kind), source).Inc()
}

// SetState updates the gauges from a state snapshot and advances the tick
// counter by the ticks consumed since the previous snapshot.
func (m *Metrics) SetState(s logic.State) {
	m.Seconds.Set(float64(s.Time.Seconds()))

	for _, mode := range []logic.Mode{logic.ModeCountUp, logic.ModeCountDown} {
		m.Mode.WithLabelValues(string(mode)).Set(boolToFloat(s.Mode == mode))
	}
	for _, st := range []logic.RunStatus{logic.StatusRunning, logic.StatusPaused, logic.StatusAlarmed} {
		m.Status.WithLabelValues(string(st)).Set(boolToFloat(s.Status == st))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Counts.Ticks > m.lastTicks {
		m.TicksTotal.Add(float64(s.Counts.Ticks - m.lastTicks))
	}
	m.lastTicks = s.Counts.Ticks
}

// SetMQTTConnected records the broker connection state.
func (m *Metrics) SetMQTTConnected(connected bool) {
	m.MQTTConnected.Set(boolToFloat(connected))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
