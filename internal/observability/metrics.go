package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics registers and records the counters/histograms backing the
// PrometheusEmitter telemetry sink: one CounterVec/HistogramVec pair per
// event family (connection, command, pool).
type Metrics struct {
	connectionTotal    *prometheus.CounterVec
	connectionDuration *prometheus.HistogramVec
	commandTotal       *prometheus.CounterVec
	commandDuration    *prometheus.HistogramVec
	poolCheckoutTotal  *prometheus.CounterVec
	poolCheckinTotal   *prometheus.CounterVec
	poolCheckinLatency *prometheus.HistogramVec
}

// NewMetrics registers the library's metrics against reg. Calling it a
// second time with the same registry panics on duplicate registration, so
// each Metrics needs a registry of its own.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorouteros",
			Subsystem: "connection",
			Name:      "events_total",
			Help:      "Connection lifecycle events by name and outcome.",
		}, []string{"event", "host"}),
		connectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gorouteros",
			Subsystem: "connection",
			Name:      "duration_seconds",
			Help:      "Connection lifecycle event durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event", "host"}),
		commandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorouteros",
			Subsystem: "command",
			Name:      "events_total",
			Help:      "Command lifecycle events by name and command.",
		}, []string{"event", "command"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gorouteros",
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Command execution durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		poolCheckoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorouteros",
			Subsystem: "pool",
			Name:      "checkout_total",
			Help:      "Pool checkout events.",
		}, []string{"pool"}),
		poolCheckinTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gorouteros",
			Subsystem: "pool",
			Name:      "checkin_total",
			Help:      "Pool checkin events.",
		}, []string{"pool"}),
		poolCheckinLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gorouteros",
			Subsystem: "pool",
			Name:      "checkout_duration_seconds",
			Help:      "Time a worker spent checked out before checkin.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pool"}),
	}
	reg.MustRegister(
		m.connectionTotal, m.connectionDuration,
		m.commandTotal, m.commandDuration,
		m.poolCheckoutTotal, m.poolCheckinTotal, m.poolCheckinLatency,
	)
	return m
}

func (m *Metrics) RecordConnection(event, host string, duration time.Duration) {
	m.connectionTotal.WithLabelValues(event, host).Inc()
	m.connectionDuration.WithLabelValues(event, host).Observe(duration.Seconds())
}

func (m *Metrics) RecordCommand(event, command string, duration time.Duration) {
	m.commandTotal.WithLabelValues(event, command).Inc()
	if duration > 0 {
		m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordPoolCheckout(pool string) {
	m.poolCheckoutTotal.WithLabelValues(pool).Inc()
}

func (m *Metrics) RecordPoolCheckin(pool string, duration time.Duration) {
	m.poolCheckinTotal.WithLabelValues(pool).Inc()
	m.poolCheckinLatency.WithLabelValues(pool).Observe(duration.Seconds())
}
