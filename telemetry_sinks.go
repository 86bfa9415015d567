package gorouteros

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/netwrk/gorouteros/internal/observability"
)

// LogEmitter renders every telemetry event as a structured zerolog line.
// Use it when the telemetry contract should land in an existing log
// pipeline rather than a metrics backend.
type LogEmitter struct {
	logger zerolog.Logger
}

// NewLogEmitter wraps logger as an Emitter. A zero zerolog.Logger is
// valid and discards output.
func NewLogEmitter(logger zerolog.Logger) LogEmitter {
	return LogEmitter{logger: logger}
}

func (e LogEmitter) Emit(ev Event) {
	logEvent := e.logger.Info().Str("event", string(ev.Name))
	if ev.Host != "" {
		logEvent = logEvent.Str("host", ev.Host).Int("port", ev.Port)
	}
	if ev.Command != "" {
		logEvent = logEvent.Str("command", ev.Command)
	}
	if ev.Pool != "" {
		logEvent = logEvent.Str("pool", ev.Pool)
	}
	if ev.Duration > 0 {
		logEvent = logEvent.Dur("duration", ev.Duration)
	}
	if ev.ResultCount > 0 {
		logEvent = logEvent.Int("result_count", ev.ResultCount)
	}
	if ev.Reason != "" {
		logEvent = logEvent.Str("reason", ev.Reason)
	}
	logEvent.Send()
}

// PrometheusEmitter records every telemetry event against a
// caller-supplied registry, one CounterVec/HistogramVec pair per event
// family.
type PrometheusEmitter struct {
	metrics *observability.Metrics
	pool    string
}

// NewPrometheusEmitter registers the library's metrics against reg.
// poolName labels pool.checkout/pool.checkin samples; it may be empty for
// a single-connection Client.
func NewPrometheusEmitter(reg prometheus.Registerer, poolName string) PrometheusEmitter {
	return PrometheusEmitter{metrics: observability.NewMetrics(reg), pool: poolName}
}

func (e PrometheusEmitter) Emit(ev Event) {
	switch ev.Name {
	case EventConnectionStart, EventConnectionStop, EventConnectionException:
		e.metrics.RecordConnection(string(ev.Name), ev.Host, ev.Duration)
	case EventCommandStart, EventCommandStop, EventCommandException:
		e.metrics.RecordCommand(string(ev.Name), ev.Command, ev.Duration)
	case EventPoolCheckout:
		e.metrics.RecordPoolCheckout(e.pool)
	case EventPoolCheckin:
		e.metrics.RecordPoolCheckin(e.pool, ev.Duration)
	}
}
