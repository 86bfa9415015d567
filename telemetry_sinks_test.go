package gorouteros

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func TestLogEmitterDoesNotPanic(t *testing.T) {
	e := NewLogEmitter(zerolog.Nop())
	e.Emit(Event{Name: EventConnectionStart, Host: "router.local", Port: 8728})
	e.Emit(Event{Name: EventCommandStop, Command: "/interface/print", Duration: 5 * time.Millisecond, ResultCount: 3})
}

func TestPrometheusEmitterRecordsAllFamilies(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusEmitter(reg, "default")

	e.Emit(Event{Name: EventConnectionStart, Host: "router.local"})
	e.Emit(Event{Name: EventCommandStop, Command: "/interface/print", Duration: time.Millisecond})
	e.Emit(Event{Name: EventPoolCheckout})
	e.Emit(Event{Name: EventPoolCheckin, Duration: time.Millisecond})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	// connection: total+duration, command: total+duration,
	// pool: checkout total, checkin total, checkin latency.
	if len(families) != 7 {
		t.Fatalf("expected 7 metric families to be populated, got %d", len(families))
	}
}
