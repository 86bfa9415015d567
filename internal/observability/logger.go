// Package observability provides telemetry sinks that adapt the
// connection/pool event contract onto zerolog and prometheus.
package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger returns a component-scoped logger for the library's own
// lifecycle diagnostics (pool shutdown, worker replacement) —
// never for the telemetry contract, which goes through an Emitter. It
// reads from the process-wide logger logging.ConfigureRuntime establishes,
// so callers that never configure logging still get zerolog's defaults.
func NewLogger() zerolog.Logger {
	return log.Logger.With().Str("component", "gorouteros").Logger()
}
