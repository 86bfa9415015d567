// Package testlog wires the test logging profile into package tests that
// want diagnostic output instead of the default silence.
package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/netwrk/gorouteros/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Debug().Str("test", t.Name()).Msg("starting")
}
