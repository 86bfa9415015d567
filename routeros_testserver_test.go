package gorouteros

import (
	"net"
	"testing"

	"github.com/netwrk/gorouteros/internal/testutil/testlog"
	"github.com/netwrk/gorouteros/internal/wire"
)

// fakeRouter runs a minimal scripted RouterOS peer over one end of a
// net.Pipe, driven by a sequence of steps. Each step reads one sentence
// from the client and writes the given reply sentences.
type fakeRouterStep struct {
	reply [][]string
}

func runFakeRouter(server net.Conn, steps []fakeRouterStep, onExtra func(words []string) [][]string) {
	defer server.Close()
	for _, step := range steps {
		if _, err := wire.ReadSentence(server); err != nil {
			return
		}
		for _, sentence := range step.reply {
			if err := wire.WriteSentence(server, sentence); err != nil {
				return
			}
		}
	}
	if onExtra == nil {
		return
	}
	for {
		words, err := wire.ReadSentence(server)
		if err != nil {
			return
		}
		for _, sentence := range onExtra(words) {
			if err := wire.WriteSentence(server, sentence); err != nil {
				return
			}
		}
	}
}

func newPipeConnection(t *testing.T, emitter Emitter) (*connection, net.Conn) {
	testlog.Start(t)
	client, server := net.Pipe()
	c := &connection{
		cfg:     resolvedConfig{host: "test", port: 0},
		conn:    client,
		reader:  wire.BufferedReader(client),
		emitter: emitterOrNoop(emitter),
	}
	c.state.Store(int32(stateAuthenticated))
	return c, server
}
