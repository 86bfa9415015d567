// Package gorouteros is a client library for the MikroTik RouterOS binary
// management API: wire codec, login state machine, reply parsing, and a
// connection pool.
package gorouteros

import (
	"context"
)

// Client is a single authenticated RouterOS connection.
type Client struct {
	conn *connection
}

// Connect dials a single connection, choosing plain or TLS per cfg.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	resolved, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	c, err := dial(ctx, resolved, NoopEmitter{})
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

// ConnectPlain dials a single connection, forcing plain TCP regardless of
// cfg.TLS. cfg.Port is left untouched: a caller asking for plain transport
// on 8729 gets exactly that.
func ConnectPlain(ctx context.Context, cfg Config) (*Client, error) {
	no := false
	cfg.TLS = &no
	return Connect(ctx, cfg)
}

// ConnectTLS dials a single connection, forcing TLS regardless of cfg.Port.
func ConnectTLS(ctx context.Context, cfg Config) (*Client, error) {
	yes := true
	cfg.TLS = &yes
	return Connect(ctx, cfg)
}

// Close tears the connection down. Idempotent.
func (cl *Client) Close() error {
	return cl.conn.close()
}

// Command runs one command and returns its parsed reply.
func (cl *Client) Command(ctx context.Context, words ...string) (Reply, error) {
	return cl.conn.execute(ctx, words)
}

// MustCommand is Command's panicking variant: same error kinds, raised as
// a panic instead of returned.
func (cl *Client) MustCommand(ctx context.Context, words ...string) Reply {
	r, err := cl.Command(ctx, words...)
	if err != nil {
		panic(err)
	}
	return r
}
