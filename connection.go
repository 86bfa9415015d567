package gorouteros

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netwrk/gorouteros/internal/auth"
	"github.com/netwrk/gorouteros/internal/reply"
	"github.com/netwrk/gorouteros/internal/transport"
	"github.com/netwrk/gorouteros/internal/wire"
)

type connState int32

const (
	stateDisconnected connState = iota
	stateAuthenticated
	stateDead
)

// connection is a single authenticated socket that serializes commands.
// It is the unit a Pool checks out and checks in.
type connection struct {
	cfg     resolvedConfig
	conn    transport.Conn
	reader  io.Reader
	emitter Emitter
	state   atomic.Int32
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func dial(ctx context.Context, cfg resolvedConfig, emitter Emitter) (*connection, error) {
	emitter = emitterOrNoop(emitter)
	start := time.Now()
	emitter.Emit(Event{Name: EventConnectionStart, SystemTime: start, Host: cfg.host, Port: cfg.port, TLS: cfg.tls})

	dialer := transport.NewDialer(cfg.tls, cfg.dialTimeout, cfg.tlsOptions)
	dialCtx, cancel := context.WithTimeout(ctx, cfg.dialTimeout)
	defer cancel()

	sock, err := dialer.Dial(dialCtx, cfg.address())
	if err != nil {
		e := newError(KindConnectionFailed, err.Error(), nil)
		emitter.Emit(Event{Name: EventConnectionException, Duration: time.Since(start), Host: cfg.host, Port: cfg.port, Reason: e.Message})
		return nil, e
	}

	c := &connection{
		cfg:     cfg,
		conn:    sock,
		reader:  sock,
		emitter: emitter,
	}

	// The dial deadline also bounds the login exchange.
	if deadline, ok := dialCtx.Deadline(); ok {
		sock.SetDeadline(deadline)
	}
	if err := c.authenticate(); err != nil {
		sock.Close()
		emitter.Emit(Event{Name: EventConnectionException, Duration: time.Since(start), Host: cfg.host, Port: cfg.port, Reason: err.Error()})
		return nil, err
	}
	sock.SetDeadline(time.Time{})

	c.state.Store(int32(stateAuthenticated))
	return c, nil
}

func (c *connection) authenticate() error {
	if ok, err := c.tryPlainLogin(); err != nil {
		return err
	} else if ok {
		return nil
	}
	return c.tryMD5Login()
}

// tryPlainLogin attempts post-6.43 plain-text login. ok is true on
// success; a !trap (not !fatal) falls through to the MD5 challenge.
func (c *connection) tryPlainLogin() (ok bool, err error) {
	if err := c.writeSentence([]string{"/login", "=name=" + c.cfg.username, "=password=" + c.cfg.password}); err != nil {
		return false, newError(KindConnectionFailed, err.Error(), nil)
	}
	block, err := c.readBlock()
	if err != nil {
		return false, newError(KindConnectionFailed, err.Error(), nil)
	}
	switch reply.BlockStatus(block) {
	case reply.StatusDone:
		return true, nil
	case reply.StatusTrap:
		return false, nil
	case reply.StatusFatal:
		return false, newError(KindConnectionFailed, reply.FirstMessage(block), nil)
	default:
		return false, newError(KindProtocol, "unexpected login reply status", nil)
	}
}

func (c *connection) tryMD5Login() error {
	if err := c.writeSentence([]string{"/login"}); err != nil {
		return newError(KindConnectionFailed, err.Error(), nil)
	}
	block, err := c.readBlock()
	if err != nil {
		return newError(KindConnectionFailed, err.Error(), nil)
	}

	salt, err := auth.ExtractSalt(block)
	if err != nil {
		return newError(KindProtocol, err.Error(), nil)
	}
	if salt == "" {
		if reply.BlockStatus(block) == reply.StatusDone {
			return nil
		}
		return newError(KindAuthFailed, reply.FirstMessage(block), nil)
	}

	hash, err := auth.Hash(c.cfg.password, salt)
	if err != nil {
		return newError(KindProtocol, err.Error(), nil)
	}

	if err := c.writeSentence([]string{"/login", "=name=" + c.cfg.username, "=response=00" + hash}); err != nil {
		return newError(KindConnectionFailed, err.Error(), nil)
	}
	block, err = c.readBlock()
	if err != nil {
		return newError(KindConnectionFailed, err.Error(), nil)
	}
	switch reply.BlockStatus(block) {
	case reply.StatusDone:
		return nil
	case reply.StatusTrap:
		return newError(KindAuthFailed, reply.FirstMessage(block), nil)
	default:
		return newError(KindConnectionFailed, reply.FirstMessage(block), nil)
	}
}

func (c *connection) writeSentence(words []string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wire.WriteSentence(c.conn, words)
}

func (c *connection) readBlock() (reply.Block, error) {
	sentences, err := wire.ReadBlock(c.reader)
	if err != nil {
		return nil, err
	}
	return reply.Block(sentences), nil
}

func (c *connection) alive() bool {
	return connState(c.state.Load()) == stateAuthenticated
}

// kill marks the worker logically dead and closes its transport. Safe to
// call from any goroutine, any number of times.
func (c *connection) kill() {
	c.state.Store(int32(stateDead))
	c.closeTransport()
}

// closeTransport closes the underlying socket exactly once, regardless of
// how many times kill()/close() race to trigger it.
func (c *connection) closeTransport() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// execute runs exactly one command on this connection. At most one
// execute may be in flight at a time; callers relying on pool checkout
// already get this for free, but the mutex is a second line of defense.
func (c *connection) execute(ctx context.Context, words []string) (Reply, error) {
	if !c.alive() {
		return nil, newError(KindClosed, "connection is not usable", nil)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	start := time.Now()
	cmdName := commandName(words)
	c.emitter.Emit(Event{Name: EventCommandStart, SystemTime: start, Command: cmdName})

	done := make(chan struct{})
	var block reply.Block
	var runErr error
	go func() {
		defer close(done)
		if err := wire.WriteSentence(c.conn, words); err != nil {
			runErr = err
			return
		}
		sentences, err := wire.ReadBlock(c.reader)
		if err != nil {
			runErr = err
			return
		}
		block = reply.Block(sentences)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.kill()
		<-done
		err := newError(KindTimeout, ctx.Err().Error(), nil)
		c.emitter.Emit(Event{Name: EventCommandException, Duration: time.Since(start), Command: cmdName, Reason: err.Message})
		return nil, err
	}

	if runErr != nil {
		// A concurrent close() already swapped the state to dead before
		// this goroutine's write/read observed the severed socket; report
		// that race as closed rather than as a fresh connection failure.
		if !c.alive() {
			c.kill()
			err := newError(KindClosed, "connection was closed while a command was in flight", nil)
			c.emitter.Emit(Event{Name: EventCommandException, Duration: time.Since(start), Command: cmdName, Reason: err.Message})
			return nil, err
		}
		c.kill()
		kind := KindConnectionFailed
		if errors.Is(runErr, wire.ErrLengthOutOfRange) || errors.Is(runErr, wire.ErrWordTooLarge) || errors.Is(runErr, wire.ErrNoTerminator) {
			kind = KindProtocol
		}
		err := wrapKind(kind, runErr)
		c.emitter.Emit(Event{Name: EventCommandException, Duration: time.Since(start), Command: cmdName, Reason: err.Message})
		return nil, err
	}

	switch reply.BlockStatus(block) {
	case reply.StatusDone:
		result := reply.Result(block)
		out := make(Reply, len(result))
		for i, a := range result {
			out[i] = a
		}
		c.emitter.Emit(Event{Name: EventCommandStop, Duration: time.Since(start), Command: cmdName, ResultCount: len(out)})
		return out, nil
	case reply.StatusTrap:
		err := newError(KindTrap, reply.FirstMessage(block), nil)
		c.emitter.Emit(Event{Name: EventCommandException, Duration: time.Since(start), Command: cmdName, Reason: err.Message})
		return nil, err
	case reply.StatusFatal:
		c.kill()
		err := newError(KindFatal, reply.FirstMessage(block), nil)
		c.emitter.Emit(Event{Name: EventCommandException, Duration: time.Since(start), Command: cmdName, Reason: err.Message})
		return nil, err
	default:
		c.kill()
		err := newError(KindProtocol, "block ended without a recognized status", nil)
		c.emitter.Emit(Event{Name: EventCommandException, Duration: time.Since(start), Command: cmdName, Reason: err.Message})
		return nil, err
	}
}

func (c *connection) close() error {
	start := time.Now()
	prev := connState(c.state.Swap(int32(stateDead)))
	err := c.closeTransport()
	if prev != stateDead {
		c.emitter.Emit(Event{Name: EventConnectionStop, Duration: time.Since(start), Host: c.cfg.host, Port: c.cfg.port})
	}
	if err != nil {
		return wrapKind(KindClosed, err)
	}
	return nil
}

func commandName(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[0]
}
