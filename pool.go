package gorouteros

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/netwrk/gorouteros/internal/logging"
	"github.com/netwrk/gorouteros/internal/observability"
)

var ErrPoolStopped = newError(KindClosed, "pool is stopped", nil)

// Pool supervises a fixed-size set of connection workers with
// checkout/checkin semantics. At any time |idle|+|checked_out| <= size.
type Pool struct {
	cfg     resolvedConfig
	emitter Emitter
	name    string
	size    int
	logger  zerolog.Logger

	mu      sync.Mutex
	idle    []*connection
	busy    int
	waiters []chan checkoutResult
	stopped bool
}

type checkoutResult struct {
	conn *connection
	err  error
}

// StartPool validates cfg and returns a pool that dials workers lazily.
func StartPool(cfg Config, opts ...PoolOption) (*Pool, error) {
	resolved, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	logging.ConfigureRuntime()
	p := &Pool{cfg: resolved, emitter: NoopEmitter{}, size: resolved.poolSize, logger: observability.NewLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PoolOption configures optional Pool behavior at construction time.
type PoolOption func(*Pool)

// WithEmitter attaches a telemetry Emitter to every connection the pool
// dials.
func WithEmitter(e Emitter) PoolOption {
	return func(p *Pool) { p.emitter = emitterOrNoop(e) }
}

// WithName labels the pool's telemetry events and lifecycle log lines.
// Useful when a process runs more than one pool.
func WithName(name string) PoolOption {
	return func(p *Pool) { p.name = name }
}

// Checkout hands the caller an exclusive connection worker, dialing a new
// one or waiting in FIFO order if the pool is saturated.
func (p *Pool) Checkout(ctx context.Context) (*connection, error) {
	return p.checkout(ctx, "")
}

func (p *Pool) checkout(ctx context.Context, command string) (*connection, error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil, ErrPoolStopped
	}

	for len(p.idle) > 0 {
		c := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if c.alive() {
			p.busy++
			p.mu.Unlock()
			p.emitter.Emit(Event{Name: EventPoolCheckout, SystemTime: time.Now(), Pool: p.name, Command: command})
			return c, nil
		}
		// dead worker found idle: its slot is simply dropped, freeing
		// capacity for a fresh dial below.
		p.logger.Debug().Str("pool", p.name).Msg("dropping dead idle worker")
	}

	if p.busy < p.size {
		p.busy++
		p.mu.Unlock()
		c, err := dial(ctx, p.cfg, p.emitter)
		if err != nil {
			p.mu.Lock()
			p.busy--
			p.mu.Unlock()
			return nil, err
		}
		p.emitter.Emit(Event{Name: EventPoolCheckout, SystemTime: time.Now(), Pool: p.name, Command: command})
		return c, nil
	}

	ch := make(chan checkoutResult, 1)
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	select {
	case res := <-ch:
		if res.err == nil {
			p.emitter.Emit(Event{Name: EventPoolCheckout, SystemTime: time.Now(), Pool: p.name, Command: command})
		}
		return res.conn, res.err
	case <-ctx.Done():
		return nil, newError(KindTimeout, ctx.Err().Error(), nil)
	}
}

// Checkin returns a worker to the pool. A dead worker is discarded and its
// slot freed for lazy replacement at the next checkout.
func (p *Pool) Checkin(c *connection, checkedOutAt time.Time) {
	p.checkin(c, checkedOutAt, "")
}

func (p *Pool) checkin(c *connection, checkedOutAt time.Time, command string) {
	p.mu.Lock()
	p.busy--

	if c.alive() && !p.stopped {
		if ch := p.nextWaiterLocked(); ch != nil {
			p.busy++
			p.mu.Unlock()
			ch <- checkoutResult{conn: c}
			p.emitter.Emit(Event{Name: EventPoolCheckin, Duration: time.Since(checkedOutAt), Pool: p.name, Command: command})
			return
		}
		p.idle = append(p.idle, c)
		p.mu.Unlock()
		p.emitter.Emit(Event{Name: EventPoolCheckin, Duration: time.Since(checkedOutAt), Pool: p.name, Command: command})
		return
	}

	ch := p.nextWaiterLocked()
	if ch != nil {
		p.busy++
	}
	p.mu.Unlock()
	c.close()
	p.emitter.Emit(Event{Name: EventPoolCheckin, Duration: time.Since(checkedOutAt), Pool: p.name, Command: command})

	if ch == nil {
		return
	}
	p.logger.Debug().Str("pool", p.name).Msg("replacing dead worker for a waiting checkout")
	newConn, err := dial(context.Background(), p.cfg, p.emitter)
	if err != nil {
		p.mu.Lock()
		p.busy--
		p.mu.Unlock()
	}
	ch <- checkoutResult{conn: newConn, err: err}
}

// nextWaiterLocked pops the head waiter, if any. Must be called with p.mu
// held.
func (p *Pool) nextWaiterLocked() chan checkoutResult {
	if len(p.waiters) == 0 {
		return nil
	}
	ch := p.waiters[0]
	p.waiters = p.waiters[1:]
	return ch
}

// WithConnection checks out a worker, runs fn exactly once, and checks the
// worker back in regardless of outcome. If fn panics, the worker is marked
// dead, checked in, and the panic is re-raised once checkin bookkeeping
// completes.
func (p *Pool) WithConnection(ctx context.Context, fn func(*connection) error) error {
	c, err := p.Checkout(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.kill()
			p.Checkin(c, start)
			panic(r)
		}
	}()
	result := fn(c)
	p.Checkin(c, start)
	return result
}

// Command dispatches one command to a checked-out worker. The pool.checkout
// and pool.checkin telemetry events carry the command name being dispatched.
func (p *Pool) Command(ctx context.Context, words ...string) (Reply, error) {
	cmd := commandName(words)
	c, err := p.checkout(ctx, cmd)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := c.execute(ctx, words)
	p.checkin(c, start, cmd)
	return result, err
}

// MustCommand is Command's panicking variant.
func (p *Pool) MustCommand(ctx context.Context, words ...string) Reply {
	r, err := p.Command(ctx, words...)
	if err != nil {
		panic(err)
	}
	return r
}

// Stop closes every worker concurrently and rejects further checkouts.
func (p *Pool) Stop() error {
	p.mu.Lock()
	p.stopped = true
	idle := p.idle
	p.idle = nil
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	p.logger.Info().Str("pool", p.name).Int("idle", len(idle)).Int("waiters", len(waiters)).Msg("pool stopped")

	for _, w := range waiters {
		w <- checkoutResult{err: ErrPoolStopped}
	}

	g := new(errgroup.Group)
	for _, c := range idle {
		c := c
		g.Go(func() error {
			return c.close()
		})
	}
	return g.Wait()
}
