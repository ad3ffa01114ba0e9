// v1
// internal/circuitbreaker/breaker.go
// Package circuitbreaker fast-fails calls to an upstream that keeps
// failing. It is opt-in: a zero MaxFailures disables it entirely, keeping
// the update interval as the only retry mechanism.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// ErrOpen is returned instead of running the operation while the breaker is
// open and the reset timeout has not elapsed.
var ErrOpen = errors.New("circuit breaker is open; fast-fail")

type Config struct {
	// MaxFailures is the consecutive-failure count that opens the breaker.
	// Zero or negative disables the breaker.
	MaxFailures int
	// ResetTimeout is how long an open breaker waits before a half-open
	// probe is allowed.
	ResetTimeout time.Duration
}

func (c Config) Enabled() bool { return c.MaxFailures > 0 }

type Breaker struct {
	name string
	cfg  Config
	log  *slog.Logger

	mu          sync.Mutex
	state       State
	recentFails int
	openedAt    time.Time
}

func New(name string, cfg Config, log *slog.Logger) *Breaker {
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Breaker{name: name, cfg: cfg, log: log, state: Closed}
}

// Execute runs op under the breaker policy. Disabled breakers run op
// unconditionally.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if !b.cfg.Enabled() {
		return op(ctx)
	}

	b.mu.Lock()
	state := b.state
	openedAt := b.openedAt
	b.mu.Unlock()

	if state == Open {
		if time.Since(openedAt) < b.cfg.ResetTimeout {
			return ErrOpen
		}
		return b.halfOpenAttempt(ctx, op)
	}

	err := op(ctx)
	if err == nil {
		b.onSuccess()
		return nil
	}
	b.onFailure(err)
	return err
}

func (b *Breaker) halfOpenAttempt(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	b.state = HalfOpen
	b.mu.Unlock()
	b.log.Info("breaker probing", "name", b.name)

	if err := op(ctx); err != nil {
		b.mu.Lock()
		b.state = Open
		b.openedAt = time.Now()
		b.mu.Unlock()
		b.log.Warn("breaker probe failed, reopening", "name", b.name, "err", err)
		return err
	}

	b.mu.Lock()
	b.state = Closed
	b.recentFails = 0
	b.mu.Unlock()
	b.log.Info("breaker closed after probe", "name", b.name)
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	b.recentFails = 0
	b.state = Closed
	b.mu.Unlock()
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	b.recentFails++
	opened := false
	if b.recentFails >= b.cfg.MaxFailures && b.state == Closed {
		b.state = Open
		b.openedAt = time.Now()
		opened = true
	}
	fails := b.recentFails
	b.mu.Unlock()
	if opened {
		b.log.Warn("breaker opened", "name", b.name, "failures", fails, "err", err)
	}
}

// CurrentState reports the breaker state for observability.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
