package chat

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pelusa-v/tidbid/internal/config"
)

// ChatBackend produces the counterparty's answer to a sent message. The
// returned channel yields zero or more stages and is closed when the
// backend is done or ctx is cancelled.
type ChatBackend interface {
	Send(ctx context.Context, threadID, text string) <-chan Reply
}

// SimulatedBackend answers with a canned response after a random delay.
type SimulatedBackend struct {
	mu  sync.RWMutex
	cfg config.ReplyConfig
	rnd *rand.Rand
}

type BackendOption func(*SimulatedBackend)

// WithRand fixes the random source, for deterministic tests.
func WithRand(r *rand.Rand) BackendOption {
	return func(b *SimulatedBackend) { b.rnd = r }
}

func NewSimulatedBackend(cfg config.ReplyConfig, opts ...BackendOption) *SimulatedBackend {
	b := &SimulatedBackend{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetConfig swaps the reply settings. Sends already in flight keep the
// settings they started with.
func (b *SimulatedBackend) SetConfig(cfg config.ReplyConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
}

func (b *SimulatedBackend) Config() config.ReplyConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

func (b *SimulatedBackend) int64n(n int64) int64 {
	if b.rnd != nil {
		return b.rnd.Int64N(n)
	}
	return rand.Int64N(n)
}

// plan picks the delay and the response up front.
func (b *SimulatedBackend) plan() (config.ReplyConfig, time.Duration, string) {
	// rand.Rand is not goroutine safe, so draw under the write lock.
	b.mu.Lock()
	defer b.mu.Unlock()

	cfg := b.cfg
	delay := cfg.MinDelay
	if span := cfg.MaxDelay - cfg.MinDelay; span > 0 {
		delay += time.Duration(b.int64n(int64(span) + 1))
	}
	text := ""
	if n := len(cfg.Responses); n > 0 {
		text = cfg.Responses[b.int64n(int64(n))]
	}
	return cfg, delay, text
}

func (b *SimulatedBackend) Send(ctx context.Context, threadID, text string) <-chan Reply {
	out := make(chan Reply, 2)
	cfg, delay, answer := b.plan()

	go func() {
		defer close(out)

		// The reply delay starts once the typing indicator is up.
		if cfg.TypingDelay > 0 {
			if !sleep(ctx, cfg.TypingDelay) {
				return
			}
			out <- Reply{Typing: true}
		}
		if !sleep(ctx, delay) {
			return
		}
		if answer != "" {
			out <- Reply{Text: answer}
		}
	}()
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
