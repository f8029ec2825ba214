package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrMaxAttemptsExceeded = errors.New("nonce search exhausted its attempt budget")

// ctxCheckInterval is how many nonces a search tries between context checks.
const ctxCheckInterval = 4096

const notFound = math.MaxUint64

type Miner struct {
	maxAttempts uint64
	workers     int
}

type MinerOption func(*Miner)

// WithMaxAttempts limits the search to nonces [0, n). Zero means unbounded.
func WithMaxAttempts(n uint64) MinerOption {
	return func(m *Miner) {
		m.maxAttempts = n
	}
}

// WithWorkers stripes the nonce space over n goroutines. Values below 2 keep
// the search sequential.
func WithWorkers(n int) MinerOption {
	return func(m *Miner) {
		m.workers = n
	}
}

func NewMiner(opts ...MinerOption) *Miner {
	m := &Miner{workers: 1}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Miner) MaxAttempts() uint64 { return m.maxAttempts }
func (m *Miner) Workers() int { return m.workers }

// Mine seals b with the lowest nonce whose hash meets b's difficulty, scanning
// from zero. On failure b is left with a hash that matches its fields.
func (m *Miner) Mine(ctx context.Context, b *Block) error {
	start := time.Now()

	var err error
	if m.workers > 1 {
		err = m.mineParallel(ctx, b)
	} else {
		err = m.mineSequential(ctx, b)
	}
	if err != nil {
		return fmt.Errorf("mining block %d: %w", b.index, err)
	}

	log.Infof("Block %d mined with nonce %d in %s", b.index, b.nonce, time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Miner) mineSequential(ctx context.Context, b *Block) error {
	for nonce := uint64(0); ; nonce++ {
		if m.maxAttempts > 0 && nonce >= m.maxAttempts {
			return fmt.Errorf("%w: %d attempts", ErrMaxAttemptsExceeded, m.maxAttempts)
		}
		if nonce%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		b.setNonce(nonce)
		if b.IsSealed() {
			return nil
		}
	}
}

// mineParallel gives worker w the nonces w, w+n, w+2n, ... A worker quits once
// its next nonce is not below the best found so far, so every nonce under the
// final best has been tried and the result equals the sequential one.
func (m *Miner) mineParallel(ctx context.Context, b *Block) error {
	var best atomic.Uint64
	best.Store(notFound)

	prefix := b.hashPrefix()
	stride := uint64(m.workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < m.workers; w++ {
		g.Go(func() error {
			for nonce, i := uint64(w), 0; ; nonce, i = nonce+stride, i+1 {
				if nonce >= best.Load() {
					return nil
				}
				if m.maxAttempts > 0 && nonce >= m.maxAttempts {
					return nil
				}
				if i%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}

				if hasLeadingZeros(hashHex(prefix+formatNonce(nonce)), b.difficulty) {
					lowerTo(&best, nonce)
					return nil
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	found := best.Load()
	if found == notFound {
		return fmt.Errorf("%w: %d attempts", ErrMaxAttemptsExceeded, m.maxAttempts)
	}
	b.setNonce(found)
	return nil
}

func lowerTo(best *atomic.Uint64, nonce uint64) {
	for {
		cur := best.Load()
		if nonce >= cur || best.CompareAndSwap(cur, nonce) {
			return
		}
	}
}
