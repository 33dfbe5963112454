// Package ratelimiter provides a token-bucket limiter used to keep model API
// calls within per-minute request and token budgets.
package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	DefaultBucketSize = 10
	DefaultRefillRate = time.Second
)

// ErrRateLimiterStopped is returned by Wait after Stop has been called.
var ErrRateLimiterStopped = errors.New("rate limiter stopped")

// TokenBucket refills one token per tick up to its capacity.
type TokenBucket struct {
	bucketSize int
	refillRate time.Duration
	tokens     chan struct{}
	ticker     *time.Ticker
	stopCh     chan struct{}
	mu         sync.RWMutex
	stopped    bool
}

// NewTokenBucket creates a full bucket and starts its refill goroutine.
// Non-positive arguments fall back to the defaults.
func NewTokenBucket(bucketSize int, refillRate time.Duration) *TokenBucket {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	if refillRate <= 0 {
		refillRate = DefaultRefillRate
	}

	tb := &TokenBucket{
		bucketSize: bucketSize,
		refillRate: refillRate,
		tokens:     make(chan struct{}, bucketSize),
		ticker:     time.NewTicker(refillRate),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < bucketSize; i++ {
		tb.tokens <- struct{}{}
	}

	go tb.refill()

	return tb
}

func (tb *TokenBucket) refill() {
	for {
		select {
		case <-tb.ticker.C:
			select {
			case tb.tokens <- struct{}{}:
			default:
				// Bucket full, drop the token.
			}
		case <-tb.stopCh:
			return
		}
	}
}

// Allow takes a token without blocking, reporting whether one was available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.RLock()
	if tb.stopped {
		tb.mu.RUnlock()
		return false
	}
	tb.mu.RUnlock()

	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	tb.mu.RLock()
	if tb.stopped {
		tb.mu.RUnlock()
		return ErrRateLimiterStopped
	}
	tb.mu.RUnlock()

	select {
	case <-tb.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop halts refilling. Stop is idempotent.
func (tb *TokenBucket) Stop() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.stopped {
		return
	}

	tb.stopped = true
	tb.ticker.Stop()
	close(tb.stopCh)
}

// AvailableTokens returns the number of tokens currently in the bucket.
func (tb *TokenBucket) AvailableTokens() int {
	return len(tb.tokens)
}

// BucketSize returns the bucket capacity.
func (tb *TokenBucket) BucketSize() int {
	return tb.bucketSize
}

// RefillRate returns the interval between refills.
func (tb *TokenBucket) RefillRate() time.Duration {
	return tb.refillRate
}
