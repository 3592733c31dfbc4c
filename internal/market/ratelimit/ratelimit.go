package ratelimit

import (
    "context"
    "sync"
    "time"

    "finsight/internal/market"
)

// TokenBucket provides a stdlib-only token bucket limiter.
// - rate: tokens per second
// - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
    rate     float64
    capacity float64

    mu     sync.Mutex
    tokens float64
    last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
    if tokensPerSecond <= 0 { tokensPerSecond = 0.0000001 }
    if burst <= 0 { burst = 1 }
    return &TokenBucket{
        rate:     tokensPerSecond,
        capacity: float64(burst),
        tokens:   float64(burst), // start full to allow an initial burst
        last:     time.Now(),
    }
}

// wait blocks until one token is available or context is canceled.
func (tb *TokenBucket) wait(ctx context.Context) error {
    for {
        tb.mu.Lock()
        now := time.Now()
        // Refill
        elapsed := now.Sub(tb.last).Seconds()
        if elapsed > 0 {
            tb.tokens += elapsed * tb.rate
            if tb.tokens > tb.capacity {
                tb.tokens = tb.capacity
            }
            tb.last = now
        }
        if tb.tokens >= 1 {
            tb.tokens -= 1
            tb.mu.Unlock()
            return nil
        }
        // Need to wait for the remaining fraction
        deficit := 1 - tb.tokens
        tb.mu.Unlock()
        // time needed to accumulate one token
        waitDur := time.Duration(deficit/tb.rate*1e9) * time.Nanosecond
        if waitDur <= 0 { waitDur = time.Millisecond }
        timer := time.NewTimer(waitDur)
        select {
        case <-ctx.Done():
            timer.Stop()
            return ctx.Err()
        case <-timer.C:
        }
    }
}

// Source wraps a market source and gates every upstream call using a
// token bucket. The upstream quote API enforces a per-minute quota, so a
// canceled wait surfaces as the call's error and the caller's fallback
// path takes over.
type Source struct {
    S  market.Source
    TB *TokenBucket
}

func (s *Source) Name() string { return s.S.Name() }

func (s *Source) Quote(ctx context.Context, symbol string) (market.Quote, error) {
    if s.TB != nil {
        if err := s.TB.wait(ctx); err != nil { return market.Quote{}, err }
    }
    return s.S.Quote(ctx, symbol)
}

func (s *Source) Search(ctx context.Context, keywords string) ([]market.SearchResult, error) {
    if s.TB != nil {
        if err := s.TB.wait(ctx); err != nil { return nil, err }
    }
    return s.S.Search(ctx, keywords)
}

func (s *Source) History(ctx context.Context, symbol string) ([]market.HistoryPoint, error) {
    if s.TB != nil {
        if err := s.TB.wait(ctx); err != nil { return nil, err }
    }
    return s.S.History(ctx, symbol)
}
