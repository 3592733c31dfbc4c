package quotecache

import (
    "context"
    "sync"
    "time"

    "finsight/internal/market"
)

// entry stores one cached quote with expiry.
type entry struct {
    expiresAt time.Time
    quote     market.Quote
}

// Source caches per-symbol quotes for a TTL in front of another source.
// Only genuine upstream quotes land here; the mock fallback never passes
// through this layer, so a degraded window cannot pin synthetic data.
// Search and History pass through uncached.
type Source struct {
    S        market.Source
    TTL      time.Duration
    MaxItems int

    mu    sync.RWMutex
    items map[string]entry // key: symbol
}

func (c *Source) Name() string { return c.S.Name() }

// Quote returns a cached quote when valid, otherwise fetches and stores.
func (c *Source) Quote(ctx context.Context, symbol string) (market.Quote, error) {
    if c.S == nil || c.TTL <= 0 {
        return c.S.Quote(ctx, symbol)
    }

    now := time.Now()
    c.mu.RLock()
    e, ok := c.items[symbol]
    c.mu.RUnlock()
    if ok && now.Before(e.expiresAt) {
        return e.quote, nil
    }

    q, err := c.S.Quote(ctx, symbol)
    if err != nil {
        // Serve the stale entry rather than failing if we still have one
        if ok {
            return e.quote, nil
        }
        return market.Quote{}, err
    }

    c.mu.Lock()
    if c.items == nil { c.items = make(map[string]entry) }
    c.items[symbol] = entry{expiresAt: now.Add(c.TTL), quote: q}
    // best-effort cap cache size: evict expired first, then arbitrary
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        for k, v := range c.items {
            if time.Now().After(v.expiresAt) {
                delete(c.items, k)
            }
            if len(c.items) <= c.MaxItems { break }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { break }
            delete(c.items, k)
        }
    }
    c.mu.Unlock()
    return q, nil
}

func (c *Source) Search(ctx context.Context, keywords string) ([]market.SearchResult, error) {
    return c.S.Search(ctx, keywords)
}

func (c *Source) History(ctx context.Context, symbol string) ([]market.HistoryPoint, error) {
    return c.S.History(ctx, symbol)
}
