package quotecache

import (
    "context"
    "errors"
    "testing"
    "time"

    "finsight/internal/market"
)

type countingSource struct {
    calls int
    fail  bool
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Quote(_ context.Context, symbol string) (market.Quote, error) {
    c.calls++
    if c.fail {
        return market.Quote{}, errors.New("upstream down")
    }
    return market.Quote{Symbol: symbol, Price: float64(100 + c.calls)}, nil
}

func (c *countingSource) Search(_ context.Context, _ string) ([]market.SearchResult, error) {
    return nil, nil
}

func (c *countingSource) History(_ context.Context, _ string) ([]market.HistoryPoint, error) {
    return nil, nil
}

func TestQuote_CachedWithinTTL(t *testing.T) {
    src := &countingSource{}
    c := &Source{S: src, TTL: time.Minute}

    a, err := c.Quote(context.Background(), "AAPL")
    if err != nil { t.Fatal(err) }
    b, err := c.Quote(context.Background(), "AAPL")
    if err != nil { t.Fatal(err) }
    if src.calls != 1 {
        t.Fatalf("want 1 upstream call, got %d", src.calls)
    }
    if a.Price != b.Price {
        t.Fatalf("cached quote changed: %v vs %v", a.Price, b.Price)
    }
}

func TestQuote_DistinctSymbolsCachedSeparately(t *testing.T) {
    src := &countingSource{}
    c := &Source{S: src, TTL: time.Minute}

    _, _ = c.Quote(context.Background(), "AAPL")
    _, _ = c.Quote(context.Background(), "MSFT")
    if src.calls != 2 {
        t.Fatalf("want 2 upstream calls, got %d", src.calls)
    }
}

func TestQuote_StaleServedOnUpstreamFailure(t *testing.T) {
    src := &countingSource{}
    c := &Source{S: src, TTL: time.Nanosecond}

    first, err := c.Quote(context.Background(), "AAPL")
    if err != nil { t.Fatal(err) }

    time.Sleep(time.Millisecond) // let the entry expire
    src.fail = true
    stale, err := c.Quote(context.Background(), "AAPL")
    if err != nil {
        t.Fatalf("expired entry should be served on failure, got %v", err)
    }
    if stale.Price != first.Price {
        t.Fatalf("want stale quote %v, got %v", first.Price, stale.Price)
    }
}

func TestQuote_ZeroTTLPassesThrough(t *testing.T) {
    src := &countingSource{}
    c := &Source{S: src}

    _, _ = c.Quote(context.Background(), "AAPL")
    _, _ = c.Quote(context.Background(), "AAPL")
    if src.calls != 2 {
        t.Fatalf("want uncached pass-through, got %d calls", src.calls)
    }
}
