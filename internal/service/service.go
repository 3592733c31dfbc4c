package service

import (
    "context"
    "sync"
    "time"

    "github.com/rs/zerolog"

    "finsight/internal/market"
    "finsight/internal/market/mockdata"
)

// IndexSpec names one of the fixed index tickers the Indices operation
// fans out to.
type IndexSpec struct {
    ID   string
    Name string
}

// DefaultIndices is the fixed index set: Dow, S&P 500, NASDAQ, Russell 2000.
func DefaultIndices() []IndexSpec {
    return []IndexSpec{
        {ID: "^DJI", Name: "Dow Jones Industrial Average"},
        {ID: "^GSPC", Name: "S&P 500"},
        {ID: "^IXIC", Name: "NASDAQ Composite"},
        {ID: "^RUT", Name: "Russell 2000"},
    }
}

// SearchPayload, QuotePayload, HistoryPayload and IndicesPayload are the
// proxy response bodies. Note is set only when the payload is synthetic.
type SearchPayload struct {
    Results []market.SearchResult `json:"results"`
    Note    string                `json:"note,omitempty"`
}

type QuotePayload struct {
    Quote market.Quote `json:"quote"`
    Note  string       `json:"note,omitempty"`
}

type HistoryPayload struct {
    History []market.HistoryPoint `json:"history"`
    Note    string                `json:"note,omitempty"`
}

type IndicesPayload struct {
    Indices []market.MarketIndex `json:"indices"`
    Note    string               `json:"note,omitempty"`
}

// MarketService normalizes access to the upstream source and guarantees
// every operation resolves to renderable data. Upstream failure is
// recovered by an explicit mock stage, never surfaced as an error.
type MarketService struct {
    src     market.Source
    indices []IndexSpec
    timeout time.Duration
    log     zerolog.Logger
}

type Config struct {
    Indices []IndexSpec
    // Timeout bounds each upstream call; past it the mock path is taken.
    Timeout time.Duration
    Log     zerolog.Logger
}

func NewMarketService(src market.Source, cfg Config) *MarketService {
    if len(cfg.Indices) == 0 { cfg.Indices = DefaultIndices() }
    if cfg.Timeout <= 0 { cfg.Timeout = 8 * time.Second }
    return &MarketService{
        src:     src,
        indices: cfg.Indices,
        timeout: cfg.Timeout,
        log:     cfg.Log.With().Str("component", "market").Logger(),
    }
}

// Search queries the upstream and falls back to the curated mock sets on
// any failure. The result set is never empty.
func (s *MarketService) Search(ctx context.Context, keywords string) SearchPayload {
    cctx, cancel := context.WithTimeout(ctx, s.timeout)
    defer cancel()

    results, err := s.src.Search(cctx, keywords)
    if err != nil {
        s.log.Warn().Err(err).Str("keywords", keywords).Msg("search fallback")
        return SearchPayload{Results: mockdata.Search(keywords), Note: mockdata.Note}
    }
    return SearchPayload{Results: results}
}

// Quote fetches one symbol, falling back to a deterministic synthetic
// quote whose base price is a pure function of the symbol.
func (s *MarketService) Quote(ctx context.Context, symbol string) QuotePayload {
    cctx, cancel := context.WithTimeout(ctx, s.timeout)
    defer cancel()

    q, err := s.src.Quote(cctx, symbol)
    if err != nil {
        s.log.Warn().Err(err).Str("symbol", symbol).Msg("quote fallback")
        return QuotePayload{Quote: mockdata.Quote(symbol), Note: mockdata.Note}
    }
    return QuotePayload{Quote: q}
}

// History fetches daily bars, falling back to a seeded synthetic walk.
func (s *MarketService) History(ctx context.Context, symbol string) HistoryPayload {
    cctx, cancel := context.WithTimeout(ctx, s.timeout)
    defer cancel()

    points, err := s.src.History(cctx, symbol)
    if err != nil {
        s.log.Warn().Err(err).Str("symbol", symbol).Msg("history fallback")
        return HistoryPayload{History: mockdata.History(symbol), Note: mockdata.Note}
    }
    return HistoryPayload{History: points}
}

// Indices fetches the fixed index set concurrently. One index failing
// does not fail the call: failures are dropped and the survivors are
// returned in the configured order. Only when every fetch fails does the
// full mock snapshot take over.
func (s *MarketService) Indices(ctx context.Context) IndicesPayload {
    cctx, cancel := context.WithTimeout(ctx, s.timeout)
    defer cancel()

    results := make([]*market.MarketIndex, len(s.indices))
    var wg sync.WaitGroup
    for i, spec := range s.indices {
        i, spec := i, spec
        wg.Add(1)
        go func() {
            defer wg.Done()
            q, err := s.src.Quote(cctx, spec.ID)
            if err != nil {
                s.log.Warn().Err(err).Str("index", spec.ID).Msg("index fetch failed")
                return
            }
            results[i] = &market.MarketIndex{
                ID:            spec.ID,
                Name:          spec.Name,
                Value:         q.Price,
                Change:        q.Change,
                ChangePercent: q.ChangePercent,
            }
        }()
    }
    wg.Wait()

    out := make([]market.MarketIndex, 0, len(results))
    for _, r := range results {
        if r != nil { out = append(out, *r) }
    }
    if len(out) == 0 {
        s.log.Warn().Msg("all index fetches failed, using snapshot")
        return IndicesPayload{Indices: mockdata.Indices(), Note: mockdata.Note}
    }
    return IndicesPayload{Indices: out}
}
