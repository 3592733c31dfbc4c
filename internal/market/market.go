package market

import "context"

// Quote is the normalized single-symbol quote shape. Monetary fields
// (Price, Change, MarketCap) are USD at this boundary; ChangePercent is
// dimensionless and Volume is a share count.
type Quote struct {
    Symbol        string  `json:"symbol"`
    Name          string  `json:"name,omitempty"`
    Price         float64 `json:"price"`
    Change        float64 `json:"change"`
    ChangePercent float64 `json:"changePercent"`
    Volume        int64   `json:"volume"`
    MarketCap     float64 `json:"marketCap,omitempty"`
}

// HistoryPoint is one daily OHLCV bar. Date is an ISO 8601 calendar day.
type HistoryPoint struct {
    Date   string  `json:"date"`
    Open   float64 `json:"open"`
    High   float64 `json:"high"`
    Low    float64 `json:"low"`
    Close  float64 `json:"close"`
    Volume int64   `json:"volume"`
}

// MarketIndex is a broad-market index level. Value/Change are
// USD-equivalent levels; ChangePercent is dimensionless.
type MarketIndex struct {
    ID            string  `json:"id"`
    Name          string  `json:"name"`
    Value         float64 `json:"value"`
    Change        float64 `json:"change"`
    ChangePercent float64 `json:"changePercent"`
}

// SearchResult is a symbol disambiguation hit. No monetary fields.
type SearchResult struct {
    Symbol   string `json:"symbol"`
    Name     string `json:"name"`
    Type     string `json:"type,omitempty"`
    Region   string `json:"region,omitempty"`
    Currency string `json:"currency,omitempty"`
}

// Source is the upstream market-data interface. Decorators (rate limiting,
// per-symbol caching) wrap it the same way providers are wrapped elsewhere.
type Source interface {
    Name() string
    Quote(ctx context.Context, symbol string) (Quote, error)
    Search(ctx context.Context, keywords string) ([]SearchResult, error)
    History(ctx context.Context, symbol string) ([]HistoryPoint, error)
}
