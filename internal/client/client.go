// Package client is the consumer-side façade over the market-data proxy.
// It is the only place monetary figures are converted out of USD: every
// payload is stored in USD and multiplied by the current exchange rate
// exactly once, on the way out to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"finsight/internal/fx"
	"finsight/internal/httpx"
	"finsight/internal/market"
	"finsight/internal/service"
)

// RateSource supplies the USD->target multiplier. Implementations degrade
// internally; a returned error means the transport itself failed.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Client calls the proxy endpoints and converts monetary fields for
// display. Indices are memoized with a staleness window and retried a few
// times before the call is reported as failed.
type Client struct {
	baseURL  string
	hc       *httpx.Client
	rates    RateSource
	currency string
	retries  int
	stale    time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu     sync.Mutex
	idxAt  time.Time
	idxUSD []market.MarketIndex // always USD; converted on read
}

// Option configures a Client.
type Option func(*Client)

// WithCurrency sets the display currency (default INR).
func WithCurrency(code string) Option {
	return func(c *Client) { c.currency = code }
}

// WithRateSource overrides the exchange-rate lookup.
func WithRateSource(rs RateSource) Option {
	return func(c *Client) { c.rates = rs }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *httpx.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "client").Logger() }
}

// WithClock injects the time source, for staleness tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithStaleAfter sets the indices staleness window (default 5 minutes).
func WithStaleAfter(d time.Duration) Option {
	return func(c *Client) { c.stale = d }
}

// WithRetries sets the indices retry budget (default 3 attempts).
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// New builds a client for the proxy at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		hc:       httpx.New(10 * time.Second),
		currency: "INR",
		retries:  3,
		stale:    5 * time.Minute,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	if c.rates == nil {
		c.rates = &ProxyRates{BaseURL: baseURL, Client: c.hc}
	}
	return c
}

type marketRequest struct {
	Action   string `json:"action"`
	Keywords string `json:"keywords,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
}

// post sends one market request and decodes the payload into out.
func (c *Client) post(ctx context.Context, reqBody marketRequest, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/market", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market %s: status %d", reqBody.Action, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("market %s: decode: %w", reqBody.Action, err)
	}
	return nil
}

// rate resolves the USD->display multiplier. The rate source degrades
// internally, so a failure here is transport-level; the hardcoded default
// keeps the display usable.
func (c *Client) rate(ctx context.Context) float64 {
	r, err := c.rates.Rate(ctx, "USD", c.currency)
	if err != nil || r <= 0 {
		c.log.Warn().Err(err).Str("currency", c.currency).Msg("rate lookup failed, using default")
		return fx.DefaultRate
	}
	return r
}

// SearchStocks passes through to the proxy. No monetary fields, so no
// conversion.
func (c *Client) SearchStocks(ctx context.Context, keywords string) ([]market.SearchResult, error) {
	var payload service.SearchPayload
	if err := c.post(ctx, marketRequest{Action: "search", Keywords: keywords}, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// GetStockQuote fetches one quote and converts price, change and market
// cap to the display currency. ChangePercent and volume pass through
// untouched.
func (c *Client) GetStockQuote(ctx context.Context, symbol string) (*market.Quote, error) {
	var payload service.QuotePayload
	if err := c.post(ctx, marketRequest{Action: "quote", Symbol: symbol}, &payload); err != nil {
		return nil, err
	}
	q := convertQuote(payload.Quote, c.rate(ctx))
	return &q, nil
}

// GetStockHistory fetches daily bars with OHLC converted; volume is a
// share count and passes through.
func (c *Client) GetStockHistory(ctx context.Context, symbol string) ([]market.HistoryPoint, error) {
	var payload service.HistoryPayload
	if err := c.post(ctx, marketRequest{Action: "history", Symbol: symbol}, &payload); err != nil {
		return nil, err
	}
	rate := c.rate(ctx)
	out := make([]market.HistoryPoint, len(payload.History))
	for i, p := range payload.History {
		out[i] = convertHistoryPoint(p, rate)
	}
	return out, nil
}

// MarketIndices returns the index levels converted to the display
// currency. The USD snapshot is cached for the staleness window and the
// fetch is retried up to the retry budget.
func (c *Client) MarketIndices(ctx context.Context) ([]market.MarketIndex, error) {
	c.mu.Lock()
	fresh := c.idxUSD != nil && c.now().Sub(c.idxAt) < c.stale
	snapshot := c.idxUSD
	c.mu.Unlock()

	if !fresh {
		var err error
		snapshot, err = c.fetchIndices(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.idxUSD = snapshot
		c.idxAt = c.now()
		c.mu.Unlock()
	}

	rate := c.rate(ctx)
	out := make([]market.MarketIndex, len(snapshot))
	for i, ix := range snapshot {
		out[i] = convertIndex(ix, rate)
	}
	return out, nil
}

// StartIndicesRefresh re-fetches the index snapshot on an interval until
// ctx is canceled, keeping MarketIndices reads warm.
func (c *Client) StartIndicesRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snapshot, err := c.fetchIndices(ctx)
				if err != nil {
					c.log.Warn().Err(err).Msg("indices refresh failed")
					continue
				}
				c.mu.Lock()
				c.idxUSD = snapshot
				c.idxAt = c.now()
				c.mu.Unlock()
			}
		}
	}()
}

func (c *Client) fetchIndices(ctx context.Context) ([]market.MarketIndex, error) {
	attempts := c.retries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		var payload service.IndicesPayload
		if err := c.post(ctx, marketRequest{Action: "indices"}, &payload); err != nil {
			lastErr = err
			continue
		}
		return payload.Indices, nil
	}
	return nil, fmt.Errorf("indices: %w", lastErr)
}

// convertQuote multiplies the monetary fields only. The input is USD from
// the proxy; the output is display currency. Applied exactly once.
func convertQuote(q market.Quote, rate float64) market.Quote {
	q.Price *= rate
	q.Change *= rate
	if q.MarketCap != 0 {
		q.MarketCap *= rate
	}
	return q
}

func convertHistoryPoint(p market.HistoryPoint, rate float64) market.HistoryPoint {
	p.Open *= rate
	p.High *= rate
	p.Low *= rate
	p.Close *= rate
	return p
}

func convertIndex(ix market.MarketIndex, rate float64) market.MarketIndex {
	ix.Value *= rate
	ix.Change *= rate
	return ix
}
