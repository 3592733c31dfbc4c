package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finsight/internal/fx"
	"finsight/internal/market"
	"finsight/internal/service"
)

// fixedRate is a RateSource with a constant multiplier.
type fixedRate float64

func (f fixedRate) Rate(_ context.Context, _, _ string) (float64, error) {
	return float64(f), nil
}

// failingRate always fails at the transport level.
type failingRate struct{}

func (failingRate) Rate(_ context.Context, _, _ string) (float64, error) {
	return 0, context.DeadlineExceeded
}

func proxyStub(t *testing.T, indicesCalls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action   string `json:"action"`
			Keywords string `json:"keywords"`
			Symbol   string `json:"symbol"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		switch req.Action {
		case "quote":
			_ = json.NewEncoder(w).Encode(service.QuotePayload{
				Quote: market.Quote{Symbol: req.Symbol, Price: 100, Change: 2, ChangePercent: 2.0, Volume: 5000, MarketCap: 1e9},
			})
		case "history":
			_ = json.NewEncoder(w).Encode(service.HistoryPayload{
				History: []market.HistoryPoint{
					{Date: "2026-08-26", Open: 10, High: 12, Low: 9, Close: 11, Volume: 777},
				},
			})
		case "search":
			_ = json.NewEncoder(w).Encode(service.SearchPayload{
				Results: []market.SearchResult{{Symbol: "AAPL", Name: "Apple Inc."}},
			})
		case "indices":
			if indicesCalls != nil {
				indicesCalls.Add(1)
			}
			_ = json.NewEncoder(w).Encode(service.IndicesPayload{
				Indices: []market.MarketIndex{{ID: "^GSPC", Name: "S&P 500", Value: 5000, Change: 10, ChangePercent: 0.2}},
			})
		default:
			http.Error(w, "bad action", http.StatusBadRequest)
		}
	}))
}

func TestGetStockQuote_ConvertsMonetaryFieldsExactlyOnce(t *testing.T) {
	srv := proxyStub(t, nil)
	defer srv.Close()

	c := New(srv.URL, WithRateSource(fixedRate(83.5)))
	q, err := c.GetStockQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.InDelta(t, 8350, q.Price, 1e-9)
	require.InDelta(t, 167, q.Change, 1e-9)
	require.Equal(t, 2.0, q.ChangePercent, "dimensionless fields must never convert")
	require.Equal(t, int64(5000), q.Volume)
	require.InDelta(t, 83.5e9, q.MarketCap, 1)
}

func TestGetStockHistory_ConvertsOHLCOnly(t *testing.T) {
	srv := proxyStub(t, nil)
	defer srv.Close()

	c := New(srv.URL, WithRateSource(fixedRate(2)))
	points, err := c.GetStockHistory(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, points, 1)
	p := points[0]
	require.Equal(t, 20.0, p.Open)
	require.Equal(t, 24.0, p.High)
	require.Equal(t, 18.0, p.Low)
	require.Equal(t, 22.0, p.Close)
	require.Equal(t, int64(777), p.Volume, "volume must never convert")
}

func TestSearchStocks_NoConversion(t *testing.T) {
	srv := proxyStub(t, nil)
	defer srv.Close()

	c := New(srv.URL, WithRateSource(fixedRate(83.5)))
	results, err := c.SearchStocks(context.Background(), "tech")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "AAPL", results[0].Symbol)
}

func TestMarketIndices_StalenessWindow(t *testing.T) {
	var calls atomic.Int64
	srv := proxyStub(t, &calls)
	defer srv.Close()

	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	c := New(srv.URL,
		WithRateSource(fixedRate(2)),
		WithClock(func() time.Time { return now }),
	)

	first, err := c.MarketIndices(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10000.0, first[0].Value)
	require.Equal(t, 0.2, first[0].ChangePercent)
	require.EqualValues(t, 1, calls.Load())

	// inside the window: served from the cached USD snapshot
	now = now.Add(4 * time.Minute)
	_, err = c.MarketIndices(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	// past the window: refetched
	now = now.Add(2 * time.Minute)
	_, err = c.MarketIndices(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestMarketIndices_RateChangeRebasesFromUSD(t *testing.T) {
	srv := proxyStub(t, nil)
	defer srv.Close()

	var rate atomic.Value
	rate.Store(2.0)
	c := New(srv.URL, WithRateSource(rateFunc(func() float64 {
		return rate.Load().(float64)
	})))

	first, err := c.MarketIndices(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10000.0, first[0].Value)

	// a new rate applies to the stored USD values, not to the previous
	// converted output (no compounding)
	rate.Store(3.0)
	second, err := c.MarketIndices(context.Background())
	require.NoError(t, err)
	require.Equal(t, 15000.0, second[0].Value)
}

type rateFunc func() float64

func (f rateFunc) Rate(_ context.Context, _, _ string) (float64, error) {
	return f(), nil
}

func TestMarketIndices_RetriesThenFails(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRateSource(fixedRate(1)))
	_, err := c.MarketIndices(context.Background())
	require.Error(t, err)
	require.EqualValues(t, 3, attempts.Load(), "up to 3 attempts")
}

func TestRateTransportFailureFallsBackToDefault(t *testing.T) {
	srv := proxyStub(t, nil)
	defer srv.Close()

	c := New(srv.URL, WithRateSource(failingRate{}))
	q, err := c.GetStockQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.InDelta(t, 100*fx.DefaultRate, q.Price, 1e-6)
}

func TestProxyRates_EndToEndDecoding(t *testing.T) {
	var gotFrom atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/exchange" {
			http.NotFound(w, r)
			return
		}
		var req exchangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFrom.Store(req.From)
		_ = json.NewEncoder(w).Encode(exchangeResponse{Rate: 83.5, Source: "cache"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	rate, err := c.rates.Rate(context.Background(), "USD", "INR")
	require.NoError(t, err)
	require.Equal(t, 83.5, rate)
	require.Equal(t, "USD", gotFrom.Load())
}
