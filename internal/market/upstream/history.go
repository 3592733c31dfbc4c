package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"finsight/internal/market"
)

// chartResponse mirrors the upstream daily-bars envelope. All series use
// pointer elements: the upstream emits explicit nulls for halted days.
type chartResponse struct {
	Chart *struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// History fetches about a year of daily OHLCV bars for symbol.
// Points with a null open or close are dropped rather than zero-filled.
func (c *Client) History(ctx context.Context, symbol string) ([]market.HistoryPoint, error) {
	const op = "history"
	body, err := c.get(ctx, op, "/v8/finance/chart/"+url.PathEscape(symbol), url.Values{
		"range":    []string{"1y"},
		"interval": []string{"1d"},
	})
	if err != nil {
		return nil, err
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, shapeErr(op, "decode: %w", err)
	}
	if payload.Chart == nil || len(payload.Chart.Result) == 0 {
		return nil, shapeErr(op, "no chart result for %q", symbol)
	}
	res := payload.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, shapeErr(op, "no quote indicators for %q", symbol)
	}
	series := res.Indicators.Quote[0]
	if len(res.Timestamp) == 0 || len(series.Close) != len(res.Timestamp) {
		return nil, shapeErr(op, "timestamp/close length mismatch for %q", symbol)
	}

	at := func(s []*float64, i int) *float64 {
		if i < len(s) {
			return s[i]
		}
		return nil
	}

	out := make([]market.HistoryPoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		open := at(series.Open, i)
		close := at(series.Close, i)
		if open == nil || close == nil {
			continue
		}
		p := market.HistoryPoint{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:  *open,
			Close: *close,
		}
		if h := at(series.High, i); h != nil {
			p.High = *h
		}
		if l := at(series.Low, i); l != nil {
			p.Low = *l
		}
		if i < len(series.Volume) && series.Volume[i] != nil {
			p.Volume = *series.Volume[i]
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, shapeErr(op, "all bars null for %q", symbol)
	}
	return out, nil
}
