package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"finsight/internal/market"
)

// quoteResponse mirrors the upstream quote envelope.
type quoteResponse struct {
	QuoteResponse *struct {
		Result []quoteResult `json:"result"`
		Error  any           `json:"error"`
	} `json:"quoteResponse"`
}

// quoteResult uses pointers for every numeric field: the upstream omits or
// nulls fields freely and a missing price must be detected, not zeroed.
type quoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
	MarketCap                  *float64 `json:"marketCap"`
}

// Quote fetches a single-symbol quote. The returned figures are in USD.
func (c *Client) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	quotes, err := c.Quotes(ctx, []string{symbol})
	if err != nil {
		return market.Quote{}, err
	}
	return quotes[0], nil
}

// Quotes fetches quotes for several symbols in one upstream call.
// The response is validated before any field is trusted; a missing result
// array or a nil price yields a shape error.
func (c *Client) Quotes(ctx context.Context, symbols []string) ([]market.Quote, error) {
	const op = "quote"
	body, err := c.get(ctx, op, "/v7/finance/quote", url.Values{
		"symbols": []string{strings.Join(symbols, ",")},
	})
	if err != nil {
		return nil, err
	}

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, shapeErr(op, "decode: %w", err)
	}
	if payload.QuoteResponse == nil || len(payload.QuoteResponse.Result) == 0 {
		return nil, shapeErr(op, "no quote results for %q", strings.Join(symbols, ","))
	}

	out := make([]market.Quote, 0, len(payload.QuoteResponse.Result))
	for _, r := range payload.QuoteResponse.Result {
		if r.RegularMarketPrice == nil {
			return nil, shapeErr(op, "missing price for %q", r.Symbol)
		}
		name := r.ShortName
		if name == "" {
			name = r.LongName
		}
		q := market.Quote{
			Symbol: r.Symbol,
			Name:   name,
			Price:  *r.RegularMarketPrice,
		}
		if r.RegularMarketChange != nil {
			q.Change = *r.RegularMarketChange
		}
		if r.RegularMarketChangePercent != nil {
			q.ChangePercent = *r.RegularMarketChangePercent
		}
		if r.RegularMarketVolume != nil {
			q.Volume = *r.RegularMarketVolume
		}
		if r.MarketCap != nil {
			q.MarketCap = *r.MarketCap
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, shapeErr(op, "no usable quotes")
	}
	return out, nil
}
