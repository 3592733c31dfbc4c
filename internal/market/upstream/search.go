package upstream

import (
	"context"
	"encoding/json"
	"net/url"

	"finsight/internal/market"
)

// searchResponse mirrors the upstream symbol-search envelope.
type searchResponse struct {
	Quotes *[]searchHit `json:"quotes"`
}

type searchHit struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
	ExchDisp  string `json:"exchDisp"`
	Currency  string `json:"currency"`
}

// Search queries the upstream symbol search. The payload must contain an
// array of quote-like objects; anything else is a shape error and the
// caller falls back to the curated mock sets.
func (c *Client) Search(ctx context.Context, keywords string) ([]market.SearchResult, error) {
	const op = "search"
	body, err := c.get(ctx, op, "/v1/finance/search", url.Values{
		"q": []string{keywords},
	})
	if err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, shapeErr(op, "decode: %w", err)
	}
	if payload.Quotes == nil {
		return nil, shapeErr(op, "quotes array missing for %q", keywords)
	}

	out := make([]market.SearchResult, 0, len(*payload.Quotes))
	for _, h := range *payload.Quotes {
		if h.Symbol == "" {
			continue
		}
		name := h.ShortName
		if name == "" {
			name = h.LongName
		}
		out = append(out, market.SearchResult{
			Symbol:   h.Symbol,
			Name:     name,
			Type:     h.QuoteType,
			Region:   h.ExchDisp,
			Currency: h.Currency,
		})
	}
	if len(out) == 0 {
		return nil, shapeErr(op, "no hits for %q", keywords)
	}
	return out, nil
}
