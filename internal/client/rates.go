package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"finsight/internal/httpx"
)

// ProxyRates resolves rates through the proxy's exchange endpoint.
type ProxyRates struct {
	BaseURL string
	Client  *httpx.Client
}

type exchangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type exchangeResponse struct {
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

// Rate calls POST /api/exchange. The endpoint itself never fails past its
// own default, so errors here are transport-level only.
func (p *ProxyRates) Rate(ctx context.Context, from, to string) (float64, error) {
	body, err := json.Marshal(exchangeRequest{From: from, To: to})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/exchange", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange: status %d", resp.StatusCode)
	}
	var out exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("exchange: decode: %w", err)
	}
	if out.Rate <= 0 {
		return 0, fmt.Errorf("exchange: non-positive rate %v", out.Rate)
	}
	return out.Rate, nil
}
