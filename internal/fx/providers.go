package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"finsight/internal/httpx"
)

// Provider fetches a from->to multiplier from one upstream FX API.
type Provider interface {
	Name() string
	Rate(ctx context.Context, from, to string) (float64, error)
}

// ExchangeRateAPI is the primary provider (exchangerate-api.com).
// GET {base}/{from} returns {"rates": {"<to>": <rate>, ...}}.
type ExchangeRateAPI struct {
	BaseURL string
	Client  *httpx.Client
}

func (p *ExchangeRateAPI) Name() string { return "exchangerate-api" }

func (p *ExchangeRateAPI) Rate(ctx context.Context, from, to string) (float64, error) {
	base := p.BaseURL
	if base == "" {
		base = "https://api.exchangerate-api.com/v4/latest"
	}
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := getJSON(ctx, p.Client, fmt.Sprintf("%s/%s", base, from), &payload); err != nil {
		return 0, err
	}
	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%s: rate %s->%s not in response", p.Name(), from, to)
	}
	return rate, nil
}

// OpenERAPI is the secondary provider (open.er-api.com).
// GET {base}/{from} returns {"result":"success","rates":{...}}.
type OpenERAPI struct {
	BaseURL string
	Client  *httpx.Client
}

func (p *OpenERAPI) Name() string { return "open-er-api" }

func (p *OpenERAPI) Rate(ctx context.Context, from, to string) (float64, error) {
	base := p.BaseURL
	if base == "" {
		base = "https://open.er-api.com/v6/latest"
	}
	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := getJSON(ctx, p.Client, fmt.Sprintf("%s/%s", base, from), &payload); err != nil {
		return 0, err
	}
	if payload.Result != "success" {
		return 0, fmt.Errorf("%s: result=%q", p.Name(), payload.Result)
	}
	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%s: rate %s->%s not in response", p.Name(), from, to)
	}
	return rate, nil
}

func getJSON(ctx context.Context, client *httpx.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
