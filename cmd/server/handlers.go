package main

import (
    "encoding/json"
    "net/http"
    "strings"

    "github.com/rs/zerolog"

    "finsight/internal/fx"
    "finsight/internal/service"
)

// handlers owns the two proxy endpoints. Upstream failure never surfaces
// as a non-2xx here; the only 400s are for missing request parameters.
type handlers struct {
    market *service.MarketService
    fx     *fx.Service
    log    zerolog.Logger
}

type marketRequest struct {
    Action   string `json:"action"`
    Keywords string `json:"keywords,omitempty"`
    Symbol   string `json:"symbol,omitempty"`
}

type errorResponse struct {
    Error string `json:"error"`
}

func (h *handlers) handleMarket(w http.ResponseWriter, r *http.Request) {
    var req marketRequest
    if r.Method == http.MethodGet {
        q := r.URL.Query()
        req = marketRequest{Action: q.Get("action"), Keywords: q.Get("keywords"), Symbol: q.Get("symbol")}
    } else {
        dec := json.NewDecoder(r.Body)
        dec.DisallowUnknownFields()
        if err := dec.Decode(&req); err != nil {
            writeError(w, http.StatusBadRequest, "invalid JSON body")
            return
        }
    }

    ctx := r.Context()
    switch strings.TrimSpace(req.Action) {
    case "search":
        if strings.TrimSpace(req.Keywords) == "" {
            writeError(w, http.StatusBadRequest, "keywords is required for search")
            return
        }
        writeJSON(w, h.market.Search(ctx, req.Keywords))
    case "quote":
        if strings.TrimSpace(req.Symbol) == "" {
            writeError(w, http.StatusBadRequest, "symbol is required for quote")
            return
        }
        writeJSON(w, h.market.Quote(ctx, req.Symbol))
    case "history":
        if strings.TrimSpace(req.Symbol) == "" {
            writeError(w, http.StatusBadRequest, "symbol is required for history")
            return
        }
        writeJSON(w, h.market.History(ctx, req.Symbol))
    case "indices":
        writeJSON(w, h.market.Indices(ctx))
    case "":
        writeError(w, http.StatusBadRequest, "action is required")
    default:
        writeError(w, http.StatusBadRequest, "unknown action: "+req.Action)
    }
}

type exchangeRequest struct {
    From string `json:"from"`
    To   string `json:"to"`
}

func (h *handlers) handleExchange(w http.ResponseWriter, r *http.Request) {
    var req exchangeRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        writeError(w, http.StatusBadRequest, "invalid JSON body")
        return
    }
    if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.To) == "" {
        writeError(w, http.StatusBadRequest, "from and to are required")
        return
    }
    writeJSON(w, h.fx.Rate(r.Context(), strings.ToUpper(req.From), strings.ToUpper(req.To)))
}

func writeJSON(w http.ResponseWriter, payload any) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
