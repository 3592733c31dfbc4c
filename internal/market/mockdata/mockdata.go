package mockdata

import (
    "math"
    "math/rand"
    "strings"
    "time"

    "finsight/internal/market"
)

// Note is attached to proxy responses whose payload was generated locally.
const Note = "showing sample data; live market data is temporarily unavailable"

// HistoryDays is how many synthetic daily bars History produces.
const HistoryDays = 30

// symbolSeed sums the symbol's bytes. It is the only thing the base price
// depends on, so repeated views of the same symbol stay consistent.
func symbolSeed(symbol string) int64 {
    var sum int64
    for _, c := range []byte(symbol) {
        sum += int64(c)
    }
    return sum
}

// BasePrice maps a symbol deterministically into [50, 1000).
func BasePrice(symbol string) float64 {
    return 50 + float64(symbolSeed(symbol)%950)
}

// Quote generates a synthetic quote. The base price is a pure function of
// the symbol; change and volume are randomized per call.
func Quote(symbol string) market.Quote {
    base := BasePrice(symbol)
    change := (rand.Float64() - 0.5) * 20 // [-10, 10)
    price := base + change
    if price < 10 { price = 10 }
    changePct := 0.0
    if prev := price - change; prev != 0 {
        changePct = change / prev * 100
    }
    return market.Quote{
        Symbol:        strings.ToUpper(symbol),
        Price:         round2(price),
        Change:        round2(change),
        ChangePercent: round2(changePct),
        Volume:        1_000_000 + rand.Int63n(9_000_000),
        MarketCap:     round2(price * float64(100_000_000+symbolSeed(symbol)%900_000_000)),
    }
}

// History generates HistoryDays of daily bars via a mean-reverting walk
// seeded by the symbol, with a sinusoidal trend so charts look plausible.
// Bars end at today and satisfy low <= open,close <= high with a floor of 10.
func History(symbol string) []market.HistoryPoint {
    base := BasePrice(symbol)
    r := rand.New(rand.NewSource(symbolSeed(symbol)))
    out := make([]market.HistoryPoint, 0, HistoryDays)

    today := time.Now().UTC()
    walk := 0.0
    prevClose := base
    for i := 0; i < HistoryDays; i++ {
        day := today.AddDate(0, 0, i-(HistoryDays-1))
        trend := math.Sin(float64(i)/10) * 10
        // pull the walk back toward zero, then add noise
        walk += (r.Float64()-0.5)*base*0.02 - walk*0.1
        open := prevClose
        close := clampFloor(base+trend+walk, 10)
        hi := math.Max(open, close) + r.Float64()*base*0.01
        lo := clampFloor(math.Min(open, close)-r.Float64()*base*0.01, 10)
        if lo > math.Min(open, close) { lo = math.Min(open, close) }
        out = append(out, market.HistoryPoint{
            Date:   day.Format("2006-01-02"),
            Open:   round2(open),
            High:   round2(hi),
            Low:    round2(lo),
            Close:  round2(close),
            Volume: 1_000_000 + r.Int63n(9_000_000),
        })
        prevClose = close
    }
    return out
}

// searchBuckets maps keyword substrings to curated ticker sets.
var searchBuckets = []struct {
    needles []string
    results []market.SearchResult
}{
    {
        needles: []string{"tech"},
        results: resultSet("AAPL:Apple Inc.", "MSFT:Microsoft Corporation", "GOOGL:Alphabet Inc.", "NVDA:NVIDIA Corporation", "AMZN:Amazon.com Inc."),
    },
    {
        needles: []string{"bank", "financ"},
        results: resultSet("JPM:JPMorgan Chase & Co.", "BAC:Bank of America Corporation", "GS:The Goldman Sachs Group Inc.", "MS:Morgan Stanley", "WFC:Wells Fargo & Company"),
    },
    {
        needles: []string{"health", "pharma"},
        results: resultSet("JNJ:Johnson & Johnson", "PFE:Pfizer Inc.", "UNH:UnitedHealth Group Incorporated", "MRK:Merck & Co. Inc.", "ABBV:AbbVie Inc."),
    },
    {
        needles: []string{"energy", "oil"},
        results: resultSet("XOM:Exxon Mobil Corporation", "CVX:Chevron Corporation", "COP:ConocoPhillips", "SLB:Schlumberger Limited"),
    },
}

// defaultSearchResults is the terminal fallback; Search never returns empty.
var defaultSearchResults = resultSet("AAPL:Apple Inc.", "MSFT:Microsoft Corporation", "GOOGL:Alphabet Inc.", "AMZN:Amazon.com Inc.", "TSLA:Tesla Inc.")

// Search returns a deterministic result set selected by keyword substring.
func Search(keywords string) []market.SearchResult {
    k := strings.ToLower(strings.TrimSpace(keywords))
    for _, b := range searchBuckets {
        for _, n := range b.needles {
            if strings.Contains(k, n) {
                return b.results
            }
        }
    }
    return defaultSearchResults
}

// Indices is a complete fixed snapshot, used only when every live index
// fetch fails.
func Indices() []market.MarketIndex {
    return []market.MarketIndex{
        {ID: "^DJI", Name: "Dow Jones Industrial Average", Value: 38654.42, Change: 134.58, ChangePercent: 0.35},
        {ID: "^GSPC", Name: "S&P 500", Value: 5127.79, Change: 23.14, ChangePercent: 0.45},
        {ID: "^IXIC", Name: "NASDAQ Composite", Value: 16156.33, Change: -45.27, ChangePercent: -0.28},
        {ID: "^RUT", Name: "Russell 2000", Value: 2035.72, Change: 8.91, ChangePercent: 0.44},
    }
}

func resultSet(pairs ...string) []market.SearchResult {
    out := make([]market.SearchResult, 0, len(pairs))
    for _, p := range pairs {
        sym, name, _ := strings.Cut(p, ":")
        out = append(out, market.SearchResult{
            Symbol:   sym,
            Name:     name,
            Type:     "Equity",
            Region:   "United States",
            Currency: "USD",
        })
    }
    return out
}

func clampFloor(v, floor float64) float64 {
    if v < floor { return floor }
    return v
}

func round2(v float64) float64 {
    return math.Round(v*100) / 100
}
