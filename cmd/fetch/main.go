// Command fetch is a small console client for a running finsight server.
// It fetches one action and prints the result with display-currency
// formatting applied.
package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "time"

    "finsight/internal/client"
    "finsight/internal/format"
    "finsight/internal/logger"
)

func main() {
    baseURL := flag.String("base-url", "http://localhost:8080", "finsight server base URL")
    action := flag.String("action", "quote", "one of: quote, history, search, indices")
    symbol := flag.String("symbol", "", "ticker symbol (quote, history)")
    keywords := flag.String("keywords", "", "search keywords (search)")
    currency := flag.String("currency", "INR", "display currency code")
    timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
    flag.Parse()

    log := logger.New(logger.Config{Level: "warn", Pretty: true})
    c := client.New(*baseURL, client.WithCurrency(*currency), client.WithLogger(log))

    ctx, cancel := context.WithTimeout(context.Background(), *timeout)
    defer cancel()

    switch *action {
    case "quote":
        if *symbol == "" { fatal("quote requires -symbol") }
        q, err := c.GetStockQuote(ctx, *symbol)
        if err != nil { fatal(err.Error()) }
        fmt.Printf("%s  %s  %s (%s)  vol %d  mcap %s\n",
            q.Symbol,
            format.Currency(q.Price, *currency),
            format.Currency(q.Change, *currency),
            format.Percentage(q.ChangePercent),
            q.Volume,
            format.LargeNumber(q.MarketCap, *currency))
    case "history":
        if *symbol == "" { fatal("history requires -symbol") }
        points, err := c.GetStockHistory(ctx, *symbol)
        if err != nil { fatal(err.Error()) }
        for _, p := range points {
            fmt.Printf("%s  o=%s h=%s l=%s c=%s\n",
                p.Date,
                format.Currency(p.Open, *currency),
                format.Currency(p.High, *currency),
                format.Currency(p.Low, *currency),
                format.Currency(p.Close, *currency))
        }
    case "search":
        if *keywords == "" { fatal("search requires -keywords") }
        results, err := c.SearchStocks(ctx, *keywords)
        if err != nil { fatal(err.Error()) }
        for _, r := range results {
            fmt.Printf("%-8s %-40s %s/%s\n", r.Symbol, r.Name, r.Type, r.Region)
        }
    case "indices":
        indices, err := c.MarketIndices(ctx)
        if err != nil { fatal(err.Error()) }
        for _, ix := range indices {
            fmt.Printf("%-6s %-30s %s  %s (%s)\n",
                ix.ID, ix.Name,
                format.Currency(ix.Value, *currency),
                format.Currency(ix.Change, *currency),
                format.Percentage(ix.ChangePercent))
        }
    default:
        fatal("unknown action: " + *action)
    }
}

func fatal(msg string) {
    fmt.Fprintln(os.Stderr, "fetch: "+msg)
    os.Exit(1)
}
