package main

import (
    "context"
    "errors"
    "flag"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/go-chi/cors"

    "finsight/internal/config"
    "finsight/internal/fx"
    "finsight/internal/httpx"
    "finsight/internal/logger"
    "finsight/internal/market"
    "finsight/internal/market/quotecache"
    "finsight/internal/market/ratelimit"
    "finsight/internal/market/upstream"
    "finsight/internal/service"
)

func main() {
    configPath := flag.String("config", "", "path to config.json (optional)")
    pretty := flag.Bool("pretty", false, "human-readable log output")
    flag.Parse()

    cfg, err := config.Load(*configPath)
    if err != nil {
        // config problems are fatal before we have a logger level
        panic(err)
    }
    log := logger.New(logger.Config{Level: cfg.Server.LogLevel, Pretty: *pretty})

    upstreamHTTP := httpx.New(time.Duration(cfg.Upstream.TimeoutSec) * time.Second)
    fxHTTP := httpx.New(time.Duration(cfg.FX.TimeoutSec) * time.Second)

    opts := []upstream.Option{
        upstream.WithBaseURL(cfg.Upstream.BaseURL),
        upstream.WithHTTPClient(upstreamHTTP.HTTP),
        upstream.WithLogger(log),
    }
    if cfg.Upstream.APIKey != "" {
        opts = append(opts, upstream.WithAPIKey(cfg.Upstream.APIKey))
    }

    var src market.Source = upstream.NewClient(opts...)
    if cfg.Upstream.MaxRequestsPerMinute > 0 {
        src = &ratelimit.Source{
            S:  src,
            TB: ratelimit.NewTokenBucket(float64(cfg.Upstream.MaxRequestsPerMinute)/60.0, cfg.Upstream.Burst),
        }
    }
    if cfg.Upstream.CacheTTLSeconds > 0 {
        src = &quotecache.Source{
            S:        src,
            TTL:      time.Duration(cfg.Upstream.CacheTTLSeconds) * time.Second,
            MaxItems: cfg.Upstream.CacheMaxItems,
        }
    }

    marketSvc := service.NewMarketService(src, service.Config{
        Timeout: time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
        Log:     log,
    })
    fxSvc := fx.NewService(
        []fx.Provider{
            &fx.ExchangeRateAPI{BaseURL: cfg.FX.PrimaryURL, Client: fxHTTP},
            &fx.OpenERAPI{BaseURL: cfg.FX.SecondaryURL, Client: fxHTTP},
        },
        fx.WithTTL(time.Duration(cfg.FX.TTLSeconds)*time.Second),
        fx.WithTimeout(time.Duration(cfg.FX.TimeoutSec)*time.Second),
        fx.WithLogger(log),
    )

    h := &handlers{market: marketSvc, fx: fxSvc, log: log}

    r := chi.NewRouter()
    r.Use(middleware.RealIP)
    r.Use(requestLogger(log))
    r.Use(middleware.Recoverer)
    r.Use(middleware.Compress(5))
    r.Use(middleware.Timeout(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second))
    r.Use(cors.Handler(cors.Options{
        AllowedOrigins: []string{"*"},
        AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
        AllowedHeaders: []string{"Accept", "Content-Type"},
        MaxAge:         300,
    }))
    r.Use(limitBody(1 << 20))

    r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        _, _ = w.Write([]byte("ok"))
    })
    r.Get("/api/market", h.handleMarket)
    r.Post("/api/market", h.handleMarket)
    r.Post("/api/exchange", h.handleExchange)

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           r,
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       10 * time.Second,
        WriteTimeout:      15 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    go func() {
        log.Info().Str("addr", srv.Addr).Msg("server listening")
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Error().Err(err).Msg("server failed")
            stop()
        }
    }()

    <-ctx.Done()
    log.Info().Msg("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Error().Err(err).Msg("shutdown incomplete")
    }
}
