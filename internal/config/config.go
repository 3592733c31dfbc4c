package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"

    "github.com/joho/godotenv"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
    LogLevel          string `json:"log_level"`
}

type Upstream struct {
    BaseURL              string `json:"base_url"`
    APIKey               string `json:"api_key"`
    TimeoutSec           int    `json:"timeout_sec"`
    MaxRequestsPerMinute int    `json:"max_requests_per_minute"`
    Burst                int    `json:"burst"`
    CacheTTLSeconds      int    `json:"cache_ttl_sec"`
    CacheMaxItems        int    `json:"cache_max_items"`
}

type FX struct {
    PrimaryURL   string `json:"primary_url"`
    SecondaryURL string `json:"secondary_url"`
    TTLSeconds   int    `json:"ttl_sec"`
    TimeoutSec   int    `json:"timeout_sec"`
    // Target is the display currency the clients convert into.
    Target string `json:"target"`
}

type Config struct {
    Server   Server   `json:"server"`
    Upstream Upstream `json:"upstream"`
    FX       FX       `json:"fx"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10, LogLevel: "info"},
        Upstream: Upstream{
            BaseURL:              "https://query1.finance.yahoo.com",
            TimeoutSec:           8,
            MaxRequestsPerMinute: 60,
            Burst:                5,
            CacheTTLSeconds:      60,
            CacheMaxItems:        10000,
        },
        FX: FX{
            PrimaryURL:   "https://api.exchangerate-api.com/v4/latest",
            SecondaryURL: "https://open.er-api.com/v6/latest",
            TTLSeconds:   3600,
            TimeoutSec:   6,
            Target:       "INR",
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. A .env file is loaded first; environment variables
// override select fields so secrets never live in the config file.
func Load(path string) (Config, error) {
    _ = godotenv.Load()

    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Server.LogLevel = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" { cfg.Upstream.BaseURL = v }
    if v := os.Getenv("UPSTREAM_API_KEY"); v != "" { cfg.Upstream.APIKey = v }
    if v := os.Getenv("UPSTREAM_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Upstream.TimeoutSec = x }
    }
    if v := os.Getenv("UPSTREAM_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Upstream.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("UPSTREAM_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Upstream.Burst = x }
    }
    if v := os.Getenv("UPSTREAM_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Upstream.CacheTTLSeconds = x }
    }
    if v := os.Getenv("UPSTREAM_CACHE_MAX_ITEMS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Upstream.CacheMaxItems = x }
    }
    if v := os.Getenv("FX_PRIMARY_URL"); v != "" { cfg.FX.PrimaryURL = v }
    if v := os.Getenv("FX_SECONDARY_URL"); v != "" { cfg.FX.SecondaryURL = v }
    if v := os.Getenv("FX_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.FX.TTLSeconds = x }
    }
    if v := os.Getenv("FX_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.FX.TimeoutSec = x }
    }
    if v := os.Getenv("FX_TARGET"); v != "" { cfg.FX.Target = v }
}
