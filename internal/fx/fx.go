// Package fx provides the USD-to-local exchange rate with a TTL cache and
// a degrade-never-crash contract: every failure path resolves to a usable
// rate because the value is cosmetic (display conversion), not
// transactional.
package fx

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultRate is the terminal fallback when every provider fails.
const DefaultRate = 83.50

// DefaultTTL is how long a genuine upstream rate stays cached.
const DefaultTTL = time.Hour

// SourceCache and SourceDefault mark where a Result came from; any other
// source string is a provider name.
const (
	SourceCache   = "cache"
	SourceDefault = "default"
)

// Result is a resolved exchange rate and where it came from.
type Result struct {
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

type cacheEntry struct {
	rate      float64
	fetchedAt time.Time
}

// Service resolves exchange rates through a provider chain with a
// process-wide cache keyed by (from,to). The cache is advisory: a warm
// serverless instance benefits, a cold one refetches.
type Service struct {
	providers []Provider
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	sf    singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock injects the time source, for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("component", "fx").Logger() }
}

// NewService builds a rate service over the given provider chain, tried
// in order on every cache miss.
func NewService(providers []Provider, options ...Option) *Service {
	s := &Service{
		providers: providers,
		ttl:       DefaultTTL,
		timeout:   6 * time.Second,
		now:       time.Now,
		log:       zerolog.Nop(),
		cache:     make(map[string]cacheEntry),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Rate resolves the from->to multiplier. It never fails: a fresh cache
// entry wins, then the provider chain, then DefaultRate. The default is
// returned without being cached so a transient outage cannot pin it for a
// full TTL. Concurrent misses for the same pair are coalesced.
func (s *Service) Rate(ctx context.Context, from, to string) Result {
	if from == to {
		return Result{Rate: 1, Source: SourceCache}
	}
	key := from + ":" + to

	if rate, ok := s.fresh(key); ok {
		s.log.Debug().Str("pair", key).Float64("rate", rate).Msg("cache hit")
		return Result{Rate: rate, Source: SourceCache}
	}

	v, _, _ := s.sf.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have filled it.
		if rate, ok := s.fresh(key); ok {
			return Result{Rate: rate, Source: SourceCache}, nil
		}
		for _, p := range s.providers {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			rate, err := p.Rate(cctx, from, to)
			cancel()
			if err != nil {
				s.log.Warn().Err(err).Str("provider", p.Name()).Str("pair", key).Msg("provider failed")
				continue
			}
			s.store(key, rate)
			s.log.Info().Str("provider", p.Name()).Str("pair", key).Float64("rate", rate).Msg("fetched rate")
			return Result{Rate: rate, Source: p.Name()}, nil
		}
		s.log.Warn().Str("pair", key).Float64("rate", DefaultRate).Msg("all providers failed, using default")
		return Result{Rate: DefaultRate, Source: SourceDefault}, nil
	})
	return v.(Result)
}

// fresh returns the cached rate if it is inside the TTL window.
func (s *Service) fresh(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok {
		return 0, false
	}
	if s.now().Sub(e.fetchedAt) >= s.ttl {
		return 0, false
	}
	return e.rate, true
}

func (s *Service) store(key string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{rate: rate, fetchedAt: s.now()}
}
