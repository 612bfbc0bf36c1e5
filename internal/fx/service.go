package fx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payvost/payvost-web-sub011/internal/metrics"
)

const (
	// rateScale is the number of decimals exposed for rates.
	rateScale = 6
	// staleTTL bounds how long a last-good table is served before the provider is retried.
	staleTTL = time.Minute
)

// Service answers rate, conversion and quote requests from a cached provider table.
type Service struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	fees     FeePolicy
	logger   *slog.Logger

	mu       sync.Mutex
	lastGood Table
}

// NewService wires a provider behind a cache.
func NewService(provider Provider, cache Cache, ttl time.Duration, fees FeePolicy, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, cache: cache, ttl: ttl, fees: fees, logger: logger}
}

// Refresh fetches a fresh table from the provider and stores it in the cache.
func (s *Service) Refresh(ctx context.Context) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked(ctx)
}

func (s *Service) fetchLocked(ctx context.Context) (Table, error) {
	t, err := s.provider.Latest(ctx)
	if err != nil {
		metrics.FXFetches.WithLabelValues(s.provider.Name(), "error").Inc()
		if s.lastGood.Base != "" {
			s.logger.Warn("rate provider failed; serving last good table",
				"provider", s.provider.Name(), "fetched_at", s.lastGood.FetchedAt, "error", err)
			if err := s.cache.Set(ctx, s.lastGood, staleTTL); err != nil {
				s.logger.Warn("store rates in cache", "error", err)
			}
			return s.lastGood, nil
		}
		return Table{}, fmt.Errorf("%w: %v", ErrRatesUnavailable, err)
	}
	metrics.FXFetches.WithLabelValues(s.provider.Name(), "ok").Inc()
	s.lastGood = t
	if err := s.cache.Set(ctx, t, s.ttl); err != nil {
		s.logger.Warn("store rates in cache", "error", err)
	}
	return t, nil
}

// Latest returns the cached table, fetching on a miss.
func (s *Service) Latest(ctx context.Context) (Table, error) {
	if t, ok := s.cached(ctx); ok {
		return t, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have filled the cache while we waited.
	if t, ok := s.cached(ctx); ok {
		return t, nil
	}
	return s.fetchLocked(ctx)
}

func (s *Service) cached(ctx context.Context) (Table, bool) {
	t, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("read rates from cache", "error", err)
	}
	if ok {
		metrics.FXCacheLookups.WithLabelValues("hit").Inc()
		return t, true
	}
	metrics.FXCacheLookups.WithLabelValues("miss").Inc()
	return Table{}, false
}

// Rates returns the table quoted against base, optionally limited to symbols.
func (s *Service) Rates(ctx context.Context, base string, symbols []string) (Table, error) {
	base, err := NormalizeCode(base)
	if err != nil {
		return Table{}, err
	}
	codes := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		c, err := NormalizeCode(sym)
		if err != nil {
			return Table{}, err
		}
		codes = append(codes, c)
	}
	t, err := s.Latest(ctx)
	if err != nil {
		return Table{}, err
	}
	t, err = t.Rebase(base)
	if err != nil {
		return Table{}, err
	}
	return t.Subset(codes)
}

// Convert converts amount at the market rate, rounded to the target currency.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	amount, from, to, err := normalizePair(amount, from, to)
	if err != nil {
		return Conversion{}, err
	}
	t, err := s.Latest(ctx)
	if err != nil {
		return Conversion{}, err
	}
	market, err := t.Convert(decimal.NewFromInt(1), from, to)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{
		From:      from,
		To:        to,
		Amount:    amount,
		Rate:      market.Round(rateScale),
		Result:    Round(amount.Mul(market), to),
		RatesAsOf: t.FetchedAt,
	}, nil
}

// Quote previews what sending amount of from will cost and deliver in to.
func (s *Service) Quote(ctx context.Context, amount decimal.Decimal, from, to string) (Quote, error) {
	amount, from, to, err := normalizePair(amount, from, to)
	if err != nil {
		return Quote{}, err
	}
	t, err := s.Latest(ctx)
	if err != nil {
		return Quote{}, err
	}
	market, err := t.Convert(decimal.NewFromInt(1), from, to)
	if err != nil {
		return Quote{}, err
	}
	policy, err := s.fees.In(t, from)
	if err != nil {
		return Quote{}, err
	}
	customer := policy.CustomerRate(market, from, to)
	fee := policy.Fee(amount, from)
	return Quote{
		FromCurrency:    from,
		ToCurrency:      to,
		Amount:          amount,
		MarketRate:      market.Round(rateScale),
		Rate:            customer.Round(rateScale),
		ConvertedAmount: Round(amount.Mul(customer), to),
		Fee:             fee,
		TotalDebit:      amount.Add(fee),
		RatesAsOf:       t.FetchedAt,
	}, nil
}

// normalizePair validates the codes and rounds amount to the source currency.
// An amount that rounds to zero is rejected.
func normalizePair(amount decimal.Decimal, from, to string) (decimal.Decimal, string, string, error) {
	f, err := NormalizeCode(from)
	if err != nil {
		return decimal.Zero, "", "", err
	}
	t, err := NormalizeCode(to)
	if err != nil {
		return decimal.Zero, "", "", err
	}
	amount = Round(amount, f)
	if !amount.IsPositive() {
		return decimal.Zero, "", "", ErrInvalidAmount
	}
	return amount, f, t, nil
}
