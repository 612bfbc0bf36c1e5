package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

// RateSource supplies rate tables quoted against a base currency.
type RateSource interface {
	Rates(ctx context.Context, base string, symbols []string) (fx.Table, error)
}

// Options select the reporting window.
type Options struct {
	BaseCurrency string
	Period       time.Duration
	Months       int
}

// Service loads dashboard inputs from storage and computes the summary.
type Service struct {
	users storage.UserStore
	txs   storage.TransactionStore
	rates RateSource
	now   func() time.Time
}

// NewService builds a dashboard service.
func NewService(users storage.UserStore, txs storage.TransactionStore, rates RateSource) *Service {
	return &Service{users: users, txs: txs, rates: rates, now: time.Now}
}

// Dashboard returns the summary for the window ending now.
// Rate errors are returned unwrapped so callers can match fx sentinels.
func (s *Service) Dashboard(ctx context.Context, opts Options) (Dashboard, error) {
	now := s.now().UTC()

	rates, err := s.rates.Rates(ctx, opts.BaseCurrency, nil)
	if err != nil {
		return Dashboard{}, err
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load users: %w", err)
	}
	txs, err := s.txs.ListTransactionsSince(ctx, WindowStart(now, opts.Period, opts.Months))
	if err != nil {
		return Dashboard{}, fmt.Errorf("load transactions: %w", err)
	}

	return Compute(Input{
		Users:        users,
		Transactions: txs,
		Rates:        rates,
		Now:          now,
		Period:       opts.Period,
		Months:       opts.Months,
	}), nil
}
