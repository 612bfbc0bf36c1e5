package fx

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provider fetches the latest rate table in whatever base the upstream quotes.
type Provider interface {
	Name() string
	Latest(ctx context.Context) (Table, error)
}

// StaticProvider serves a fixed table. It backs local runs and tests.
type StaticProvider struct {
	table Table
	now   func() time.Time
}

// NewStaticProvider builds a provider from a base and decimal-string rates.
func NewStaticProvider(base string, rates map[string]string) (*StaticProvider, error) {
	t := Table{Base: base, Rates: make(map[string]decimal.Decimal, len(rates))}
	for code, raw := range rates {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		t.Rates[code] = d
	}
	return &StaticProvider{table: t, now: time.Now}, nil
}

// DefaultStaticProvider quotes a USD table covering the corridors the product supports.
func DefaultStaticProvider() *StaticProvider {
	p, _ := NewStaticProvider("USD", map[string]string{
		"EUR": "0.92",
		"GBP": "0.79",
		"NGN": "1550",
		"GHS": "15.4",
		"KES": "129.5",
		"ZAR": "18.2",
		"CAD": "1.37",
		"JPY": "151.3",
		"AUD": "1.52",
		"XOF": "603.5",
	})
	return p
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Latest(context.Context) (Table, error) {
	t := p.table
	t.FetchedAt = p.now().UTC()
	return t, nil
}
