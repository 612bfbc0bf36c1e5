// Package fx fetches exchange rates, caches them, converts amounts and
// prices transfers.
package fx

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency     = errors.New("currency must be a three-letter ISO code")
	ErrUnsupportedCurrency = errors.New("currency not supported")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrRatesUnavailable    = errors.New("exchange rates unavailable")
)

// Table is a set of rates quoted against Base: Rates[c] is the number of
// units of c bought by one unit of Base. Rates[Base] is always 1.
type Table struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Rate returns the units of code per unit of the table base.
func (t Table) Rate(code string) (decimal.Decimal, error) {
	if code == t.Base {
		return decimal.NewFromInt(1), nil
	}
	r, ok := t.Rates[code]
	if !ok || !r.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return r, nil
}

// Rebase re-expresses the table against another base currency.
func (t Table) Rebase(base string) (Table, error) {
	if base == t.Base {
		return t, nil
	}
	pivot, err := t.Rate(base)
	if err != nil {
		return Table{}, err
	}
	out := Table{Base: base, FetchedAt: t.FetchedAt, Rates: make(map[string]decimal.Decimal, len(t.Rates)+1)}
	out.Rates[t.Base] = decimal.NewFromInt(1).Div(pivot)
	for code, r := range t.Rates {
		out.Rates[code] = r.Div(pivot)
	}
	out.Rates[base] = decimal.NewFromInt(1)
	return out, nil
}

// Subset keeps only the requested symbols; an empty list keeps everything.
func (t Table) Subset(symbols []string) (Table, error) {
	if len(symbols) == 0 {
		return t, nil
	}
	out := Table{Base: t.Base, FetchedAt: t.FetchedAt, Rates: make(map[string]decimal.Decimal, len(symbols))}
	for _, s := range symbols {
		r, err := t.Rate(s)
		if err != nil {
			return Table{}, err
		}
		out.Rates[s] = r
	}
	return out, nil
}

// Convert converts amount from one currency to another through the table,
// without rounding.
func (t Table) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, err := t.Rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(toRate).Div(fromRate), nil
}
