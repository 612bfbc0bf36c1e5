package fx

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeePolicy prices a transfer. Fixed, Min and Max are expressed in Currency;
// an empty Currency means they apply as-is in every source currency.
// Percent and MarkupPercent are percentages (1.5 = 1.5%). A zero Max means
// the fee is uncapped.
type FeePolicy struct {
	Currency      string
	Percent       decimal.Decimal
	Fixed         decimal.Decimal
	Min           decimal.Decimal
	Max           decimal.Decimal
	MarkupPercent decimal.Decimal
}

// In re-expresses the fixed amounts and bounds in code using t.
func (p FeePolicy) In(t Table, code string) (FeePolicy, error) {
	if p.Currency == "" || p.Currency == code {
		return p, nil
	}
	factor, err := t.Convert(decimal.NewFromInt(1), p.Currency, code)
	if err != nil {
		return FeePolicy{}, err
	}
	p.Currency = code
	p.Fixed = p.Fixed.Mul(factor)
	p.Min = p.Min.Mul(factor)
	p.Max = p.Max.Mul(factor)
	return p, nil
}

// Fee returns fixed + amount*percent clamped to [Min, Max], rounded to the
// currency. The policy must already be expressed in currency (see In).
func (p FeePolicy) Fee(amount decimal.Decimal, currency string) decimal.Decimal {
	fee := p.Fixed.Add(amount.Mul(p.Percent).Div(hundred))
	if fee.LessThan(p.Min) {
		fee = p.Min
	}
	if p.Max.IsPositive() && fee.GreaterThan(p.Max) {
		fee = p.Max
	}
	return Round(fee, currency)
}

// CustomerRate applies the markup to a cross-currency market rate.
func (p FeePolicy) CustomerRate(market decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return market
	}
	return market.Mul(hundred.Sub(p.MarkupPercent)).Div(hundred)
}

// Quote is a fee preview for sending Amount of FromCurrency.
type Quote struct {
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	Amount          decimal.Decimal `json:"amount"`
	MarketRate      decimal.Decimal `json:"market_rate"`
	Rate            decimal.Decimal `json:"rate"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Fee             decimal.Decimal `json:"fee"`
	TotalDebit      decimal.Decimal `json:"total_debit"`
	RatesAsOf       time.Time       `json:"rates_as_of"`
}

// Conversion is the result of a plain market-rate conversion.
type Conversion struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Rate      decimal.Decimal `json:"rate"`
	Result    decimal.Decimal `json:"result"`
	RatesAsOf time.Time       `json:"rates_as_of"`
}
