package fx

import (
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnits lists ISO 4217 currencies whose minor unit is not two digits.
var minorUnits = map[string]int32{
	"JPY": 0, "KRW": 0, "VND": 0, "CLP": 0, "ISK": 0, "UGX": 0, "XAF": 0, "XOF": 0, "RWF": 0,
	"BHD": 3, "KWD": 3, "JOD": 3, "OMR": 3, "TND": 3, "LYD": 3, "IQD": 3,
}

// NormalizeCode upper-cases and validates a three-letter currency code.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return code, nil
}

// MinorUnits returns the number of decimal places used by the currency.
func MinorUnits(code string) int32 {
	if n, ok := minorUnits[code]; ok {
		return n
	}
	return 2
}

// Round rounds amount half-away-from-zero to the currency's minor units.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(MinorUnits(code))
}
