// Package stats aggregates users and ledger entries into the admin dashboard summary.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Input is everything Compute needs. Rates must be quoted against the
// reporting currency. Transactions must cover the previous period and the
// monthly window; older entries are ignored.
type Input struct {
	Users        []models.User
	Transactions []models.Transaction
	Rates        fx.Table
	Now          time.Time
	Period       time.Duration
	Months       int
}

// UserStats counts users.
type UserStats struct {
	Total         int             `json:"total"`
	New           int             `json:"new"`
	Active        int             `json:"active"`
	Verified      int             `json:"verified"`
	PendingKYC    int             `json:"pending_kyc"`
	GrowthPercent decimal.Decimal `json:"growth_percent"`
}

// TxStats counts transactions created within the period.
type TxStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
}

// MonthPoint is completed volume for one calendar month.
type MonthPoint struct {
	Month  string          `json:"month"`
	Volume decimal.Decimal `json:"volume"`
	Count  int             `json:"count"`
}

// Dashboard is the admin dashboard summary.
type Dashboard struct {
	BaseCurrency          string                     `json:"base_currency"`
	PeriodStart           time.Time                  `json:"period_start"`
	PeriodEnd             time.Time                  `json:"period_end"`
	Users                 UserStats                  `json:"users"`
	Transactions          TxStats                    `json:"transactions"`
	Volume                decimal.Decimal            `json:"volume"`
	Revenue               decimal.Decimal            `json:"revenue"`
	VolumeGrowthPercent   decimal.Decimal            `json:"volume_growth_percent"`
	VolumeByCurrency      map[string]decimal.Decimal `json:"volume_by_currency"`
	Monthly               []MonthPoint               `json:"monthly"`
	UnconvertedCurrencies []string                   `json:"unconverted_currencies"`
	RatesAsOf             time.Time                  `json:"rates_as_of"`
}

// WindowStart returns the earliest transaction time Compute looks at.
func WindowStart(now time.Time, period time.Duration, months int) time.Time {
	prev := now.Add(-2 * period)
	first := monthStart(now, months-1)
	if first.Before(prev) {
		return first
	}
	return prev
}

// Compute makes a single pass over users and transactions.
func Compute(in Input) Dashboard {
	base := in.Rates.Base
	periodStart := in.Now.Add(-in.Period)
	prevStart := periodStart.Add(-in.Period)
	firstMonth := monthStart(in.Now, in.Months-1)

	d := Dashboard{
		BaseCurrency:     base,
		PeriodStart:      periodStart,
		PeriodEnd:        in.Now,
		Volume:           decimal.Zero,
		Revenue:          decimal.Zero,
		VolumeByCurrency: map[string]decimal.Decimal{},
		RatesAsOf:        in.Rates.FetchedAt,
	}

	prevNewUsers := 0
	for _, u := range in.Users {
		d.Users.Total++
		switch {
		case !u.CreatedAt.Before(periodStart) && !u.CreatedAt.After(in.Now):
			d.Users.New++
		case within(u.CreatedAt, prevStart, periodStart):
			prevNewUsers++
		}
		switch u.KYCStatus {
		case models.KYCApproved:
			d.Users.Verified++
		case models.KYCPending:
			d.Users.PendingKYC++
		}
	}

	months := make([]MonthPoint, in.Months)
	monthIndex := make(map[string]int, in.Months)
	for i := range months {
		key := monthStart(in.Now, in.Months-1-i).Format("2006-01")
		months[i] = MonthPoint{Month: key, Volume: decimal.Zero}
		monthIndex[key] = i
	}

	active := make(map[string]struct{})
	unconverted := make(map[string]struct{})
	prevVolume := decimal.Zero

	for _, tx := range in.Transactions {
		if tx.CreatedAt.After(in.Now) {
			continue
		}
		current := !tx.CreatedAt.Before(periodStart)
		previous := within(tx.CreatedAt, prevStart, periodStart)

		if current {
			d.Transactions.Total++
			active[tx.UserID] = struct{}{}
			switch tx.Status {
			case models.TxCompleted:
				d.Transactions.Completed++
			case models.TxPending:
				d.Transactions.Pending++
			case models.TxFailed:
				d.Transactions.Failed++
			}
		}
		if tx.Status != models.TxCompleted {
			continue
		}

		inMonths := !tx.CreatedAt.Before(firstMonth)
		if !current && !previous && !inMonths {
			continue
		}

		if current {
			d.VolumeByCurrency[tx.Currency] = d.VolumeByCurrency[tx.Currency].Add(tx.Amount)
		}

		amount, err := in.Rates.Convert(tx.Amount, tx.Currency, base)
		if err != nil {
			unconverted[tx.Currency] = struct{}{}
			continue
		}
		if current {
			d.Volume = d.Volume.Add(amount)
			if fee, err := in.Rates.Convert(tx.Fee, tx.Currency, base); err == nil {
				d.Revenue = d.Revenue.Add(fee)
			}
		}
		if previous {
			prevVolume = prevVolume.Add(amount)
		}
		if inMonths {
			if i, ok := monthIndex[tx.CreatedAt.In(in.Now.Location()).Format("2006-01")]; ok {
				months[i].Volume = months[i].Volume.Add(amount)
				months[i].Count++
			}
		}
	}

	d.Users.Active = len(active)
	d.Users.GrowthPercent = growth(decimal.NewFromInt(int64(d.Users.New)), decimal.NewFromInt(int64(prevNewUsers)))
	d.VolumeGrowthPercent = growth(d.Volume, prevVolume)
	d.Volume = fx.Round(d.Volume, base)
	d.Revenue = fx.Round(d.Revenue, base)
	for i := range months {
		months[i].Volume = fx.Round(months[i].Volume, base)
	}
	d.Monthly = months

	d.UnconvertedCurrencies = make([]string, 0, len(unconverted))
	for c := range unconverted {
		d.UnconvertedCurrencies = append(d.UnconvertedCurrencies, c)
	}
	sort.Strings(d.UnconvertedCurrencies)
	return d
}

// growth is the percentage change from previous to current, two decimals.
// Growth from nothing counts as 100%.
func growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Mul(hundred).Div(previous).Round(2)
}

// within reports from <= t < to.
func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func monthStart(now time.Time, monthsBack int) time.Time {
	return time.Date(now.Year(), now.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, now.Location())
}
