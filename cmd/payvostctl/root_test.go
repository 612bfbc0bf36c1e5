package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvost/payvost-web-sub011/internal/config"
)

func testConfig() (config.Config, error) {
	return config.Config{
		StorageDriver: config.DriverMemory,
		FXProvider:    config.ProviderStatic,
		BaseCurrency:  "USD",
		LogLevel:      "error",
		Fees: config.Fees{
			Currency:      "USD",
			Percent:       decimal.RequireFromString("1.5"),
			Fixed:         decimal.RequireFromString("0.30"),
			Min:           decimal.RequireFromString("0.50"),
			Max:           decimal.RequireFromString("50"),
			MarkupPercent: decimal.RequireFromString("0.5"),
		},
	}, nil
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	loadConfig = testConfig
	t.Cleanup(func() { loadConfig = config.Load })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	out, err := run(t, "quote", "--from", "USD", "--to", "NGN", "--amount", "100")
	require.NoError(t, err)

	var q struct {
		Fee        string `json:"fee"`
		TotalDebit string `json:"total_debit"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, "1.8", q.Fee)
	assert.Equal(t, "101.8", q.TotalDebit)
}

func TestRatesCommand(t *testing.T) {
	out, err := run(t, "rates", "--base", "EUR", "--symbols", "USD")
	require.NoError(t, err)
	assert.Contains(t, out, `"base": "EUR"`)
	assert.Contains(t, out, `"USD"`)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "STORAGE_DRIVER=postgres")
}

func TestQuoteRequiresFlags(t *testing.T) {
	_, err := run(t, "quote", "--to", "NGN")
	assert.Error(t, err)
}
