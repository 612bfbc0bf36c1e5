package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvost/payvost-web-sub011/internal/fx"
	"github.com/payvost/payvost-web-sub011/internal/models/dto"
	"github.com/payvost/payvost-web-sub011/internal/storage"
)

func TestStoreErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get: %w", storage.ErrNotFound), http.StatusNotFound},
		{storage.ErrAlreadyExists, http.StatusConflict},
		{storage.ErrConflict, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		storeError(rec, tc.err, "thing")
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestFxErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fx.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("%w: XYZ", fx.ErrUnsupportedCurrency), http.StatusBadRequest},
		{fx.ErrRatesUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		fxError(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}

func TestIntParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x&big=1000", nil)

	n, err := intParam(r, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = intParam(r, "missing", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	_, err = intParam(r, "bad", 20, 1, 100)
	assert.Error(t, err)
	_, err = intParam(r, "big", 20, 1, 100)
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "10.0.0.7", clientIP(r))
}

func TestRecipientFromRequest(t *testing.T) {
	rec, err := recipientFromRequest(dto.CreateRecipientRequest{
		Name: " Ama Mensah ", BankName: "Ecobank", AccountNumber: "GH12 3456", Currency: "ghs", Country: "gh",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", rec.Name)
	assert.Equal(t, "GH123456", rec.AccountNumber)
	assert.Equal(t, "GHS", rec.Currency)
	assert.Equal(t, "GH", rec.Country)

	_, err = recipientFromRequest(dto.CreateRecipientRequest{Name: "x", BankName: "y", AccountNumber: "1", Currency: "cedi"})
	assert.ErrorIs(t, err, fx.ErrInvalidCurrency)

	_, err = recipientFromRequest(dto.CreateRecipientRequest{Name: "x", AccountNumber: "1", Currency: "GHS"})
	assert.Error(t, err)
}

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, validateRegistration("ada", "ada@example.com", "+1555"))
	assert.Error(t, validateRegistration("", "ada@example.com", "+1555"))
	assert.Error(t, validateRegistration("ada", "not-an-email", "+1555"))
	assert.Equal(t, "+44", normalizePhone(dto.RegisterRequest{PhoneNumber: " +44 "}))
}
