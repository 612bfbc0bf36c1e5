package dto

import (
	"github.com/shopspring/decimal"

	"github.com/payvost/payvost-web-sub011/internal/models"
)

type PreviewRequest struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

type ActivityResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

type CreateRecipientRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	Currency      string `json:"currency"`
	Country       string `json:"country"`
}
