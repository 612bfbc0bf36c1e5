package models

import "time"

// Recipient is a saved payee owned by a user.
type Recipient struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	Currency      string    `json:"currency"`
	Country       string    `json:"country,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
